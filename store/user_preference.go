package store

// Preference kinds learned from exceptional ratings.
const (
	PreferenceGenre    = "genre"
	PreferenceDirector = "director"
)

// Caps on learned preferences per kind. First-come, first-kept.
const (
	MaxGenrePreferences    = 5
	MaxDirectorPreferences = 3
)

// UserPreference is a learned (user, kind, value) triple. Values are
// stored lowercased; duplicates are ignored on insert.
type UserPreference struct {
	ID        int32
	UserID    int64
	Kind      string
	Value     string
	CreatedTs int64
}

type UpsertUserPreference struct {
	UserID int64
	Kind   string
	Value  string
}

type FindUserPreference struct {
	UserID *int64
	Kind   *string
}
