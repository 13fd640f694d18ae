package store

// History action kinds. The log is append-only; per-user clears drop the
// whole log.
const (
	HistoryRecommended   = "recommended"
	HistorySaved         = "saved"
	HistoryRated         = "rated"
	HistoryViewedSimilar = "viewed_similar"
)

// HistoryEntry records a single user-movie interaction.
type HistoryEntry struct {
	ID        int32
	UserID    int64
	MovieID   int32
	Action    string
	CreatedTs int64
}

type CreateHistoryEntry struct {
	UserID  int64
	MovieID int32
	Action  string
}

type FindHistoryEntry struct {
	UserID *int64
	Action *string
	Limit  *int
}
