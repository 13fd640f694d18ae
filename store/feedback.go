package store

// Feedback is free-text user feedback about the bot, append-only.
type Feedback struct {
	ID        int32
	UserID    int64
	Query     string // the user's last recommendation query, for context
	Text      string
	CreatedTs int64
}

type CreateFeedback struct {
	UserID int64
	Query  string
	Text   string
}

type FindFeedback struct {
	UserID *int64
	Limit  *int
}
