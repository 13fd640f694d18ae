package store

// User is a Telegram user known to the bot. UserID is the Telegram
// identifier; ID is the internal row id.
type User struct {
	ID        int32
	UserID    int64
	Username  string
	CreatedTs int64
}

// UpsertUser creates the user on first contact and refreshes the
// username on subsequent ones.
type UpsertUser struct {
	UserID   int64
	Username string
}
