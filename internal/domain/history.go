package domain

import "time"

// QueryRecord - one entry in a user's search history
type QueryRecord struct {
	ID          int64
	UserID      int64
	Query       string
	SearchType  string
	Success     bool
	SourceCount int
	CreatedAt   time.Time
}
