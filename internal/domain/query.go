package domain

import (
	"strings"
)

const MaxQueryLength = 1000

type QueryRequest struct {
	UserID int64
	Text   string
}

func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}

	if len(q.Text) > MaxQueryLength {
		return ErrQueryTooLong
	}

	return nil
}

func (q *QueryRequest) Sanitize() {
	q.Text = strings.TrimSpace(q.Text)
	if len(q.Text) > MaxQueryLength {
		q.Text = q.Text[:MaxQueryLength]
	}
}
