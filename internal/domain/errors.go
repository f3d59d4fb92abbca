package domain

import "errors"

var (
	ErrEmptyQuery   = errors.New("empty query")
	ErrQueryTooLong = errors.New("query too long")
)

var (
	ErrEmptyLocation  = errors.New("empty location")
	ErrInvalidDays    = errors.New("days must be between 1 and 14")
	ErrEmptyCommodity = errors.New("empty commodity")
	ErrEmptyRegion    = errors.New("empty region")
	ErrNoCrops        = errors.New("at least one crop is required")
)

var (
	ErrRecordNotFound = errors.New("record not found")
)
