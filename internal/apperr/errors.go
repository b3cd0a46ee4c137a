package apperr

import "errors"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidType = errors.New("invalid event type")
)
