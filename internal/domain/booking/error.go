package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrEmptyBookingID  = errors.New("booking id is empty")
	ErrInvalidAmount   = errors.New("invalid amount")
)
