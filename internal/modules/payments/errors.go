package payments

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateAttempt  = errors.New("a payment is already pending for this booking")
	ErrAlreadyPaid       = errors.New("booking is already paid")
	ErrAttemptNotFound   = errors.New("payment attempt not found")
	ErrMalformedCallback = errors.New("malformed callback payload")
)
