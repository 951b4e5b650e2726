package mpesa

import "errors"

var (
	// ErrAuthFailed: could not obtain an access token from Daraja.
	ErrAuthFailed = errors.New("mpesa: authentication failed")
	// ErrUnreachable: transport failure or non-2xx on the push request.
	ErrUnreachable = errors.New("mpesa: gateway unreachable")
)
