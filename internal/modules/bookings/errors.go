package bookings

import "errors"

var (
	ErrHouseNotFound  = errors.New("house not found")
	ErrHouseNotVacant = errors.New("house is not vacant")
)
