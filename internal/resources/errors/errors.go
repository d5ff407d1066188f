package errors

import "errors"

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidID = errors.New("invalid resource ID format")

	ErrForbidden = errors.New("requester may not modify this resource")

	ErrHasBookings = errors.New("resource still has bookings")
)
