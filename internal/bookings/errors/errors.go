package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrInvalidTimeRange = errors.New("invalid booking time range")

	ErrResourceNotFound = errors.New("resource not found")

	ErrForbidden = errors.New("requester may not modify this booking")

	ErrLockContention = errors.New("resource is locked by a concurrent booking operation")
)
