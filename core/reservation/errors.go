package reservation

import "errors"

var (
	// ErrNotFound is returned when a station id is absent from the catalog.
	ErrNotFound = errors.New("station not found")
	// ErrInvalidState is returned when a hold is requested on a station that is not Available.
	ErrInvalidState = errors.New("station not reservable")

	errCorruptEntry = errors.New("corrupt reservation entry")
)
