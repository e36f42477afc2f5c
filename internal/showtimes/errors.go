package showtimes

import "errors"

var (
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrNoCapacity       = errors.New("showtime has no remaining capacity")
	ErrCapacityExceeded = errors.New("available seats cannot exceed room capacity")
)
