package seating

import "errors"

var (
	ErrSeatNotFound       = errors.New("seat not found")
	ErrShowtimeNotFound   = errors.New("showtime not found")
	ErrSeatNotAvailable   = errors.New("seat is not available")
	ErrSeatBlocked        = errors.New("seat is blocked from sale")
	ErrSeatNotReserved    = errors.New("seat is not reserved")
	ErrHoldExpired        = errors.New("seat hold has expired")
	ErrShowtimeStarted    = errors.New("showtime has already started")
	ErrShowtimeSoldOut    = errors.New("showtime is sold out")
	ErrInvalidStateChange = errors.New("invalid seat state change")
)
