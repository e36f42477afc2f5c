package seating

// SetSeatStatusRequest is the admin maintenance payload. The seatstate
// binding checks the value is a known state; the service further
// restricts the transition to AVAILABLE and BLOCKED.
type SetSeatStatusRequest struct {
	State string `json:"state" binding:"required,seatstate"`
}
