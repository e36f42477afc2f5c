package seating

import "time"

type SeatResponse struct {
	ID         string     `json:"id"`
	ShowtimeID string     `json:"showtime_id"`
	Code       string     `json:"code"`
	Row        string     `json:"row"`
	SeatNumber int        `json:"seat_number"`
	Type       string     `json:"type"`
	State      string     `json:"state"`
	Price      float64    `json:"price"`
	HeldBy     *string    `json:"held_by,omitempty"`
	ExpiresAt  *time.Time `json:"hold_expires_at,omitempty"`
}

type SeatMapResponse struct {
	ShowtimeID string         `json:"showtime_id"`
	TotalSeats int            `json:"total_seats"`
	Seats      []SeatResponse `json:"seats"`
}

type HoldResponse struct {
	Seat       SeatResponse `json:"seat"`
	ExpiresAt  time.Time    `json:"expires_at"`
	TTLSeconds int          `json:"ttl_seconds"`
}

func toSeatResponse(seat *Seat) SeatResponse {
	resp := SeatResponse{
		ID:         seat.ID.String(),
		ShowtimeID: seat.ShowtimeID.String(),
		Code:       seat.Code(),
		Row:        seat.RowLabel,
		SeatNumber: seat.SeatNumber,
		Type:       string(seat.Type),
		State:      string(seat.State),
		Price:      seat.Price,
		ExpiresAt:  seat.HoldExpiresAt,
	}
	if seat.HeldBy != nil {
		heldBy := seat.HeldBy.String()
		resp.HeldBy = &heldBy
	}
	return resp
}

func toSeatMapResponse(showtimeID string, seats []Seat) SeatMapResponse {
	out := make([]SeatResponse, 0, len(seats))
	for i := range seats {
		out = append(out, toSeatResponse(&seats[i]))
	}
	return SeatMapResponse{
		ShowtimeID: showtimeID,
		TotalSeats: len(out),
		Seats:      out,
	}
}
