package showtimes

import (
	"context"
	"errors"

	"cinerama/internal/seating"

	"github.com/google/uuid"
)

// SeatingAdapter exposes the showtime catalog to the seating subsystem
// behind its provider interface, keeping the import direction one-way.
type SeatingAdapter struct {
	service Service
}

func NewSeatingAdapter(service Service) *SeatingAdapter {
	return &SeatingAdapter{service: service}
}

func (a *SeatingAdapter) GetShowtimeInfo(ctx context.Context, id uuid.UUID) (*seating.ShowtimeInfo, error) {
	showtime, err := a.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrShowtimeNotFound) {
			return nil, seating.ErrShowtimeNotFound
		}
		return nil, err
	}
	return &seating.ShowtimeInfo{
		ID:             showtime.ID,
		RoomCapacity:   showtime.RoomCapacity,
		TicketPrice:    showtime.TicketPrice,
		ScheduledAt:    showtime.ScheduledAt,
		AvailableSeats: showtime.AvailableSeats,
	}, nil
}

func (a *SeatingAdapter) DecrementAvailableSeats(ctx context.Context, id uuid.UUID) error {
	return a.service.AdjustAvailableSeats(ctx, id, -1)
}
