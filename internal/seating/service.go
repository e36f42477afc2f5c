package seating

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cinerama/pkg/logger"

	"github.com/google/uuid"
)

// rowLabels caps the room at ten physical rows, A through J.
var rowLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

type Service interface {
	GenerateSeatMap(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error)
	GetSeatMap(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error)
	GetSeat(ctx context.Context, seatID uuid.UUID) (*Seat, error)
	GetSeatsByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) ([]Seat, error)
	GetSeatsByType(ctx context.Context, showtimeID uuid.UUID, seatType SeatType) ([]Seat, error)
	CheckSeatExists(ctx context.Context, showtimeID uuid.UUID, rowLabel string, seatNumber int) (bool, error)
	Hold(ctx context.Context, seatID uuid.UUID, holder *uuid.UUID) (*Seat, error)
	Confirm(ctx context.Context, seatID uuid.UUID) (*Seat, error)
	Release(ctx context.Context, seatID uuid.UUID) (*Seat, error)
	SetSeatStatus(ctx context.Context, seatID uuid.UUID, state SeatState) (*Seat, error)
	GetOccupancy(ctx context.Context, showtimeID uuid.UUID) (*OccupancyStats, error)
	SweepExpired(ctx context.Context) (int64, error)
	DeleteSeatMap(ctx context.Context, showtimeID uuid.UUID) error
}

// Config carries the tunables of the reservation flow.
type Config struct {
	HoldTTL     time.Duration
	SeatsPerRow int
	MaxRows     int
}

type service struct {
	repo      Repository
	showtimes ShowtimeProvider
	publisher EventPublisher
	config    Config
	log       *logger.Logger

	// injectable clock for hold-expiry tests
	now func() time.Time
}

// NewService builds the seat reservation service. publisher may be nil,
// in which case lifecycle events are not emitted.
func NewService(repo Repository, showtimes ShowtimeProvider, publisher EventPublisher, config Config) Service {
	if config.SeatsPerRow <= 0 {
		config.SeatsPerRow = 21
	}
	if config.MaxRows <= 0 || config.MaxRows > len(rowLabels) {
		config.MaxRows = len(rowLabels)
	}
	if config.HoldTTL <= 0 {
		config.HoldTTL = 5 * time.Minute
	}
	return &service{
		repo:      repo,
		showtimes: showtimes,
		publisher: publisher,
		config:    config,
		log:       logger.GetDefault().WithComponent("seating"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GenerateSeatMap materializes one seat row per unit of room capacity,
// filling rows left to right, 21 seats per row, rows labelled A through J.
// A capacity of 22 yields A1..A21 and B1. The operation is idempotent:
// if seats already exist for the showtime they are returned untouched.
func (s *service) GenerateSeatMap(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error) {
	info, err := s.showtimes.GetShowtimeInfo(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetSeatsByShowtimeID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing seats: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	capacity := info.RoomCapacity
	maxSeats := s.config.MaxRows * s.config.SeatsPerRow
	if capacity > maxSeats {
		capacity = maxSeats
	}

	seats := make([]Seat, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := rowLabels[i/s.config.SeatsPerRow]
		number := i%s.config.SeatsPerRow + 1
		seats = append(seats, Seat{
			ID:         uuid.New(),
			ShowtimeID: showtimeID,
			RowLabel:   row,
			SeatNumber: number,
			Type:       TypeNormal,
			State:      StateAvailable,
			Price:      info.TicketPrice * TypeNormal.PriceMultiplier(),
		})
	}

	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return nil, fmt.Errorf("failed to create seats: %w", err)
	}

	s.log.Info("seat map generated",
		"showtime_id", showtimeID,
		"seats", len(seats),
	)
	return seats, nil
}

func (s *service) GetSeatMap(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error) {
	if _, err := s.showtimes.GetShowtimeInfo(ctx, showtimeID); err != nil {
		return nil, err
	}
	return s.repo.GetSeatsByShowtimeID(ctx, showtimeID)
}

func (s *service) GetSeat(ctx context.Context, seatID uuid.UUID) (*Seat, error) {
	return s.repo.GetSeatByID(ctx, seatID)
}

func (s *service) GetSeatsByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) ([]Seat, error) {
	return s.repo.GetSeatsByState(ctx, showtimeID, state)
}

func (s *service) GetSeatsByType(ctx context.Context, showtimeID uuid.UUID, seatType SeatType) ([]Seat, error) {
	return s.repo.GetSeatsByType(ctx, showtimeID, seatType)
}

func (s *service) CheckSeatExists(ctx context.Context, showtimeID uuid.UUID, rowLabel string, seatNumber int) (bool, error) {
	return s.repo.SeatExists(ctx, showtimeID, rowLabel, seatNumber)
}

// Hold places a time-bounded reservation on a single seat. The guard
// sequence runs under the seat's row lock, so two concurrent holds on
// the same seat serialize and exactly one succeeds. holder may be nil
// for anonymous box office holds.
func (s *service) Hold(ctx context.Context, seatID uuid.UUID, holder *uuid.UUID) (*Seat, error) {
	now := s.now()

	seat, err := s.repo.UpdateSeatWithLock(ctx, seatID, func(seat *Seat) error {
		info, err := s.showtimes.GetShowtimeInfo(ctx, seat.ShowtimeID)
		if err != nil {
			return err
		}
		if info.HasStarted(now) {
			return ErrShowtimeStarted
		}
		if info.SoldOut() {
			return ErrShowtimeSoldOut
		}

		// A lapsed hold self-heals: the seat is treated as free again
		if seat.HoldExpired(now) {
			seat.ReleaseHold()
		}

		if seat.State == StateBlocked {
			return ErrSeatBlocked
		}
		if !seat.IsAvailable() {
			return ErrSeatNotAvailable
		}

		seat.PlaceHold(holder, now, s.config.HoldTTL)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(&SeatEvent{
		Type:       EventSeatHeld,
		ShowtimeID: seat.ShowtimeID,
		SeatID:     &seat.ID,
		SeatCode:   seat.Code(),
		HeldBy:     seat.HeldBy,
	})
	return seat, nil
}

// Confirm finalizes a hold into a sale. A confirm that arrives after the
// hold window lapsed releases the seat instead; the release is committed
// and ErrHoldExpired reported, so the caller sees the failure while the
// seat returns to the pool.
func (s *service) Confirm(ctx context.Context, seatID uuid.UUID) (*Seat, error) {
	now := s.now()

	var opErr error
	var holder *uuid.UUID
	seat, err := s.repo.UpdateSeatWithLock(ctx, seatID, func(seat *Seat) error {
		if seat.State != StateReserved {
			return ErrSeatNotReserved
		}
		if seat.HoldExpired(now) {
			seat.ReleaseHold()
			opErr = ErrHoldExpired
			return nil // commit the release, report the expiry after
		}
		holder = seat.HeldBy
		seat.ConfirmHold()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		s.publish(&SeatEvent{
			Type:       EventSeatReleased,
			ShowtimeID: seat.ShowtimeID,
			SeatID:     &seat.ID,
			SeatCode:   seat.Code(),
		})
		return nil, opErr
	}

	// Sold capacity bookkeeping is advisory; a failure here never voids
	// the confirmed sale
	if err := s.showtimes.DecrementAvailableSeats(ctx, seat.ShowtimeID); err != nil {
		s.log.Warn("failed to decrement available seats",
			"showtime_id", seat.ShowtimeID,
			"error", err,
		)
	}

	s.publish(&SeatEvent{
		Type:       EventSeatConfirmed,
		ShowtimeID: seat.ShowtimeID,
		SeatID:     &seat.ID,
		SeatCode:   seat.Code(),
		HeldBy:     holder,
	})
	return seat, nil
}

// Release returns a RESERVED seat to the pool before its hold expires.
func (s *service) Release(ctx context.Context, seatID uuid.UUID) (*Seat, error) {
	seat, err := s.repo.UpdateSeatWithLock(ctx, seatID, func(seat *Seat) error {
		if seat.State != StateReserved {
			return ErrSeatNotReserved
		}
		seat.ReleaseHold()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(&SeatEvent{
		Type:       EventSeatReleased,
		ShowtimeID: seat.ShowtimeID,
		SeatID:     &seat.ID,
		SeatCode:   seat.Code(),
	})
	return seat, nil
}

// SetSeatStatus is the admin maintenance path. Only the AVAILABLE and
// BLOCKED states are reachable through it; reservation states belong to
// the hold flow exclusively.
func (s *service) SetSeatStatus(ctx context.Context, seatID uuid.UUID, state SeatState) (*Seat, error) {
	if state != StateAvailable && state != StateBlocked {
		return nil, ErrInvalidStateChange
	}

	return s.repo.UpdateSeatWithLock(ctx, seatID, func(seat *Seat) error {
		if seat.State != StateAvailable && seat.State != StateBlocked {
			return ErrInvalidStateChange
		}
		seat.State = state
		return nil
	})
}

func (s *service) GetOccupancy(ctx context.Context, showtimeID uuid.UUID) (*OccupancyStats, error) {
	if _, err := s.showtimes.GetShowtimeInfo(ctx, showtimeID); err != nil {
		return nil, err
	}

	stats := &OccupancyStats{ShowtimeID: showtimeID}

	counts := []struct {
		state  SeatState
		target *int64
	}{
		{StateAvailable, &stats.AvailableSeats},
		{StateReserved, &stats.ReservedSeats},
		{StateOccupied, &stats.OccupiedSeats},
		{StateBlocked, &stats.BlockedSeats},
	}
	for _, c := range counts {
		n, err := s.repo.CountByState(ctx, showtimeID, c.state)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s seats: %w", c.state, err)
		}
		*c.target = n
	}

	stats.TotalSeats = stats.AvailableSeats + stats.ReservedSeats + stats.OccupiedSeats + stats.BlockedSeats
	if stats.TotalSeats > 0 {
		pct := float64(stats.OccupiedSeats) / float64(stats.TotalSeats) * 100
		stats.OccupancyPercent = math.Round(pct*100) / 100
	}
	return stats, nil
}

// SweepExpired bulk-releases every lapsed hold across all showtimes.
func (s *service) SweepExpired(ctx context.Context) (int64, error) {
	released, err := s.repo.ReleaseExpiredHolds(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to release expired holds: %w", err)
	}
	if released > 0 {
		s.publish(&SeatEvent{
			Type:       EventSeatsSwept,
			SweptCount: released,
		})
	}
	return released, nil
}

func (s *service) DeleteSeatMap(ctx context.Context, showtimeID uuid.UUID) error {
	return s.repo.DeleteByShowtimeID(ctx, showtimeID)
}

// publish emits a lifecycle event when a publisher is wired. Event
// delivery is fire-and-forget; a broker outage never fails the seat
// operation that triggered it.
func (s *service) publish(event *SeatEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSeatEvent(event); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("failed to publish seat event", "type", event.Type, "error", err)
	}
}
