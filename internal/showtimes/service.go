package showtimes

import (
	"context"
	"errors"
	"fmt"

	"cinerama/internal/shared/constants"
	"cinerama/pkg/cache"
	"cinerama/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeatMapDeleter removes all seats generated for a showtime. Satisfied
// by the seating service; injected at wiring time so deleting a
// showtime cascades to its seat map.
type SeatMapDeleter interface {
	DeleteSeatMap(ctx context.Context, showtimeID uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, showtime *Showtime) error
	GetByID(ctx context.Context, id uuid.UUID) (*Showtime, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustAvailableSeats(ctx context.Context, id uuid.UUID, delta int) error
	SetSeatMapDeleter(deleter SeatMapDeleter)
}

type service struct {
	repo           Repository
	cacheService   cache.Service
	seatMapDeleter SeatMapDeleter
}

// NewService builds the showtime lookup service. cacheService may be nil;
// showtime metadata is stable once scheduled so a short Redis TTL is safe,
// but seat state is never cached.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cacheService: cacheService}
}

func (s *service) Create(ctx context.Context, showtime *Showtime) error {
	if showtime.AvailableSeats == 0 {
		showtime.AvailableSeats = showtime.RoomCapacity
	}
	return s.repo.Create(ctx, showtime)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	if s.cacheService != nil {
		var cached Showtime
		cacheKey := constants.BuildShowtimeInfoKey(id.String())
		err := s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_SHOWTIME_INFO, func() (interface{}, error) {
			return s.fetchByID(ctx, id)
		}, &cached)
		if err == nil {
			return &cached, nil
		}
		if errors.Is(err, ErrShowtimeNotFound) {
			return nil, err
		}
		logger.GetDefault().Warn("showtime cache lookup failed, falling back to database", "error", err)
	}

	return s.fetchByID(ctx, id)
}

func (s *service) fetchByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	showtime, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowtimeNotFound
		}
		return nil, fmt.Errorf("failed to get showtime: %w", err)
	}
	return showtime, nil
}

// SetSeatMapDeleter injects the seating-side cascade
func (s *service) SetSeatMapDeleter(deleter SeatMapDeleter) {
	s.seatMapDeleter = deleter
}

// Delete removes a showtime and, through the injected deleter, the seat
// map it owns.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if s.seatMapDeleter != nil {
		if err := s.seatMapDeleter.DeleteSeatMap(ctx, id); err != nil {
			return fmt.Errorf("failed to delete seat map: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete showtime: %w", err)
	}
	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildShowtimeInfoKey(id.String())); err != nil {
			logger.GetDefault().Warn("failed to invalidate showtime cache", "error", err)
		}
	}
	return nil
}

func (s *service) AdjustAvailableSeats(ctx context.Context, id uuid.UUID, delta int) error {
	if err := s.repo.AdjustAvailableSeats(ctx, id, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShowtimeNotFound
		}
		return err
	}
	// Remaining capacity changed; drop the cached copy
	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildShowtimeInfoKey(id.String())); err != nil {
			logger.GetDefault().Warn("failed to invalidate showtime cache", "error", err)
		}
	}
	return nil
}
