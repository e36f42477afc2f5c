package seating

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error)
	GetSeatsByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error)
	GetSeatsByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) ([]Seat, error)
	GetSeatsByType(ctx context.Context, showtimeID uuid.UUID, seatType SeatType) ([]Seat, error)
	SeatExists(ctx context.Context, showtimeID uuid.UUID, rowLabel string, seatNumber int) (bool, error)
	CountSeats(ctx context.Context, showtimeID uuid.UUID) (int64, error)
	CountByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) (int64, error)
	UpdateSeatWithLock(ctx context.Context, id uuid.UUID, fn func(seat *Seat) error) (*Seat, error)
	ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteByShowtimeID(ctx context.Context, showtimeID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).CreateInBatches(seats, 100).Error
}

func (r *repository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &seat, nil
}

func (r *repository) GetSeatsByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("showtime_id = ?", showtimeID).
		Order("row_label ASC, seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("showtime_id = ? AND state = ?", showtimeID, state).
		Order("row_label ASC, seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByType(ctx context.Context, showtimeID uuid.UUID, seatType SeatType) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("showtime_id = ? AND type = ?", showtimeID, seatType).
		Order("row_label ASC, seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) SeatExists(ctx context.Context, showtimeID uuid.UUID, rowLabel string, seatNumber int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("showtime_id = ? AND row_label = ? AND seat_number = ?", showtimeID, rowLabel, seatNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountSeats(ctx context.Context, showtimeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("showtime_id = ?", showtimeID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("showtime_id = ? AND state = ?", showtimeID, state).
		Count(&count).Error
	return count, err
}

// UpdateSeatWithLock loads the seat under SELECT ... FOR UPDATE, applies
// fn, and persists the mutated row in the same transaction. If fn returns
// an error the transaction rolls back and nothing is written. This is the
// single mutation path for seat state; every transition serializes on the
// database row lock.
func (r *repository) UpdateSeatWithLock(ctx context.Context, id uuid.UUID, fn func(seat *Seat) error) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seat, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return err
		}

		if err := fn(&seat); err != nil {
			return err
		}

		return tx.Save(&seat).Error
	})
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// ReleaseExpiredHolds bulk-releases every RESERVED seat whose hold window
// ended at or before cutoff. The state predicate in the WHERE clause makes
// the update conditional, so a hold confirmed between scan and write is
// never clobbered.
func (r *repository) ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Seat{}).
		Where("state = ? AND hold_expires_at IS NOT NULL AND hold_expires_at <= ?", StateReserved, cutoff).
		Updates(map[string]interface{}{
			"state":           StateAvailable,
			"held_by":         nil,
			"held_at":         nil,
			"hold_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteByShowtimeID(ctx context.Context, showtimeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("showtime_id = ?", showtimeID).
		Delete(&Seat{}).Error
}
