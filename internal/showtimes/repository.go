package showtimes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, showtime *Showtime) error
	GetByID(ctx context.Context, id uuid.UUID) (*Showtime, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustAvailableSeats(ctx context.Context, id uuid.UUID, delta int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, showtime *Showtime) error {
	return r.db.WithContext(ctx).Create(showtime).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	var showtime Showtime
	err := r.db.WithContext(ctx).First(&showtime, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Showtime{}, "id = ?", id).Error
}

// AdjustAvailableSeats applies delta to the remaining unsold capacity
// under a row lock, refusing changes that would drop below zero or
// exceed the room capacity.
func (r *repository) AdjustAvailableSeats(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var showtime Showtime

		// Lock the row for update
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&showtime).Error; err != nil {
			return err
		}

		newAvailable := showtime.AvailableSeats + delta
		if newAvailable < 0 {
			return ErrNoCapacity
		}
		if newAvailable > showtime.RoomCapacity {
			return ErrCapacityExceeded
		}

		return tx.Model(&showtime).Update("available_seats", newAvailable).Error
	})
}
