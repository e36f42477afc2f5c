package seating

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatState is the lifecycle state of a single seat for one showtime.
//
// Transitions:
//
//	AVAILABLE -> RESERVED  (hold placed)
//	RESERVED  -> OCCUPIED  (hold confirmed before expiry)
//	RESERVED  -> AVAILABLE (released, or hold expired)
//	AVAILABLE <-> BLOCKED  (admin only)
type SeatState string

const (
	StateAvailable SeatState = "AVAILABLE"
	StateReserved  SeatState = "RESERVED"
	StateOccupied  SeatState = "OCCUPIED"
	StateBlocked   SeatState = "BLOCKED"
)

// SeatType categorizes a seat for pricing. Only NORMAL is generated
// today; the column exists so premium rows can be introduced without a
// schema change.
type SeatType string

const (
	TypeNormal SeatType = "NORMAL"
)

// PriceMultiplier returns the factor applied to the showtime's base
// ticket price for this seat type.
func (t SeatType) PriceMultiplier() float64 {
	switch t {
	case TypeNormal:
		return 1.0
	default:
		return 1.0
	}
}

// Seat is one physical seat of a room, materialized per showtime.
type Seat struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowtimeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_showtime_row_number" json:"showtime_id"`
	RowLabel   string    `gorm:"column:row_label;not null;uniqueIndex:idx_showtime_row_number" json:"row_label"`
	SeatNumber int       `gorm:"not null;uniqueIndex:idx_showtime_row_number" json:"seat_number"`
	Type       SeatType  `gorm:"not null;default:'NORMAL'" json:"type"`
	State      SeatState `gorm:"not null;default:'AVAILABLE';index" json:"state"`
	Price      float64   `gorm:"not null" json:"price"`

	// Hold bookkeeping. HeldBy is nullable: walk-in box office holds
	// carry no customer identity.
	HeldBy        *uuid.UUID `gorm:"type:uuid" json:"held_by,omitempty"`
	HeldAt        *time.Time `json:"held_at,omitempty"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// Code renders the human-facing seat label, e.g. "A12".
func (s *Seat) Code() string {
	return fmt.Sprintf("%s%d", s.RowLabel, s.SeatNumber)
}

// IsAvailable reports whether the seat can accept a new hold
func (s *Seat) IsAvailable() bool {
	return s.State == StateAvailable
}

// HoldExpired reports whether a RESERVED seat's hold window has lapsed
func (s *Seat) HoldExpired(now time.Time) bool {
	return s.State == StateReserved &&
		s.HoldExpiresAt != nil &&
		now.After(*s.HoldExpiresAt)
}

// PlaceHold transitions the seat to RESERVED with a ttl-bounded window.
// Caller must already hold the row lock and have verified availability.
func (s *Seat) PlaceHold(holder *uuid.UUID, now time.Time, ttl time.Duration) {
	expires := now.Add(ttl)
	s.State = StateReserved
	s.HeldBy = holder
	s.HeldAt = &now
	s.HoldExpiresAt = &expires
}

// ConfirmHold finalizes a RESERVED seat into OCCUPIED. All hold fields
// are cleared: the sale record, not the seat row, carries the purchaser
// from here on.
func (s *Seat) ConfirmHold() {
	s.State = StateOccupied
	s.HeldBy = nil
	s.HeldAt = nil
	s.HoldExpiresAt = nil
}

// ReleaseHold returns the seat to AVAILABLE and clears all hold fields
func (s *Seat) ReleaseHold() {
	s.State = StateAvailable
	s.HeldBy = nil
	s.HeldAt = nil
	s.HoldExpiresAt = nil
}

// OccupancyStats is a per-showtime breakdown of seat states.
type OccupancyStats struct {
	ShowtimeID       uuid.UUID `json:"showtime_id"`
	TotalSeats       int64     `json:"total_seats"`
	AvailableSeats   int64     `json:"available_seats"`
	ReservedSeats    int64     `json:"reserved_seats"`
	OccupiedSeats    int64     `json:"occupied_seats"`
	BlockedSeats     int64     `json:"blocked_seats"`
	OccupancyPercent float64   `json:"occupancy_percent"`
}

// ShowtimeInfo is the slice of showtime data the seating flow consumes.
type ShowtimeInfo struct {
	ID             uuid.UUID
	RoomCapacity   int
	TicketPrice    float64
	ScheduledAt    time.Time
	AvailableSeats int
}

// HasStarted reports whether the screening has already begun
func (i *ShowtimeInfo) HasStarted(now time.Time) bool {
	return now.After(i.ScheduledAt)
}

// SoldOut reports whether the showtime has no remaining unsold capacity
func (i *ShowtimeInfo) SoldOut() bool {
	return i.AvailableSeats <= 0
}

// ShowtimeProvider decouples seating from the showtime catalog. The
// showtimes package supplies the implementation at wiring time.
type ShowtimeProvider interface {
	GetShowtimeInfo(ctx context.Context, id uuid.UUID) (*ShowtimeInfo, error)
	DecrementAvailableSeats(ctx context.Context, id uuid.UUID) error
}
