package showtimes

import (
	"time"

	"github.com/google/uuid"
)

// Showtime is a scheduled screening of a movie in a specific room. The
// seating subsystem references showtimes by id but never owns them;
// catalog management (movies, rooms, showtime CRUD) lives in a separate
// service and this model carries only what seat allocation consumes.
type Showtime struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MovieTitle   string    `gorm:"not null" json:"movie_title"`
	RoomName     string    `gorm:"not null" json:"room_name"`
	RoomCapacity int       `gorm:"not null" json:"room_capacity"`
	TicketPrice  float64   `gorm:"not null" json:"ticket_price"`
	ScheduledAt  time.Time `gorm:"not null;index" json:"scheduled_at"`

	// AvailableSeats is the remaining unsold capacity, maintained by the
	// sale flow. Holds are refused once it reaches zero.
	AvailableSeats int `gorm:"not null" json:"available_seats"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Showtime
func (Showtime) TableName() string {
	return "showtimes"
}

// HasStarted reports whether the screening has already begun
func (s *Showtime) HasStarted(now time.Time) bool {
	return now.After(s.ScheduledAt)
}

// SoldOut reports whether the showtime has no remaining unsold capacity
func (s *Showtime) SoldOut() bool {
	return s.AvailableSeats <= 0
}
