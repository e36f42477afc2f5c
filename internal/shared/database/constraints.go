package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// Unique physical seat per showtime: no two rows may describe the same
	// (showtime, row, number) triple
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_showtime
		ON seats (showtime_id, row_label, seat_number);
	`).Error
	if err != nil {
		return err
	}

	// Index for occupancy queries by showtime and state
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_showtime_state
		ON seats (showtime_id, state);
	`).Error
	if err != nil {
		return err
	}

	// Index for the expiry sweeper scan
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_state_hold_expires
		ON seats (state, hold_expires_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
