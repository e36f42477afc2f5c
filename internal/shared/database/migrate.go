package database

import (
	"cinerama/internal/seating"
	"cinerama/internal/showtimes"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&showtimes.Showtime{},
		&seating.Seat{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
