package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cinerama/internal/seating"
	"cinerama/internal/shared/config"
	"cinerama/internal/shared/database"
	"cinerama/internal/showtimes"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Cinerama Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Seats reference showtimes, so they go first
	tables := []string{
		"seats",
		"showtimes",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds demo showtimes and generates their seat maps
func (s *Seeder) SeedAll(cfg *config.Config) error {
	ctx := context.Background()

	showtimeRepo := showtimes.NewRepository(s.db.GetPostgreSQL())
	showtimeService := showtimes.NewService(showtimeRepo, nil)

	seatRepo := seating.NewRepository(s.db.GetPostgreSQL())
	seatingService := seating.NewService(
		seatRepo,
		showtimes.NewSeatingAdapter(showtimeService),
		nil,
		seating.Config{
			HoldTTL:     cfg.Seating.HoldTTL,
			SeatsPerRow: cfg.Seating.SeatsPerRow,
			MaxRows:     cfg.Seating.MaxRows,
		},
	)

	showtimesData := []struct {
		movieTitle   string
		roomName     string
		roomCapacity int
		ticketPrice  float64
		daysFromNow  int
	}{
		{"The Midnight Express", "Sala 1", 210, 12.50, 1},
		{"Canción del Mar", "Sala 2", 84, 10.00, 2},
		{"Last Train Home", "Sala 3", 22, 8.00, 3},
		{"Edge of the Storm", "Sala 1", 210, 12.50, 5},
	}

	fmt.Println("  🎬 Seeding showtimes...")
	for _, data := range showtimesData {
		showtime := &showtimes.Showtime{
			ID:           uuid.New(),
			MovieTitle:   data.movieTitle,
			RoomName:     data.roomName,
			RoomCapacity: data.roomCapacity,
			TicketPrice:  data.ticketPrice,
			ScheduledAt:  time.Now().UTC().AddDate(0, 0, data.daysFromNow),
		}

		if err := showtimeService.Create(ctx, showtime); err != nil {
			return fmt.Errorf("failed to create showtime %s: %w", data.movieTitle, err)
		}
		fmt.Printf("    ✅ Created showtime: %s (%s, %d seats)\n", showtime.MovieTitle, showtime.RoomName, showtime.RoomCapacity)

		seats, err := seatingService.GenerateSeatMap(ctx, showtime.ID)
		if err != nil {
			return fmt.Errorf("failed to generate seat map for %s: %w", data.movieTitle, err)
		}
		fmt.Printf("      ✅ Generated seat map: %d seats (%s..%s)\n", len(seats), seats[0].Code(), seats[len(seats)-1].Code())
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}
