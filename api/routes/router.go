// api/routes/router.go
package routes

import (
	"cinerama/internal/seating"
	"cinerama/internal/shared/config"
	"cinerama/internal/shared/database"
	"cinerama/internal/showtimes"
	"cinerama/pkg/cache"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher seating.EventPublisher

	seatingService seating.Service
}

// NewRouter creates a new router instance. publisher may be nil when
// Kafka is disabled.
func NewRouter(cfg *config.Config, db *database.DB, publisher seating.EventPublisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupSeatingRoutes(api)
	}
}

// SeatingService exposes the wired seating service so the expiry
// sweeper can share the same instance as the HTTP handlers. Valid only
// after SetupRoutes.
func (r *Router) SeatingService() seating.Service {
	return r.seatingService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinerama-seating",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinerama-seating",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupSeatingRoutes wires the showtime catalog and the seat
// reservation engine
func (r *Router) setupSeatingRoutes(rg *gin.RouterGroup) {
	cacheService := cache.NewService(r.db.GetRedis())

	showtimeRepo := showtimes.NewRepository(r.db.GetPostgreSQL())
	showtimeService := showtimes.NewService(showtimeRepo, cacheService)

	seatRepo := seating.NewRepository(r.db.GetPostgreSQL())
	seatingService := seating.NewService(
		seatRepo,
		showtimes.NewSeatingAdapter(showtimeService),
		r.publisher,
		seating.Config{
			HoldTTL:     r.config.Seating.HoldTTL,
			SeatsPerRow: r.config.Seating.SeatsPerRow,
			MaxRows:     r.config.Seating.MaxRows,
		},
	)
	r.seatingService = seatingService

	// Deleting a showtime cascades to its seat map
	showtimeService.SetSeatMapDeleter(seatingService)

	seatingController := seating.NewController(seatingService, r.config.Seating.HoldTTL)
	seating.SetupSeatingRoutes(rg, seatingController, r.config)
}
