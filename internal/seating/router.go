package seating

import (
	"cinerama/internal/shared/config"
	"cinerama/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	RegisterValidations()

	// SEAT MAP & REPORTING (public reads)

	showtimes := rg.Group("/showtimes")
	{
		showtimes.GET("/:showtimeId/seats", controller.GetSeatMap)                   // GET /api/v1/showtimes/:showtimeId/seats
		showtimes.GET("/:showtimeId/seats/state/:state", controller.GetSeatsByState) // GET /api/v1/showtimes/:showtimeId/seats/state/:state
		showtimes.GET("/:showtimeId/seats/type/:type", controller.GetSeatsByType)   // GET /api/v1/showtimes/:showtimeId/seats/type/:type
		showtimes.GET("/:showtimeId/seats/exists", controller.CheckSeatExists)      // GET /api/v1/showtimes/:showtimeId/seats/exists?row=A&number=12
		showtimes.GET("/:showtimeId/occupancy", controller.GetOccupancy)             // GET /api/v1/showtimes/:showtimeId/occupancy
	}

	// RESERVATION FLOW
	// Identity is optional on the reservation flow: box office terminals
	// hold anonymously, logged-in customers hold under their own id.

	seats := rg.Group("/seats")
	seats.Use(middleware.OptionalIdentity(cfg))
	{
		seats.GET("/:id", controller.GetSeat)              // GET /api/v1/seats/:id
		seats.POST("/:id/hold", controller.HoldSeat)       // POST /api/v1/seats/:id/hold
		seats.POST("/:id/confirm", controller.ConfirmSeat) // POST /api/v1/seats/:id/confirm
		seats.POST("/:id/release", controller.ReleaseSeat) // POST /api/v1/seats/:id/release
	}

	// ADMIN OPERATIONS

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.POST("/showtimes/:showtimeId/seats", controller.GenerateSeatMap) // POST /api/v1/admin/showtimes/:showtimeId/seats
		admin.PATCH("/seats/:id/status", controller.SetSeatStatus)             // PATCH /api/v1/admin/seats/:id/status
	}
}
