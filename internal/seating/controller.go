package seating

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"cinerama/internal/shared/middleware"
	"cinerama/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
	holdTTL time.Duration
}

func NewController(service Service, holdTTL time.Duration) *Controller {
	return &Controller{service: service, holdTTL: holdTTL}
}

// SEAT MAP

func (c *Controller) GenerateSeatMap(ctx *gin.Context) {
	showtimeID, ok := parseUUIDParam(ctx, "showtimeId")
	if !ok {
		return
	}

	seats, err := c.service.GenerateSeatMap(ctx.Request.Context(), showtimeID)
	if err != nil {
		respondError(ctx, "Failed to generate seat map", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seat map generated successfully",
		toSeatMapResponse(showtimeID.String(), seats), nil)
}

func (c *Controller) GetSeatMap(ctx *gin.Context) {
	showtimeID, ok := parseUUIDParam(ctx, "showtimeId")
	if !ok {
		return
	}

	seats, err := c.service.GetSeatMap(ctx.Request.Context(), showtimeID)
	if err != nil {
		respondError(ctx, "Failed to get seat map", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully",
		toSeatMapResponse(showtimeID.String(), seats), nil)
}

func (c *Controller) GetSeatsByState(ctx *gin.Context) {
	showtimeID, ok := parseUUIDParam(ctx, "showtimeId")
	if !ok {
		return
	}

	state := SeatState(ctx.Param("state"))
	switch state {
	case StateAvailable, StateReserved, StateOccupied, StateBlocked:
	default:
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat state", nil, "state must be one of AVAILABLE, RESERVED, OCCUPIED, BLOCKED")
		return
	}

	seats, err := c.service.GetSeatsByState(ctx.Request.Context(), showtimeID, state)
	if err != nil {
		respondError(ctx, "Failed to get seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully",
		toSeatMapResponse(showtimeID.String(), seats), nil)
}

func (c *Controller) GetSeatsByType(ctx *gin.Context) {
	showtimeID, ok := parseUUIDParam(ctx, "showtimeId")
	if !ok {
		return
	}

	seatType := SeatType(ctx.Param("type"))
	if seatType != TypeNormal {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat type", nil, "type must be NORMAL")
		return
	}

	seats, err := c.service.GetSeatsByType(ctx.Request.Context(), showtimeID, seatType)
	if err != nil {
		respondError(ctx, "Failed to get seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully",
		toSeatMapResponse(showtimeID.String(), seats), nil)
}

func (c *Controller) CheckSeatExists(ctx *gin.Context) {
	showtimeID, ok := parseUUIDParam(ctx, "showtimeId")
	if !ok {
		return
	}

	row := ctx.Query("row")
	number, err := strconv.Atoi(ctx.Query("number"))
	if row == "" || err != nil || number < 1 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat reference", nil, "row and number query parameters are required")
		return
	}

	exists, err := c.service.CheckSeatExists(ctx.Request.Context(), showtimeID, row, number)
	if err != nil {
		respondError(ctx, "Failed to check seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat existence checked",
		gin.H{"row": row, "number": number, "exists": exists}, nil)
}

func (c *Controller) GetSeat(ctx *gin.Context) {
	seatID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	seat, err := c.service.GetSeat(ctx.Request.Context(), seatID)
	if err != nil {
		respondError(ctx, "Failed to get seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat retrieved successfully", toSeatResponse(seat), nil)
}

// RESERVATION FLOW

func (c *Controller) HoldSeat(ctx *gin.Context) {
	seatID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	// Authenticated callers become the holder reference; anonymous box
	// office holds carry none
	var holder *uuid.UUID
	if customerID, authed := middleware.CustomerIDFromContext(ctx); authed {
		holder = &customerID
	}

	seat, err := c.service.Hold(ctx.Request.Context(), seatID, holder)
	if err != nil {
		respondError(ctx, "Failed to hold seat", err)
		return
	}

	resp := HoldResponse{
		Seat:       toSeatResponse(seat),
		ExpiresAt:  *seat.HoldExpiresAt,
		TTLSeconds: int(c.holdTTL.Seconds()),
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat held successfully", resp, nil)
}

func (c *Controller) ConfirmSeat(ctx *gin.Context) {
	seatID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	seat, err := c.service.Confirm(ctx.Request.Context(), seatID)
	if err != nil {
		respondError(ctx, "Failed to confirm seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat confirmed successfully", toSeatResponse(seat), nil)
}

func (c *Controller) ReleaseSeat(ctx *gin.Context) {
	seatID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	seat, err := c.service.Release(ctx.Request.Context(), seatID)
	if err != nil {
		respondError(ctx, "Failed to release seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat released successfully", toSeatResponse(seat), nil)
}

// ADMIN

func (c *Controller) SetSeatStatus(ctx *gin.Context) {
	seatID, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req SetSeatStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	seat, err := c.service.SetSeatStatus(ctx.Request.Context(), seatID, SeatState(req.State))
	if err != nil {
		respondError(ctx, "Failed to update seat status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat status updated successfully", toSeatResponse(seat), nil)
}

// REPORTING

func (c *Controller) GetOccupancy(ctx *gin.Context) {
	showtimeID, ok := parseUUIDParam(ctx, "showtimeId")
	if !ok {
		return
	}

	stats, err := c.service.GetOccupancy(ctx.Request.Context(), showtimeID)
	if err != nil {
		respondError(ctx, "Failed to get occupancy", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Occupancy retrieved successfully", stats, nil)
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid "+name, nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps the seating sentinel errors onto HTTP statuses.
func respondError(ctx *gin.Context, message string, err error) {
	response.RespondJSON(ctx, "error", statusFromError(err), message, nil, err.Error())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, ErrSeatNotFound), errors.Is(err, ErrShowtimeNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSeatNotAvailable),
		errors.Is(err, ErrSeatBlocked),
		errors.Is(err, ErrSeatNotReserved),
		errors.Is(err, ErrHoldExpired),
		errors.Is(err, ErrShowtimeSoldOut):
		return http.StatusConflict
	case errors.Is(err, ErrShowtimeStarted), errors.Is(err, ErrInvalidStateChange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
