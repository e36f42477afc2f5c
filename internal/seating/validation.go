package seating

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the custom binding validators used by the
// seating request DTOs.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("seatstate", validateSeatState)
	}
}

func validateSeatState(fl validator.FieldLevel) bool {
	switch SeatState(fl.Field().String()) {
	case StateAvailable, StateReserved, StateOccupied, StateBlocked:
		return true
	default:
		return false
	}
}
