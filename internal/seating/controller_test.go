package seating

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrSeatNotFound, http.StatusNotFound},
		{ErrShowtimeNotFound, http.StatusNotFound},
		{ErrSeatNotAvailable, http.StatusConflict},
		{ErrSeatBlocked, http.StatusConflict},
		{ErrSeatNotReserved, http.StatusConflict},
		{ErrHoldExpired, http.StatusConflict},
		{ErrShowtimeSoldOut, http.StatusConflict},
		{ErrShowtimeStarted, http.StatusUnprocessableEntity},
		{ErrInvalidStateChange, http.StatusUnprocessableEntity},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, statusFromError(tc.err), tc.err.Error())
	}
}
