package seating

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatCode(t *testing.T) {
	seat := Seat{RowLabel: "A", SeatNumber: 12}
	assert.Equal(t, "A12", seat.Code())

	seat = Seat{RowLabel: "J", SeatNumber: 1}
	assert.Equal(t, "J1", seat.Code())
}

func TestHoldExpired(t *testing.T) {
	now := time.Now().UTC()

	t.Run("reserved past the window", func(t *testing.T) {
		expires := now.Add(-time.Second)
		seat := Seat{State: StateReserved, HoldExpiresAt: &expires}
		assert.True(t, seat.HoldExpired(now))
	})

	t.Run("exactly at the deadline is still live", func(t *testing.T) {
		seat := Seat{State: StateReserved, HoldExpiresAt: &now}
		assert.False(t, seat.HoldExpired(now))
	})

	t.Run("non-reserved states never expire", func(t *testing.T) {
		expires := now.Add(-time.Hour)
		for _, state := range []SeatState{StateAvailable, StateOccupied, StateBlocked} {
			seat := Seat{State: state, HoldExpiresAt: &expires}
			assert.False(t, seat.HoldExpired(now), string(state))
		}
	})

	t.Run("missing expiry never expires", func(t *testing.T) {
		seat := Seat{State: StateReserved}
		assert.False(t, seat.HoldExpired(now))
	})
}

func TestHoldLifecycle(t *testing.T) {
	now := time.Now().UTC()
	holder := uuid.New()

	seat := Seat{State: StateAvailable}
	seat.PlaceHold(&holder, now, 5*time.Minute)

	assert.Equal(t, StateReserved, seat.State)
	require.NotNil(t, seat.HoldExpiresAt)
	assert.Equal(t, now.Add(5*time.Minute), *seat.HoldExpiresAt)

	confirmed := seat
	confirmed.ConfirmHold()
	assert.Equal(t, StateOccupied, confirmed.State)
	assert.Nil(t, confirmed.HeldBy)
	assert.Nil(t, confirmed.HeldAt)
	assert.Nil(t, confirmed.HoldExpiresAt)

	released := seat
	released.ReleaseHold()
	assert.Equal(t, StateAvailable, released.State)
	assert.Nil(t, released.HeldBy)
	assert.Nil(t, released.HeldAt)
	assert.Nil(t, released.HoldExpiresAt)
}

func TestPriceMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, TypeNormal.PriceMultiplier())
	assert.Equal(t, 1.0, SeatType("UNKNOWN").PriceMultiplier())
}
