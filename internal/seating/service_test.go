package seating

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	repo      *fakeRepository
	provider  *fakeShowtimeProvider
	publisher *fakePublisher
	service   *service
	showtime  ShowtimeInfo
}

func newTestEnv(t *testing.T, capacity int) *testEnv {
	t.Helper()

	repo := newFakeRepository()
	provider := newFakeShowtimeProvider()
	publisher := &fakePublisher{}

	showtime := ShowtimeInfo{
		ID:             uuid.New(),
		RoomCapacity:   capacity,
		TicketPrice:    10.0,
		ScheduledAt:    time.Now().UTC().Add(2 * time.Hour),
		AvailableSeats: capacity,
	}
	provider.add(showtime)

	svc := NewService(repo, provider, publisher, Config{
		HoldTTL:     5 * time.Minute,
		SeatsPerRow: 21,
		MaxRows:     10,
	}).(*service)

	return &testEnv{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		service:   svc,
		showtime:  showtime,
	}
}

func (e *testEnv) generate(t *testing.T) []Seat {
	t.Helper()
	seats, err := e.service.GenerateSeatMap(context.Background(), e.showtime.ID)
	require.NoError(t, err)
	return seats
}

// setClock pins the service clock to a fixed instant.
func (e *testEnv) setClock(at time.Time) {
	e.service.now = func() time.Time { return at }
}

func TestGenerateSeatMap(t *testing.T) {
	t.Run("fills rows left to right with 21 seats per row", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		require.Len(t, seats, 22)
		assert.Equal(t, "A1", seats[0].Code())
		assert.Equal(t, "A21", seats[20].Code())
		assert.Equal(t, "B1", seats[21].Code())

		for _, seat := range seats {
			assert.Equal(t, StateAvailable, seat.State)
			assert.Equal(t, TypeNormal, seat.Type)
			assert.Equal(t, 10.0, seat.Price)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		env := newTestEnv(t, 22)
		first := env.generate(t)
		second := env.generate(t)

		require.Len(t, second, len(first))
		count, err := env.repo.CountSeats(context.Background(), env.showtime.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(22), count)
	})

	t.Run("does not reset held seats on regeneration", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		holder := uuid.New()
		_, err := env.service.Hold(context.Background(), seats[0].ID, &holder)
		require.NoError(t, err)

		env.generate(t)

		seat, err := env.service.GetSeat(context.Background(), seats[0].ID)
		require.NoError(t, err)
		assert.Equal(t, StateReserved, seat.State)
	})

	t.Run("caps capacity at ten rows", func(t *testing.T) {
		env := newTestEnv(t, 500)
		seats := env.generate(t)

		require.Len(t, seats, 210)
		assert.Equal(t, "J21", seats[len(seats)-1].Code())
	})

	t.Run("unknown showtime", func(t *testing.T) {
		env := newTestEnv(t, 22)
		_, err := env.service.GenerateSeatMap(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrShowtimeNotFound)
	})
}

func TestHold(t *testing.T) {
	t.Run("places a hold with expiry", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		now := time.Now().UTC()
		env.setClock(now)

		holder := uuid.New()
		seat, err := env.service.Hold(context.Background(), seats[0].ID, &holder)
		require.NoError(t, err)

		assert.Equal(t, StateReserved, seat.State)
		require.NotNil(t, seat.HeldBy)
		assert.Equal(t, holder, *seat.HeldBy)
		require.NotNil(t, seat.HoldExpiresAt)
		assert.Equal(t, now.Add(5*time.Minute), *seat.HoldExpiresAt)
		assert.Contains(t, env.publisher.eventTypes(), EventSeatHeld)
	})

	t.Run("accepts anonymous holders", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		seat, err := env.service.Hold(context.Background(), seats[0].ID, nil)
		require.NoError(t, err)
		assert.Equal(t, StateReserved, seat.State)
		assert.Nil(t, seat.HeldBy)
	})

	t.Run("rejects a second hold on the same seat", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		_, err := env.service.Hold(context.Background(), seats[0].ID, nil)
		require.NoError(t, err)

		_, err = env.service.Hold(context.Background(), seats[0].ID, nil)
		assert.ErrorIs(t, err, ErrSeatNotAvailable)
	})

	t.Run("rejects blocked seats", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		_, err := env.service.SetSeatStatus(context.Background(), seats[0].ID, StateBlocked)
		require.NoError(t, err)

		_, err = env.service.Hold(context.Background(), seats[0].ID, nil)
		assert.ErrorIs(t, err, ErrSeatBlocked)
	})

	t.Run("rejects holds after the showtime started", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		env.setClock(env.showtime.ScheduledAt.Add(time.Minute))

		_, err := env.service.Hold(context.Background(), seats[0].ID, nil)
		assert.ErrorIs(t, err, ErrShowtimeStarted)
	})

	t.Run("rejects holds on a sold out showtime", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		soldOut := env.showtime
		soldOut.AvailableSeats = 0
		env.provider.add(soldOut)

		_, err := env.service.Hold(context.Background(), seats[0].ID, nil)
		assert.ErrorIs(t, err, ErrShowtimeSoldOut)
	})

	t.Run("unknown seat", func(t *testing.T) {
		env := newTestEnv(t, 22)
		env.generate(t)

		_, err := env.service.Hold(context.Background(), uuid.New(), nil)
		assert.ErrorIs(t, err, ErrSeatNotFound)
	})

	t.Run("expired hold self-heals on the next hold attempt", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		start := time.Now().UTC()
		env.setClock(start)

		first := uuid.New()
		_, err := env.service.Hold(context.Background(), seats[0].ID, &first)
		require.NoError(t, err)

		// Past the hold window the seat is treated as free again
		env.setClock(start.Add(6 * time.Minute))

		second := uuid.New()
		seat, err := env.service.Hold(context.Background(), seats[0].ID, &second)
		require.NoError(t, err)
		assert.Equal(t, StateReserved, seat.State)
		assert.Equal(t, second, *seat.HeldBy)
	})

	t.Run("exactly one of many concurrent holds wins", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)
		seatID := seats[0].ID

		const attempts = 50
		var wg sync.WaitGroup
		results := make(chan error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				holder := uuid.New()
				_, err := env.service.Hold(context.Background(), seatID, &holder)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var wins, conflicts int
		for err := range results {
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, ErrSeatNotAvailable):
				conflicts++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, attempts-1, conflicts)

		// An observer sees exactly one reserved seat
		reserved, err := env.repo.CountByState(context.Background(), env.showtime.ID, StateReserved)
		require.NoError(t, err)
		assert.Equal(t, int64(1), reserved)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("finalizes a live hold", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		holder := uuid.New()
		_, err := env.service.Hold(context.Background(), seats[0].ID, &holder)
		require.NoError(t, err)

		seat, err := env.service.Confirm(context.Background(), seats[0].ID)
		require.NoError(t, err)

		assert.Equal(t, StateOccupied, seat.State)
		assert.Nil(t, seat.HoldExpiresAt)
		assert.Nil(t, seat.HeldBy)
		assert.Equal(t, 1, env.provider.decrements)
		assert.Contains(t, env.publisher.eventTypes(), EventSeatConfirmed)

		// The confirmed event still names the purchaser
		last := env.publisher.events[len(env.publisher.events)-1]
		require.NotNil(t, last.HeldBy)
		assert.Equal(t, holder, *last.HeldBy)
	})

	t.Run("releases an expired hold and reports the expiry", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		start := time.Now().UTC()
		env.setClock(start)

		_, err := env.service.Hold(context.Background(), seats[0].ID, nil)
		require.NoError(t, err)

		env.setClock(start.Add(6 * time.Minute))

		_, err = env.service.Confirm(context.Background(), seats[0].ID)
		assert.ErrorIs(t, err, ErrHoldExpired)

		// The release side effect survives the error
		seat, err := env.service.GetSeat(context.Background(), seats[0].ID)
		require.NoError(t, err)
		assert.Equal(t, StateAvailable, seat.State)
		assert.Nil(t, seat.HeldBy)
		assert.Equal(t, 0, env.provider.decrements)
	})

	t.Run("rejects seats that are not reserved", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		_, err := env.service.Confirm(context.Background(), seats[0].ID)
		assert.ErrorIs(t, err, ErrSeatNotReserved)
	})

	t.Run("rejects double confirmation", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		_, err := env.service.Hold(context.Background(), seats[0].ID, nil)
		require.NoError(t, err)
		_, err = env.service.Confirm(context.Background(), seats[0].ID)
		require.NoError(t, err)

		_, err = env.service.Confirm(context.Background(), seats[0].ID)
		assert.ErrorIs(t, err, ErrSeatNotReserved)
	})
}

func TestRelease(t *testing.T) {
	t.Run("returns a reserved seat to the pool", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		holder := uuid.New()
		_, err := env.service.Hold(context.Background(), seats[0].ID, &holder)
		require.NoError(t, err)

		seat, err := env.service.Release(context.Background(), seats[0].ID)
		require.NoError(t, err)

		assert.Equal(t, StateAvailable, seat.State)
		assert.Nil(t, seat.HeldBy)
		assert.Nil(t, seat.HoldExpiresAt)
		assert.Contains(t, env.publisher.eventTypes(), EventSeatReleased)
	})

	t.Run("rejects seats that are not reserved", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		_, err := env.service.Release(context.Background(), seats[0].ID)
		assert.ErrorIs(t, err, ErrSeatNotReserved)

		_, err = env.service.Hold(context.Background(), seats[0].ID, nil)
		require.NoError(t, err)
		_, err = env.service.Confirm(context.Background(), seats[0].ID)
		require.NoError(t, err)

		// An occupied seat cannot be released through the hold flow
		_, err = env.service.Release(context.Background(), seats[0].ID)
		assert.ErrorIs(t, err, ErrSeatNotReserved)
	})
}

func TestSetSeatStatus(t *testing.T) {
	t.Run("blocks and unblocks available seats", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		seat, err := env.service.SetSeatStatus(context.Background(), seats[0].ID, StateBlocked)
		require.NoError(t, err)
		assert.Equal(t, StateBlocked, seat.State)

		seat, err = env.service.SetSeatStatus(context.Background(), seats[0].ID, StateAvailable)
		require.NoError(t, err)
		assert.Equal(t, StateAvailable, seat.State)
	})

	t.Run("cannot touch reservation states", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)

		_, err := env.service.SetSeatStatus(context.Background(), seats[0].ID, StateReserved)
		assert.ErrorIs(t, err, ErrInvalidStateChange)

		_, err = env.service.Hold(context.Background(), seats[1].ID, nil)
		require.NoError(t, err)

		_, err = env.service.SetSeatStatus(context.Background(), seats[1].ID, StateBlocked)
		assert.ErrorIs(t, err, ErrInvalidStateChange)
	})
}

func TestGetOccupancy(t *testing.T) {
	t.Run("breaks seats down by state", func(t *testing.T) {
		env := newTestEnv(t, 22)
		seats := env.generate(t)
		ctx := context.Background()

		// 2 occupied, 3 reserved, 1 blocked, 16 available
		for i := 0; i < 2; i++ {
			_, err := env.service.Hold(ctx, seats[i].ID, nil)
			require.NoError(t, err)
			_, err = env.service.Confirm(ctx, seats[i].ID)
			require.NoError(t, err)
		}
		for i := 2; i < 5; i++ {
			_, err := env.service.Hold(ctx, seats[i].ID, nil)
			require.NoError(t, err)
		}
		_, err := env.service.SetSeatStatus(ctx, seats[5].ID, StateBlocked)
		require.NoError(t, err)

		stats, err := env.service.GetOccupancy(ctx, env.showtime.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(22), stats.TotalSeats)
		assert.Equal(t, int64(16), stats.AvailableSeats)
		assert.Equal(t, int64(3), stats.ReservedSeats)
		assert.Equal(t, int64(2), stats.OccupiedSeats)
		assert.Equal(t, int64(1), stats.BlockedSeats)
		assert.InDelta(t, 9.09, stats.OccupancyPercent, 0.01)
	})

	t.Run("zero seats means zero percent", func(t *testing.T) {
		env := newTestEnv(t, 22)

		stats, err := env.service.GetOccupancy(context.Background(), env.showtime.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.TotalSeats)
		assert.Equal(t, 0.0, stats.OccupancyPercent)
	})

	t.Run("unknown showtime", func(t *testing.T) {
		env := newTestEnv(t, 22)
		_, err := env.service.GetOccupancy(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrShowtimeNotFound)
	})
}

func TestSweepExpired(t *testing.T) {
	env := newTestEnv(t, 22)
	seats := env.generate(t)
	ctx := context.Background()

	start := time.Now().UTC()
	env.setClock(start)

	// 5 holds that will lapse
	for i := 0; i < 5; i++ {
		_, err := env.service.Hold(ctx, seats[i].ID, nil)
		require.NoError(t, err)
	}
	// 1 confirmed sale that must survive the sweep
	_, err := env.service.Hold(ctx, seats[5].ID, nil)
	require.NoError(t, err)
	_, err = env.service.Confirm(ctx, seats[5].ID)
	require.NoError(t, err)

	env.setClock(start.Add(6 * time.Minute))

	// A fresh hold placed after the cutoff stays live
	_, err = env.service.Hold(ctx, seats[6].ID, nil)
	require.NoError(t, err)

	env.setClock(start.Add(7 * time.Minute))

	released, err := env.service.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), released)

	available, err := env.repo.CountByState(ctx, env.showtime.ID, StateAvailable)
	require.NoError(t, err)
	assert.Equal(t, int64(20), available)

	occupied, err := env.service.GetSeat(ctx, seats[5].ID)
	require.NoError(t, err)
	assert.Equal(t, StateOccupied, occupied.State)

	live, err := env.service.GetSeat(ctx, seats[6].ID)
	require.NoError(t, err)
	assert.Equal(t, StateReserved, live.State)

	assert.Contains(t, env.publisher.eventTypes(), EventSeatsSwept)

	// Nothing left to reclaim
	released, err = env.service.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)
}

func TestSeatQueries(t *testing.T) {
	env := newTestEnv(t, 22)
	seats := env.generate(t)
	ctx := context.Background()

	t.Run("by state", func(t *testing.T) {
		_, err := env.service.Hold(ctx, seats[0].ID, nil)
		require.NoError(t, err)

		reserved, err := env.service.GetSeatsByState(ctx, env.showtime.ID, StateReserved)
		require.NoError(t, err)
		require.Len(t, reserved, 1)
		assert.Equal(t, seats[0].ID, reserved[0].ID)
	})

	t.Run("by type", func(t *testing.T) {
		normal, err := env.service.GetSeatsByType(ctx, env.showtime.ID, TypeNormal)
		require.NoError(t, err)
		assert.Len(t, normal, 22)
	})

	t.Run("existence", func(t *testing.T) {
		exists, err := env.service.CheckSeatExists(ctx, env.showtime.ID, "A", 21)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = env.service.CheckSeatExists(ctx, env.showtime.ID, "B", 2)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestDeleteSeatMap(t *testing.T) {
	env := newTestEnv(t, 22)
	env.generate(t)
	ctx := context.Background()

	require.NoError(t, env.service.DeleteSeatMap(ctx, env.showtime.ID))

	count, err := env.repo.CountSeats(ctx, env.showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
