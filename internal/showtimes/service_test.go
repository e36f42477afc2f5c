package showtimes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	showtimes map[uuid.UUID]*Showtime
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{showtimes: make(map[uuid.UUID]*Showtime)}
}

func (f *fakeRepository) Create(ctx context.Context, showtime *Showtime) error {
	copied := *showtime
	f.showtimes[showtime.ID] = &copied
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	showtime, ok := f.showtimes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *showtime
	return &copied, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.showtimes, id)
	return nil
}

func (f *fakeRepository) AdjustAvailableSeats(ctx context.Context, id uuid.UUID, delta int) error {
	showtime, ok := f.showtimes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	newAvailable := showtime.AvailableSeats + delta
	if newAvailable < 0 {
		return ErrNoCapacity
	}
	if newAvailable > showtime.RoomCapacity {
		return ErrCapacityExceeded
	}
	showtime.AvailableSeats = newAvailable
	return nil
}

func TestServiceCreate(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	showtime := &Showtime{
		ID:           uuid.New(),
		MovieTitle:   "Last Train Home",
		RoomName:     "Sala 3",
		RoomCapacity: 22,
		TicketPrice:  8.0,
		ScheduledAt:  time.Now().UTC().Add(24 * time.Hour),
	}
	require.NoError(t, svc.Create(context.Background(), showtime))

	// Available seats default to the room capacity
	stored, err := svc.GetByID(context.Background(), showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, 22, stored.AvailableSeats)
}

func TestServiceGetByID_NotFound(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestServiceAdjustAvailableSeats(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	showtime := &Showtime{ID: uuid.New(), RoomCapacity: 2}
	require.NoError(t, svc.Create(context.Background(), showtime))

	require.NoError(t, svc.AdjustAvailableSeats(context.Background(), showtime.ID, -1))
	require.NoError(t, svc.AdjustAvailableSeats(context.Background(), showtime.ID, -1))

	err := svc.AdjustAvailableSeats(context.Background(), showtime.ID, -1)
	assert.ErrorIs(t, err, ErrNoCapacity)

	require.NoError(t, svc.AdjustAvailableSeats(context.Background(), showtime.ID, 2))
	err = svc.AdjustAvailableSeats(context.Background(), showtime.ID, 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	err = svc.AdjustAvailableSeats(context.Background(), uuid.New(), -1)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

type fakeSeatMapDeleter struct {
	deleted []uuid.UUID
}

func (f *fakeSeatMapDeleter) DeleteSeatMap(ctx context.Context, showtimeID uuid.UUID) error {
	f.deleted = append(f.deleted, showtimeID)
	return nil
}

func TestServiceDelete_CascadesToSeatMap(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	deleter := &fakeSeatMapDeleter{}
	svc.SetSeatMapDeleter(deleter)

	showtime := &Showtime{ID: uuid.New(), RoomCapacity: 22}
	require.NoError(t, svc.Create(context.Background(), showtime))

	require.NoError(t, svc.Delete(context.Background(), showtime.ID))

	assert.Equal(t, []uuid.UUID{showtime.ID}, deleter.deleted)
	_, err := svc.GetByID(context.Background(), showtime.ID)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestSeatingAdapter(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	adapter := NewSeatingAdapter(svc)

	showtime := &Showtime{
		ID:           uuid.New(),
		RoomCapacity: 84,
		TicketPrice:  10.0,
		ScheduledAt:  time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, svc.Create(context.Background(), showtime))

	info, err := adapter.GetShowtimeInfo(context.Background(), showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, 84, info.RoomCapacity)
	assert.Equal(t, 10.0, info.TicketPrice)
	assert.Equal(t, 84, info.AvailableSeats)

	require.NoError(t, adapter.DecrementAvailableSeats(context.Background(), showtime.ID))
	info, err = adapter.GetShowtimeInfo(context.Background(), showtime.ID)
	require.NoError(t, err)
	assert.Equal(t, 83, info.AvailableSeats)
}

func TestShowtimeHelpers(t *testing.T) {
	scheduled := time.Now().UTC()
	showtime := Showtime{ScheduledAt: scheduled, AvailableSeats: 1}

	assert.False(t, showtime.HasStarted(scheduled.Add(-time.Minute)))
	assert.True(t, showtime.HasStarted(scheduled.Add(time.Minute)))
	assert.False(t, showtime.SoldOut())

	showtime.AvailableSeats = 0
	assert.True(t, showtime.SoldOut())
}
