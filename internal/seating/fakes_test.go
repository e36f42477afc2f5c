package seating

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeRepository is an in-memory Repository with a per-seat mutex, so
// UpdateSeatWithLock serializes the way the database row lock does.
type fakeRepository struct {
	mu    sync.RWMutex
	seats map[uuid.UUID]*Seat
	locks map[uuid.UUID]*sync.Mutex
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		seats: make(map[uuid.UUID]*Seat),
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (f *fakeRepository) CreateSeats(ctx context.Context, seats []Seat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range seats {
		seat := seats[i]
		f.seats[seat.ID] = &seat
		f.locks[seat.ID] = &sync.Mutex{}
	}
	return nil
}

func (f *fakeRepository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	seat, ok := f.seats[id]
	if !ok {
		return nil, ErrSeatNotFound
	}
	copied := *seat
	return &copied, nil
}

func (f *fakeRepository) GetSeatsByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error) {
	return f.filter(func(s *Seat) bool { return s.ShowtimeID == showtimeID }), nil
}

func (f *fakeRepository) GetSeatsByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) ([]Seat, error) {
	return f.filter(func(s *Seat) bool { return s.ShowtimeID == showtimeID && s.State == state }), nil
}

func (f *fakeRepository) GetSeatsByType(ctx context.Context, showtimeID uuid.UUID, seatType SeatType) ([]Seat, error) {
	return f.filter(func(s *Seat) bool { return s.ShowtimeID == showtimeID && s.Type == seatType }), nil
}

func (f *fakeRepository) SeatExists(ctx context.Context, showtimeID uuid.UUID, rowLabel string, seatNumber int) (bool, error) {
	seats := f.filter(func(s *Seat) bool {
		return s.ShowtimeID == showtimeID && s.RowLabel == rowLabel && s.SeatNumber == seatNumber
	})
	return len(seats) > 0, nil
}

func (f *fakeRepository) CountSeats(ctx context.Context, showtimeID uuid.UUID) (int64, error) {
	seats := f.filter(func(s *Seat) bool { return s.ShowtimeID == showtimeID })
	return int64(len(seats)), nil
}

func (f *fakeRepository) CountByState(ctx context.Context, showtimeID uuid.UUID, state SeatState) (int64, error) {
	seats, _ := f.GetSeatsByState(ctx, showtimeID, state)
	return int64(len(seats)), nil
}

func (f *fakeRepository) UpdateSeatWithLock(ctx context.Context, id uuid.UUID, fn func(seat *Seat) error) (*Seat, error) {
	f.mu.RLock()
	lock, ok := f.locks[id]
	f.mu.RUnlock()
	if !ok {
		return nil, ErrSeatNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	f.mu.RLock()
	stored := f.seats[id]
	working := *stored
	f.mu.RUnlock()

	if err := fn(&working); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.seats[id] = &working
	f.mu.Unlock()

	copied := working
	return &copied, nil
}

func (f *fakeRepository) ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var released int64
	for _, seat := range f.seats {
		if seat.State == StateReserved && seat.HoldExpiresAt != nil && !seat.HoldExpiresAt.After(cutoff) {
			seat.ReleaseHold()
			released++
		}
	}
	return released, nil
}

func (f *fakeRepository) DeleteByShowtimeID(ctx context.Context, showtimeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, seat := range f.seats {
		if seat.ShowtimeID == showtimeID {
			delete(f.seats, id)
			delete(f.locks, id)
		}
	}
	return nil
}

func (f *fakeRepository) filter(keep func(*Seat) bool) []Seat {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []Seat
	for _, seat := range f.seats {
		if keep(seat) {
			out = append(out, *seat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RowLabel != out[j].RowLabel {
			return out[i].RowLabel < out[j].RowLabel
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out
}

// fakeShowtimeProvider serves a fixed set of showtimes and records
// capacity decrements.
type fakeShowtimeProvider struct {
	mu         sync.Mutex
	showtimes  map[uuid.UUID]*ShowtimeInfo
	decrements int
}

func newFakeShowtimeProvider() *fakeShowtimeProvider {
	return &fakeShowtimeProvider{showtimes: make(map[uuid.UUID]*ShowtimeInfo)}
}

func (f *fakeShowtimeProvider) add(info ShowtimeInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showtimes[info.ID] = &info
}

func (f *fakeShowtimeProvider) GetShowtimeInfo(ctx context.Context, id uuid.UUID) (*ShowtimeInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.showtimes[id]
	if !ok {
		return nil, ErrShowtimeNotFound
	}
	copied := *info
	return &copied, nil
}

func (f *fakeShowtimeProvider) DecrementAvailableSeats(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info, ok := f.showtimes[id]; ok {
		info.AvailableSeats--
	}
	f.decrements++
	return nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	events []SeatEvent
}

func (f *fakePublisher) PublishSeatEvent(event *SeatEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}
