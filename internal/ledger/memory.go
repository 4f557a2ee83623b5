package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"stadion-bot/internal/models"
	"stadion-bot/internal/timeslot"
)

// MemoryStore keeps the ledger in process memory. It serializes every
// check-then-insert behind a single mutex, which gives the same
// admission guarantee the Postgres unique constraint does. Used by
// tests and as a fallback when no database is configured.
type MemoryStore struct {
	mu       sync.Mutex
	nextUser int64
	nextBook int64
	users    map[int64]*models.User
	byTgID   map[int64]int64
	bookings map[int64]*models.Booking
	taken    map[tripleKey]int64
}

type tripleKey struct {
	date  string
	field string
	slot  string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]*models.User),
		byTgID:   make(map[int64]int64),
		bookings: make(map[int64]*models.Booking),
		taken:    make(map[tripleKey]int64),
	}
}

func keyFor(date time.Time, field, slot string) tripleKey {
	return tripleKey{date: timeslot.Midnight(date).Format("2006-01-02"), field: field, slot: slot}
}

func (s *MemoryStore) RegisterUser(_ context.Context, telegramID int64, name, surname, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byTgID[telegramID]; ok {
		return nil, ErrDuplicateUser
	}

	s.nextUser++
	user := &models.User{
		ID:         s.nextUser,
		TelegramID: telegramID,
		Name:       name,
		Surname:    surname,
		Phone:      phone,
		CreatedAt:  time.Now(),
	}
	s.users[user.ID] = user
	s.byTgID[telegramID] = user.ID
	return cloneUser(user), nil
}

func (s *MemoryStore) UserByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byTgID[telegramID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *MemoryStore) UserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *MemoryStore) CreateBooking(_ context.Context, userID int64, date time.Time, field, slot string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyFor(date, field, slot)
	if _, ok := s.taken[key]; ok {
		return 0, ErrSlotTaken
	}

	s.nextBook++
	b := &models.Booking{
		ID:        s.nextBook,
		UserID:    userID,
		Date:      timeslot.Midnight(date),
		Field:     field,
		Slot:      slot,
		CreatedAt: time.Now(),
	}
	s.bookings[b.ID] = b
	s.taken[key] = b.ID
	return b.ID, nil
}

func (s *MemoryStore) CancelBooking(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return false, nil
	}
	delete(s.bookings, id)
	delete(s.taken, keyFor(b.Date, b.Field, b.Slot))
	return true, nil
}

func (s *MemoryStore) BookingByID(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *MemoryStore) UserBookings(_ context.Context, userID int64) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (s *MemoryStore) AllBookings(_ context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (s *MemoryStore) BookedSlots(_ context.Context, date time.Time, field string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []string
	for _, b := range s.bookings {
		if b.Field == field && timeslot.SameDay(b.Date, date) {
			slots = append(slots, b.Slot)
		}
	}
	sort.Strings(slots)
	return slots, nil
}

func (s *MemoryStore) BookingsOn(_ context.Context, date time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if timeslot.SameDay(b.Date, date) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *MemoryStore) BookingsBetween(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if !timeslot.DayBefore(b.Date, from) && timeslot.DayBefore(b.Date, to) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (s *MemoryStore) FieldCountsOn(ctx context.Context, date time.Time) ([]models.FieldCount, error) {
	bookings, err := s.BookingsOn(ctx, date)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.Field]++
	}

	fields := make([]string, 0, len(counts))
	for f := range counts {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]models.FieldCount, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.FieldCount{Field: f, Count: counts[f]})
	}
	return out, nil
}

func (s *MemoryStore) CountFrom(_ context.Context, from time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, b := range s.bookings {
		if !timeslot.DayBefore(b.Date, from) {
			count++
		}
	}
	return count, nil
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	return &clone
}
