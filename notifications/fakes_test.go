package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-restaurant-ops/directory"
	"go-restaurant-ops/models"
)

type fakeStore struct {
	mu            sync.Mutex
	notifications map[string]models.Notification
	insertErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{notifications: map[string]models.Notification{}}
}

func (s *fakeStore) Insert(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.notifications[n.Notification_id] = n
	return nil
}

func (s *fakeStore) List(_ context.Context, userID string, offset, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.User_id == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created_at.After(out[j].Created_at) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.User_id == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) MarkRead(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.User_id != userID {
		return ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *fakeStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for id, n := range s.notifications {
		if n.User_id == userID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (s *fakeStore) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.User_id != userID {
		return ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}
func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

type fakeUsers map[string]models.User

func (u fakeUsers) GetUser(_ context.Context, userID string) (models.User, error) {
	user, ok := u[userID]
	if !ok {
		return models.User{}, directory.ErrNotFound
	}
	return user, nil
}

// steppingClock returns increasing instants so insertion order is observable.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

type fakePusher struct {
	mu      sync.Mutex
	ok      bool
	tokens  []string
	release chan struct{}
}

func (p *fakePusher) Deliver(_ context.Context, token, _, _ string, _ map[string]any) bool {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	return p.ok
}

func (p *fakePusher) delivered() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tokens...)
}

func (s *fakeStore) DeleteForUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, n := range s.notifications {
		if n.User_id == userID {
			delete(s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
