package orders

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go-restaurant-ops/directory"
	"go-restaurant-ops/models"
	"go-restaurant-ops/pricing"
)

type fakeStore struct {
	mu        sync.Mutex
	orders    map[string]models.Order
	items     map[string][]models.OrderItem
	createErr error
	casCalls  int

	// gate holds the first gateSize GetOrder calls until all of them arrived.
	gateSize  int
	gateCount int
	gate      chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: map[string]models.Order{},
		items:  map[string][]models.OrderItem{},
	}
}

func (s *fakeStore) holdReads(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateSize = n
	s.gateCount = 0
	s.gate = make(chan struct{})
}

func (s *fakeStore) CreateOrder(_ context.Context, order models.Order, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.orders[order.Order_id] = order
	s.items[order.Order_id] = append([]models.OrderItem(nil), items...)
	return nil
}

func (s *fakeStore) GetOrder(_ context.Context, orderID string) (models.Order, error) {
	s.mu.Lock()
	order, ok := s.orders[orderID]
	items := s.items[orderID]
	var wait chan struct{}
	if s.gate != nil && s.gateCount < s.gateSize {
		s.gateCount++
		wait = s.gate
		if s.gateCount == s.gateSize {
			close(s.gate)
		}
	}
	s.mu.Unlock()

	if wait != nil {
		<-wait
	}
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	order.Items = items
	return order, nil
}

func (s *fakeStore) CompareAndSetStatus(_ context.Context, orderID string, from, to models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.casCalls++
	order, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	if order.Status != from {
		return models.Order{}, ErrStatusConflict
	}
	order.Status = to
	s.orders[orderID] = order
	return order, nil
}

func (s *fakeStore) ListByCustomer(_ context.Context, userID string) ([]models.Order, error) {
	return s.list(func(o models.Order) bool { return o.User_id == userID }), nil
}

func (s *fakeStore) ListByRestaurant(_ context.Context, restaurantID string) ([]models.Order, error) {
	return s.list(func(o models.Order) bool { return o.Restaurant_id == restaurantID }), nil
}

func (s *fakeStore) list(match func(models.Order) bool) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for id, order := range s.orders {
		if match(order) {
			order.Items = s.items[id]
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created_at.After(out[j].Created_at) })
	return out
}

func (s *fakeStore) status(orderID string) models.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[orderID].Status
}

type fakeDirectory struct {
	restaurants map[string]models.Restaurant
	tables      map[string]models.Table
	menu        map[string]models.MenuItem
}

func (d *fakeDirectory) GetMenuItem(_ context.Context, id string) (models.MenuItem, error) {
	item, ok := d.menu[id]
	if !ok {
		return models.MenuItem{}, pricing.ErrItemNotFound
	}
	return item, nil
}

func (d *fakeDirectory) GetRestaurant(_ context.Context, id string) (models.Restaurant, error) {
	restaurant, ok := d.restaurants[id]
	if !ok {
		return models.Restaurant{}, directory.ErrNotFound
	}
	return restaurant, nil
}

func (d *fakeDirectory) GetTable(_ context.Context, id string) (models.Table, error) {
	table, ok := d.tables[id]
	if !ok {
		return models.Table{}, directory.ErrNotFound
	}
	return table, nil
}

type notification struct {
	userID string
	title  string
	data   map[string]any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, userID, title, _ string, data map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{userID: userID, title: title, data: data})
	return nil
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type broadcast struct {
	restaurantID string
	event        string
	payload      map[string]any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcast
}

func (b *recordingBroadcaster) BroadcastToRestaurant(_ context.Context, restaurantID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, _ := payload.(map[string]any)
	b.events = append(b.events, broadcast{restaurantID: restaurantID, event: event, payload: p})
}

func (b *recordingBroadcaster) all() []broadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcast(nil), b.events...)
}

var errBoom = errors.New("boom")
