package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-restaurant-ops/database"
	"go-restaurant-ops/directory"
	"go-restaurant-ops/logging"
	"go-restaurant-ops/models"
	"go-restaurant-ops/pricing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrRestaurantNotFound indicates the order references an unknown restaurant.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrTableNotFound indicates the table is unknown or belongs elsewhere.
	ErrTableNotFound = errors.New("table not found")
)

// Realtime event names.
const (
	EventNewOrder    = "new_order"
	EventOrderUpdate = "order_update"
)

// maxStatusAttempts bounds the re-read loop when a status update races.
const maxStatusAttempts = 3

// Directory resolves the restaurant-side collaborators an order refers to.
type Directory interface {
	pricing.MenuLookup
	GetRestaurant(ctx context.Context, restaurantID string) (models.Restaurant, error)
	GetTable(ctx context.Context, tableID string) (models.Table, error)
}

// Notifier records a durable notification and attempts push delivery.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string, data map[string]any) error
}

// Broadcaster pushes transient events to a restaurant's realtime room.
type Broadcaster interface {
	BroadcastToRestaurant(ctx context.Context, restaurantID, event string, payload any)
}

// CreateOrderInput is a customer's order request.
type CreateOrderInput struct {
	RestaurantID string                `json:"restaurant_id" validate:"required"`
	TableID      string                `json:"table_id" validate:"required"`
	Items        []pricing.LineRequest `json:"items" validate:"required,min=1,dive"`
}

// Service drives the order lifecycle: pricing, persistence, status changes
// and the notifications that follow them.
type Service struct {
	store     Store
	directory Directory
	notifier  Notifier
	broadcast Broadcaster
	log       *slog.Logger
	clock     func() time.Time
	newID     func() primitive.ObjectID
}

// NewService wires the order lifecycle. notifier and broadcast may be nil.
func NewService(store Store, directory Directory, notifier Notifier, broadcast Broadcaster, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{
		store:     store,
		directory: directory,
		notifier:  notifier,
		broadcast: broadcast,
		log:       log,
		clock:     time.Now,
		newID:     primitive.NewObjectID,
	}
}

// CreateOrder prices the request against the live menu and stores the order
// with its items. The actor becomes the order's customer.
func (s *Service) CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (models.Order, error) {
	if actor.UserID == "" {
		return models.Order{}, ErrUnauthenticated
	}

	restaurant, err := s.directory.GetRestaurant(ctx, input.RestaurantID)
	if err != nil {
		return models.Order{}, lookupErr(err, ErrRestaurantNotFound)
	}
	table, err := s.directory.GetTable(ctx, input.TableID)
	if err != nil {
		return models.Order{}, lookupErr(err, ErrTableNotFound)
	}
	if table.Restaurant_id != restaurant.Restaurant_id {
		return models.Order{}, ErrTableNotFound
	}

	quote, err := pricing.Price(ctx, s.directory, restaurant.Restaurant_id, input.Items)
	if err != nil {
		return models.Order{}, err
	}

	now := s.clock().UTC()
	order := models.Order{
		ID:            s.newID(),
		Restaurant_id: restaurant.Restaurant_id,
		Table_id:      table.Table_id,
		User_id:       actor.UserID,
		Status:        models.StatusPending,
		Total_amount:  quote.Total,
		Created_at:    now,
		Updated_at:    now,
	}
	order.Order_id = order.ID.Hex()

	items := make([]models.OrderItem, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		item := models.OrderItem{
			ID:           s.newID(),
			Order_id:     order.Order_id,
			Menu_item_id: line.MenuItemID,
			Name:         line.Name,
			Quantity:     line.Quantity,
			Price:        line.UnitPrice,
			Created_at:   now,
		}
		item.Order_item_id = item.ID.Hex()
		items = append(items, item)
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	order.Items = items

	log := logging.FromContext(ctx, s.log)
	log.Info("order created",
		slog.String("action", "order_created"),
		slog.String("order_id", order.Order_id),
		slog.String("restaurant_id", order.Restaurant_id),
		slog.String("total_amount", order.Total_amount.StringFixed(database.MoneyScale)))

	s.notify(ctx, restaurant.Owner_id, "New Order",
		fmt.Sprintf("Table %s placed an order for $%s", table.Table_number, order.Total_amount.StringFixed(database.MoneyScale)),
		map[string]any{"order_id": order.Order_id, "restaurant_id": order.Restaurant_id, "type": EventNewOrder})
	s.publish(ctx, order.Restaurant_id, EventNewOrder, map[string]any{
		"id":     order.Order_id,
		"status": order.Status,
		"total":  order.Total_amount.StringFixed(database.MoneyScale),
	})
	return order, nil
}

// UpdateStatus moves an order to a new status on behalf of restaurant staff.
// Authorization is checked before transition legality. A concurrent change
// of the same order is re-read and re-validated.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, orderID string, next models.OrderStatus) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	var (
		order models.Order
		err   error
	)
	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		order, err = s.store.GetOrder(ctx, orderID)
		if err != nil {
			return models.Order{}, err
		}
		if attempt == 0 {
			if err := s.authorize(ctx, actor, order.Restaurant_id); err != nil {
				return models.Order{}, err
			}
		}
		if err := Transition(order.Status, next); err != nil {
			return models.Order{}, err
		}

		updated, err := s.store.CompareAndSetStatus(ctx, orderID, order.Status, next)
		if errors.Is(err, ErrStatusConflict) {
			continue
		}
		if err != nil {
			return models.Order{}, err
		}
		updated.Items = order.Items
		s.afterStatusChange(ctx, order.Status, updated)
		return updated, nil
	}
	return models.Order{}, ErrStatusConflict
}

func (s *Service) afterStatusChange(ctx context.Context, from models.OrderStatus, order models.Order) {
	log := logging.FromContext(ctx, s.log)
	log.Info("order status changed",
		slog.String("action", "order_status_changed"),
		slog.String("order_id", order.Order_id),
		slog.String("from", string(from)),
		slog.String("to", string(order.Status)))

	s.notify(ctx, order.User_id, "Order Update",
		fmt.Sprintf("Your order is now %s", order.Status),
		map[string]any{"order_id": order.Order_id, "status": string(order.Status), "type": EventOrderUpdate})
	s.publish(ctx, order.Restaurant_id, EventOrderUpdate, map[string]any{
		"id":     order.Order_id,
		"status": order.Status,
	})
}

// GetOrder returns an order visible to the actor: its customer or the
// restaurant's staff.
func (s *Service) GetOrder(ctx context.Context, actor Actor, orderID string) (models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if actor.UserID != "" && order.User_id == actor.UserID {
		return order, nil
	}
	if err := s.authorize(ctx, actor, order.Restaurant_id); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListByCustomer returns the actor's own orders, newest first.
func (s *Service) ListByCustomer(ctx context.Context, actor Actor) ([]models.Order, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListByCustomer(ctx, actor.UserID)
}

// ListByRestaurant returns a restaurant's orders for its staff, newest first.
func (s *Service) ListByRestaurant(ctx context.Context, actor Actor, restaurantID string) ([]models.Order, error) {
	if err := s.authorize(ctx, actor, restaurantID); err != nil {
		return nil, err
	}
	return s.store.ListByRestaurant(ctx, restaurantID)
}

func (s *Service) authorize(ctx context.Context, actor Actor, restaurantID string) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	restaurant, err := s.directory.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return lookupErr(err, ErrRestaurantNotFound)
	}
	return Authorize(actor, restaurant)
}

func (s *Service) notify(ctx context.Context, userID, title, body string, data map[string]any) {
	if s.notifier == nil || userID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, body, data); err != nil {
		logging.FromContext(ctx, s.log).Error("failed to record notification",
			slog.String("action", "notification_failed"),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}

func (s *Service) publish(ctx context.Context, restaurantID, event string, payload map[string]any) {
	if s.broadcast == nil {
		return
	}
	s.broadcast.BroadcastToRestaurant(ctx, restaurantID, event, payload)
}

func lookupErr(err, notFound error) error {
	if errors.Is(err, directory.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("look up %v: %w", notFound, err)
}
