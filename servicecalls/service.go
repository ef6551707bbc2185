// Package servicecalls handles table-side requests for a waiter or the bill.
package servicecalls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-restaurant-ops/directory"
	"go-restaurant-ops/logging"
	"go-restaurant-ops/models"
	"go-restaurant-ops/orders"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventServiceRequest is broadcast to the restaurant room on creation.
const EventServiceRequest = "service_request"

var (
	ErrNotFound      = errors.New("service request not found")
	ErrTableNotFound = errors.New("table not found")
	ErrInvalidType   = errors.New("invalid service request type")
	ErrInvalidStatus = errors.New("invalid service request status")
)

type Store interface {
	Insert(ctx context.Context, request models.ServiceRequest) error
	Get(ctx context.Context, id string) (models.ServiceRequest, error)
	ListByRestaurant(ctx context.Context, restaurantID string, status models.ServiceRequestStatus) ([]models.ServiceRequest, error)
	Complete(ctx context.Context, id string, at time.Time) (models.ServiceRequest, error)
}

type Directory interface {
	GetRestaurant(ctx context.Context, restaurantID string) (models.Restaurant, error)
	GetTable(ctx context.Context, tableID string) (models.Table, error)
	ListEmployees(ctx context.Context, restaurantID string) ([]models.User, error)
}

// CreateInput is a request raised from a table. The caller may be anonymous.
type CreateInput struct {
	TableID string                    `json:"table_id" validate:"required"`
	Type    models.ServiceRequestType `json:"type" validate:"required"`
	Note    *string                   `json:"note"`
}

type Service struct {
	store     Store
	directory Directory
	notifier  orders.Notifier
	broadcast orders.Broadcaster
	log       *slog.Logger
	clock     func() time.Time
}

func NewService(store Store, directory Directory, notifier orders.Notifier, broadcast orders.Broadcaster, log *slog.Logger) *Service {
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
	}
}

// Create stores a pending request and alerts the restaurant's owner and
// employees.
func (s *Service) Create(ctx context.Context, actor orders.Actor, input CreateInput) (models.ServiceRequest, error) {
	if !input.Type.Valid() {
		return models.ServiceRequest{}, fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}
	table, err := s.directory.GetTable(ctx, input.TableID)
	if errors.Is(err, directory.ErrNotFound) {
		return models.ServiceRequest{}, ErrTableNotFound
	}
	if err != nil {
		return models.ServiceRequest{}, fmt.Errorf("look up table: %w", err)
	}

	request := models.ServiceRequest{
		ID:            primitive.NewObjectID(),
		Restaurant_id: table.Restaurant_id,
		Table_id:      table.Table_id,
		Table_number:  table.Table_number,
		Type:          input.Type,
		Note:          input.Note,
		Status:        models.ServicePending,
		Created_at:    s.clock().UTC(),
	}
	request.Service_request_id = request.ID.Hex()
	if actor.UserID != "" {
		userID := actor.UserID
		request.User_id = &userID
	}

	if err := s.store.Insert(ctx, request); err != nil {
		return models.ServiceRequest{}, fmt.Errorf("insert service request: %w", err)
	}

	s.alertStaff(ctx, request)
	if s.broadcast != nil {
		s.broadcast.BroadcastToRestaurant(ctx, request.Restaurant_id, EventServiceRequest, map[string]any{
			"id":           request.Service_request_id,
			"table_id":     request.Table_id,
			"table_number": request.Table_number,
			"type":         request.Type,
		})
	}
	return request, nil
}

func (s *Service) alertStaff(ctx context.Context, request models.ServiceRequest) {
	if s.notifier == nil {
		return
	}
	log := logging.FromContext(ctx, s.log)

	var recipients []string
	restaurant, err := s.directory.GetRestaurant(ctx, request.Restaurant_id)
	if err != nil {
		log.Error("failed to load restaurant for service request",
			slog.String("action", "service_request_notify_failed"),
			slog.Any("error", err))
		return
	}
	recipients = append(recipients, restaurant.Owner_id)

	employees, err := s.directory.ListEmployees(ctx, request.Restaurant_id)
	if err != nil {
		log.Error("failed to load employees for service request",
			slog.String("action", "service_request_notify_failed"),
			slog.Any("error", err))
	}
	for _, employee := range employees {
		recipients = append(recipients, employee.User_id)
	}

	title := "New Service Request"
	body := fmt.Sprintf("Table %s: %s", request.Table_number, titleCase(string(request.Type)))
	data := map[string]any{"type": EventServiceRequest, "id": request.Service_request_id}
	for _, userID := range recipients {
		if err := s.notifier.Notify(ctx, userID, title, body, data); err != nil {
			log.Error("failed to notify staff",
				slog.String("action", "notification_failed"),
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
	}
}

// ListByRestaurant returns the restaurant's requests newest first, optionally
// filtered by status.
func (s *Service) ListByRestaurant(ctx context.Context, actor orders.Actor, restaurantID, status string) ([]models.ServiceRequest, error) {
	filter := models.ServiceRequestStatus(status)
	switch filter {
	case "", models.ServicePending, models.ServiceCompleted, models.ServiceCancelled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.authorize(ctx, actor, restaurantID); err != nil {
		return nil, err
	}
	requests, err := s.store.ListByRestaurant(ctx, restaurantID, filter)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.ServiceRequest{}
	}
	return requests, nil
}

// Resolve marks the request completed.
func (s *Service) Resolve(ctx context.Context, actor orders.Actor, id string) (models.ServiceRequest, error) {
	request, err := s.store.Get(ctx, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	if err := s.authorize(ctx, actor, request.Restaurant_id); err != nil {
		return models.ServiceRequest{}, err
	}
	return s.store.Complete(ctx, id, s.clock().UTC())
}

func (s *Service) authorize(ctx context.Context, actor orders.Actor, restaurantID string) error {
	restaurant, err := s.directory.GetRestaurant(ctx, restaurantID)
	if errors.Is(err, directory.ErrNotFound) {
		return orders.ErrRestaurantNotFound
	}
	if err != nil {
		return fmt.Errorf("look up restaurant: %w", err)
	}
	return orders.Authorize(actor, restaurant)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
