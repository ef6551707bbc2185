// Package notifications keeps the durable per-user notification ledger and
// drives best-effort push delivery for new entries.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-restaurant-ops/directory"
	"go-restaurant-ops/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound indicates the notification does not exist for the user.
	ErrNotFound = errors.New("notification not found")
	// ErrUserNotFound indicates the recipient does not exist.
	ErrUserNotFound = errors.New("recipient user not found")
	// ErrUserIDRequired indicates a recipient was not supplied.
	ErrUserIDRequired = errors.New("recipient user id is required")
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

// Store is the persistence boundary of the ledger. Mutating lookups are
// scoped to the recipient: an ID owned by another user is ErrNotFound.
type Store interface {
	Insert(ctx context.Context, notification models.Notification) error
	List(ctx context.Context, userID string, offset, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, notificationID, userID string) error
	DeleteForUser(ctx context.Context, userID string) (int64, error)
}

// UserLookup resolves recipients.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
}

// Ledger records notifications independently of whether they are delivered.
type Ledger struct {
	store Store
	users UserLookup
	clock func() time.Time
	newID func() primitive.ObjectID
}

func NewLedger(store Store, users UserLookup, clock func() time.Time) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{
		store: store,
		users: users,
		clock: clock,
		newID: primitive.NewObjectID,
	}
}

// Record persists a notification for an existing user.
func (l *Ledger) Record(ctx context.Context, userID, title, body string, data map[string]any) (models.Notification, error) {
	user, err := l.recipient(ctx, userID)
	if err != nil {
		return models.Notification{}, err
	}
	return l.record(ctx, user, title, body, data)
}

func (l *Ledger) recipient(ctx context.Context, userID string) (models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.User{}, ErrUserIDRequired
	}
	user, err := l.users.GetUser(ctx, userID)
	if errors.Is(err, directory.ErrNotFound) {
		return models.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("look up recipient: %w", err)
	}
	return user, nil
}

func (l *Ledger) record(ctx context.Context, user models.User, title, body string, data map[string]any) (models.Notification, error) {
	if data == nil {
		data = map[string]any{}
	}
	n := models.Notification{
		ID:         l.newID(),
		User_id:    user.User_id,
		Title:      title,
		Body:       body,
		Data:       data,
		Read:       false,
		Created_at: l.clock().UTC(),
	}
	n.Notification_id = n.ID.Hex()
	if err := l.store.Insert(ctx, n); err != nil {
		return models.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// List returns the user's notifications newest first. A limit outside
// 1..100 becomes 100 and a negative offset becomes 0.
func (l *Ledger) List(ctx context.Context, userID string, offset, limit int) ([]models.Notification, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	notifications, err := l.store.List(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (l *Ledger) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return l.store.CountUnread(ctx, userID)
}

// MarkRead flags one of the user's notifications as read. Marking an already
// read notification succeeds.
func (l *Ledger) MarkRead(ctx context.Context, notificationID, userID string) error {
	return l.store.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead flags every unread notification of the user and returns how
// many changed.
func (l *Ledger) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return l.store.MarkAllRead(ctx, userID)
}

func (l *Ledger) Delete(ctx context.Context, notificationID, userID string) error {
	return l.store.Delete(ctx, notificationID, userID)
}

// DeleteForUser removes every notification owned by userID.
func (l *Ledger) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrUserIDRequired
	}
	return l.store.DeleteForUser(ctx, userID)
}
