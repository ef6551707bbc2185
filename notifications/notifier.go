package notifications

import (
	"context"
	"log/slog"
	"sync"

	"go-restaurant-ops/logging"
)

// Pusher delivers a notification to a device. It reports success and never
// returns an error.
type Pusher interface {
	Deliver(ctx context.Context, token, title, body string, data map[string]any) bool
}

// Notifier records a notification in the ledger and then attempts push
// delivery in the background. Delivery outcome never affects the ledger.
type Notifier struct {
	ledger *Ledger
	pusher Pusher
	log    *slog.Logger
	wg     sync.WaitGroup
}

func NewNotifier(ledger *Ledger, pusher Pusher, log *slog.Logger) *Notifier {
	if log == nil {
		log = logging.Discard()
	}
	return &Notifier{ledger: ledger, pusher: pusher, log: log}
}

// Notify records the notification and schedules push delivery when the user
// has a push token.
func (n *Notifier) Notify(ctx context.Context, userID, title, body string, data map[string]any) error {
	user, err := n.ledger.recipient(ctx, userID)
	if err != nil {
		return err
	}
	notification, err := n.ledger.record(ctx, user, title, body, data)
	if err != nil {
		return err
	}

	if n.pusher == nil || user.Push_token == "" {
		return nil
	}

	pushCtx := context.WithoutCancel(ctx)
	log := logging.FromContext(ctx, n.log)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if !n.pusher.Deliver(pushCtx, user.Push_token, title, body, notification.Data) {
			log.Warn("push delivery failed",
				slog.String("action", "push_failed"),
				slog.String("notification_id", notification.Notification_id),
				slog.String("user_id", user.User_id))
		}
	}()
	return nil
}

// Wait blocks until all scheduled push deliveries have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
