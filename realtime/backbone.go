package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go-restaurant-ops/logging"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialAttempts   = 5
	reconnectDelay = 5 * time.Second
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// envelope is what travels over the exchange: the target room and the
// already encoded client message.
type envelope struct {
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

// session is one live broker connection with its publish channel and the
// delivery stream of this instance's queue.
type session struct {
	conn       io.Closer
	pub        publisher
	deliveries <-chan amqp.Delivery
}

// Backbone relays broadcasts between service instances through a RabbitMQ
// fanout exchange. Every instance consumes from its own exclusive queue and
// delivers to its local hub. A lost connection is dialed again until Close.
type Backbone struct {
	hub      *Hub
	exchange string
	log      *slog.Logger
	dial     func(ctx context.Context) (session, error)

	ctx       context.Context
	cancel    context.CancelFunc
	pubMu     sync.Mutex
	conn      io.Closer
	pub       publisher
	closeOnce sync.Once
	done      chan struct{}
}

// DialBackbone connects to RabbitMQ, declares the fanout exchange and starts
// consuming into hub.
func DialBackbone(ctx context.Context, url, exchange string, hub *Hub, log *slog.Logger) (*Backbone, error) {
	if log == nil {
		log = logging.Discard()
	}
	b := newBackbone(hub, exchange, nil, log)
	b.dial = func(ctx context.Context) (session, error) {
		return dialSession(ctx, url, exchange, log)
	}
	sess, err := b.dial(ctx)
	if err != nil {
		b.cancel()
		return nil, err
	}
	b.start(sess)
	return b, nil
}

func dialSession(ctx context.Context, url, exchange string, log *slog.Logger) (session, error) {
	conn, err := backoff.Retry(ctx, func() (*amqp.Connection, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("failed to connect to rabbitmq, retrying",
				slog.String("action", "rabbitmq_connection_failed"),
				slog.Any("error", err))
		}
		return conn, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(dialAttempts))
	if err != nil {
		return session{}, fmt.Errorf("dial rabbitmq: %w", err)
	}

	pubCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return session{}, fmt.Errorf("open publish channel: %w", err)
	}
	if err := pubCh.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		conn.Close()
		return session{}, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	subCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return session{}, fmt.Errorf("open consume channel: %w", err)
	}
	q, err := subCh.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		conn.Close()
		return session{}, fmt.Errorf("declare queue: %w", err)
	}
	if err := subCh.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		conn.Close()
		return session{}, fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := subCh.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		conn.Close()
		return session{}, fmt.Errorf("consume: %w", err)
	}

	log.Info("realtime backbone connected",
		slog.String("action", "rabbitmq_connected"),
		slog.String("exchange", exchange),
		slog.String("queue", q.Name))
	return session{conn: conn, pub: pubCh, deliveries: deliveries}, nil
}

func newBackbone(hub *Hub, exchange string, pub publisher, log *slog.Logger) *Backbone {
	ctx, cancel := context.WithCancel(context.Background())
	return &Backbone{
		hub:      hub,
		exchange: exchange,
		pub:      pub,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// start swaps in sess and consumes its deliveries in the background.
func (b *Backbone) start(sess session) {
	b.pubMu.Lock()
	b.conn = sess.conn
	b.pub = sess.pub
	b.pubMu.Unlock()
	go b.consume(sess.deliveries)
}

// BroadcastToRestaurant publishes the event to every instance. When publishing
// fails the event is still delivered to this instance's clients.
func (b *Backbone) BroadcastToRestaurant(ctx context.Context, restaurantID, event string, payload any) {
	log := logging.FromContext(ctx, b.log)
	room := RoomName(restaurantID)

	msg, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		log.Error("failed to encode realtime event", slog.String("action", "ws_encode_failed"), slog.Any("error", err))
		return
	}
	body, err := json.Marshal(envelope{Room: room, Message: msg})
	if err != nil {
		log.Error("failed to encode backbone envelope", slog.String("action", "ws_encode_failed"), slog.Any("error", err))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	b.pubMu.Lock()
	err = b.pub.PublishWithContext(pubCtx, b.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now().UTC(),
		Type:         event,
		Body:         body,
	})
	b.pubMu.Unlock()
	if err != nil {
		log.Error("failed to publish realtime event, delivering locally",
			slog.String("action", "rabbitmq_publish_failed"),
			slog.String("event", event),
			slog.String("room", room),
			slog.Any("error", err))
		b.hub.Deliver(room, msg)
	}
}

func (b *Backbone) consume(deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-b.done:
			return
		case d, ok := <-deliveries:
			if !ok {
				b.log.Warn("realtime backbone consumer stopped, reconnecting", slog.String("action", "rabbitmq_consumer_closed"))
				b.reconnect()
				return
			}
			if err := b.dispatch(d.Body); err != nil {
				b.log.Warn("dropping malformed backbone message",
					slog.String("action", "rabbitmq_message_invalid"),
					slog.Any("error", err))
			}
		}
	}
}

// reconnect dials until a new session is up or the backbone is closed.
func (b *Backbone) reconnect() {
	if b.dial == nil {
		return
	}
	for {
		sess, err := b.dial(b.ctx)
		if err == nil {
			select {
			case <-b.done:
				sess.conn.Close()
				return
			default:
			}
			b.start(sess)
			b.log.Info("realtime backbone reconnected", slog.String("action", "rabbitmq_reconnected"))
			return
		}
		b.log.Error("failed to reconnect realtime backbone",
			slog.String("action", "rabbitmq_reconnect_failed"),
			slog.Any("error", err))
		select {
		case <-b.done:
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (b *Backbone) dispatch(body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.Room == "" || len(env.Message) == 0 {
		return errors.New("envelope without room or message")
	}
	b.hub.Deliver(env.Room, env.Message)
	return nil
}

// Close stops consuming and closes the connection.
func (b *Backbone) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		b.cancel()
		b.pubMu.Lock()
		defer b.pubMu.Unlock()
		if b.conn != nil {
			err = b.conn.Close()
		}
	})
	return err
}
