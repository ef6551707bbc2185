// Package push delivers device notifications through the Expo push service.
package push

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go-restaurant-ops/logging"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

const DefaultTimeout = 5 * time.Second

// ExpoClient sends single push messages. Every failure is logged and reported
// as false.
type ExpoClient struct {
	client *expo.PushClient
	log    *slog.Logger
}

// NewExpoClient builds a client for the Expo service at host, or the public
// Expo host when host is empty.
func NewExpoClient(host string, timeout time.Duration, log *slog.Logger) *ExpoClient {
	if host == "" {
		host = expo.DefaultHost
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Discard()
	}
	return &ExpoClient{
		client: expo.NewPushClient(&expo.ClientConfig{
			Host:       host,
			APIURL:     expo.DefaultBaseAPIURL,
			HTTPClient: &http.Client{Timeout: timeout},
		}),
		log: log,
	}
}

// ValidToken reports whether token looks like an Expo push token.
func ValidToken(token string) bool {
	_, err := parseToken(token)
	return err == nil
}

func parseToken(token string) (expo.ExponentPushToken, error) {
	parsed, err := expo.NewExponentPushToken(token)
	if err != nil {
		return "", err
	}
	open := strings.IndexByte(token, '[')
	if !strings.HasSuffix(token, "]") || len(token)-open <= 2 {
		return "", fmt.Errorf("malformed push token")
	}
	return parsed, nil
}

// Deliver sends one push message and reports whether Expo accepted it.
func (c *ExpoClient) Deliver(ctx context.Context, token, title, body string, data map[string]any) bool {
	log := logging.FromContext(ctx, c.log).With(slog.String("token", truncate(token, 20)))

	to, err := parseToken(token)
	if err != nil {
		log.Warn("invalid push token", slog.String("action", "push_invalid_token"))
		return false
	}

	resp, err := c.client.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{to},
		Title:    title,
		Body:     body,
		Data:     stringData(data),
		Sound:    "default",
		Priority: expo.DefaultPriority,
	})
	if err == nil {
		err = resp.ValidateResponse()
	}
	if err != nil {
		log.Error("failed to send push notification",
			slog.String("action", "push_failed"),
			slog.Any("error", err))
		return false
	}
	log.Info("push notification sent", slog.String("action", "push_sent"), slog.String("ticket_id", resp.ID))
	return true
}

// stringData flattens notification data into the string map Expo carries.
func stringData(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
