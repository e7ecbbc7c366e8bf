package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"weatherbot.app/errors"
)

// WebhookNotifier delivers reports by POSTing them to an external sender
// relay (the chat platform integration runs as its own process).
type WebhookNotifier struct {
	endpoint string
	client   *http.Client
}

// NewWebhookNotifier creates a notifier targeting the given relay endpoint.
func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type notifyPayload struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// Notify sends one report. Delivery failures surface as notification errors
// so the dispatch loop can count and skip them.
func (n *WebhookNotifier) Notify(ctx context.Context, userID, text string) error {
	body, err := json.Marshal(notifyPayload{UserID: userID, Text: text})
	if err != nil {
		return errors.NewNotificationError("marshal notification payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.NewNotificationError("build notification request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.NewNotificationError("send notification", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewNotificationError(
			fmt.Sprintf("sender relay returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// LogNotifier is the fallback sender used when no relay is configured: it
// writes reports to the log instead of delivering them.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, userID, text string) error {
	slog.Info("dispatch report (no sender relay configured)", "user_id", userID, "text", text)
	return nil
}
