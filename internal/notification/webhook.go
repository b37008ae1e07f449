package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/piggybank/ledger-engine/internal/logger"
)

// WebhookNotifier posts outcomes as JSON to the UI backend. Delivery
// failures are logged and dropped; the ledger result already committed
// and must not depend on the subscriber being reachable.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, outcome Outcome) {
	if err := n.send(ctx, outcome); err != nil {
		logger.Error("webhook notifier delivery failed", err, logger.Fields{
			"url":       n.url,
			"operation": outcome.Operation,
		})
	}
}

func (n *WebhookNotifier) send(ctx context.Context, outcome Outcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("subscriber returned status %d", resp.StatusCode)
}
