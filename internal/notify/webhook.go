package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartdesk/internal/config"
	"smartdesk/internal/domain"
)

const defaultWebhookTimeout = 5 * time.Second

// WebhookNotifier delivers fired reminders to configured HTTP targets. A
// failing target is logged and skipped; delivery is best effort.
type WebhookNotifier struct {
	webhooks []config.WebhookConfig
	client   *http.Client
}

func NewWebhookNotifier(webhooks []config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		webhooks: webhooks,
		client:   &http.Client{Timeout: defaultWebhookTimeout},
	}
}

type reminderPayload struct {
	DeliveryID       string      `json:"delivery_id"`
	Task             domain.Task `json:"task"`
	RemainingSeconds int64       `json:"remaining_seconds"`
	FiredAt          string      `json:"fired_at"`
}

func (n *WebhookNotifier) OnReminder(task domain.Task, remaining time.Duration) {
	if len(n.webhooks) == 0 {
		return
	}
	payload := reminderPayload{
		DeliveryID:       uuid.NewString(),
		Task:             task,
		RemainingSeconds: int64(remaining.Seconds()),
		FiredAt:          time.Now().Format(domain.TimeLayout),
	}
	for _, hook := range n.webhooks {
		if hook.Enabled != nil && !*hook.Enabled {
			continue
		}
		if strings.TrimSpace(hook.URL) == "" {
			continue
		}
		if err := n.post(hook, payload); err != nil {
			log.Printf("notify: deliver reminder to %s failed: %v", hook.URL, err)
		}
	}
}

func (n *WebhookNotifier) post(hook config.WebhookConfig, payload reminderPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	timeout := defaultWebhookTimeout
	if hook.TimeoutSeconds > 0 {
		timeout = time.Duration(hook.TimeoutSeconds) * time.Second
	}
	client := n.client
	if timeout != n.client.Timeout {
		client = &http.Client{Timeout: timeout}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-SmartDesk-Event", "task.reminder")
	req.Header.Set("X-SmartDesk-Delivery", payload.DeliveryID)
	if strings.TrimSpace(hook.Secret) != "" {
		req.Header.Set("X-SmartDesk-Secret", hook.Secret)
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
