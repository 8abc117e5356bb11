package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"
)

// WebhookNotifier шлет пуш-уведомления внешнему транспорту одним POST.
// Доставка best-effort: ошибка логируется вызывающей стороной и не
// прерывает пайплайн.
type WebhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     ports.LoggerPort
}

func NewWebhookNotifier(webhookURL string, logger ports.LoggerPort) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

type deliverRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (n *WebhookNotifier) Deliver(ctx context.Context, userID uuid.UUID, title, message string) error {
	if n.webhookURL == "" {
		n.logger.Debug("Notifier webhook URL is empty, skipping delivery", nil)
		return nil
	}

	body, err := json.Marshal(deliverRequest{
		UserID:  userID.String(),
		Title:   title,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("marshal delivery payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification transport returned status %d", resp.StatusCode)
	}
	return nil
}
