package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// Notifier delivers a plain-text status message to an external channel.
// Delivery is best-effort: callers log failures and move on, a run's
// outcome never depends on it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Slack posts to a Slack incoming webhook.
type Slack struct {
	webhookURL string
}

// NewSlack returns a webhook notifier. An empty URL yields a notifier
// that drops messages, so callers never have to branch on configuration.
func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL}
}

func (s *Slack) Notify(ctx context.Context, text string) error {
	if s.webhookURL == "" {
		slog.Debug("no webhook URL configured, dropping notification", "text", text)
		return nil
	}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}
