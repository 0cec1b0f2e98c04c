package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"dbscale/pkg/config"
	"dbscale/pkg/logger"
)

// SlackNotifier sends notifications to a Slack incoming webhook
type SlackNotifier struct {
	webhookURL string
	username   string
	client     *http.Client
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(cfg *config.NotifyConfig) *SlackNotifier {
	// Priority: config file > environment variable
	webhookURL := cfg.SlackWebhookURL
	if webhookURL == "" {
		webhookURL = os.Getenv("SLACK_WEBHOOK_URL")
		if webhookURL != "" {
			logger.Info("Using Slack webhook URL from environment variable")
		}
	}

	if webhookURL == "" {
		logger.Warn("Slack webhook URL not configured (check config file or SLACK_WEBHOOK_URL env), notifications will be disabled")
	}

	return &SlackNotifier{
		webhookURL: webhookURL,
		username:   cfg.Username,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// slackPayload is the webhook body. Slack only needs text; username is
// optional and overrides the webhook's default sender name.
type slackPayload struct {
	Text     string `json:"text"`
	Username string `json:"username,omitempty"`
}

// Send renders the message to Slack text and posts it to the webhook. A
// missing webhook URL disables delivery without failing the scaling run.
func (s *SlackNotifier) Send(ctx context.Context, msg *Message) error {
	if s.webhookURL == "" {
		logger.WarnCtx(ctx, "Slack webhook URL not configured, skipping notification: %s", msg.Title)
		return nil
	}

	payload, err := json.Marshal(slackPayload{
		Text:     renderText(msg),
		Username: s.username,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack webhook returned status code: %d", resp.StatusCode)
	}

	logger.DebugCtx(ctx, "Slack notification sent: %s", msg.Title)
	return nil
}

// renderText flattens the structured message into the plain-text body Slack
// displays. This is the only place the transport format appears.
func renderText(msg *Message) string {
	var b strings.Builder

	b.WriteString(severityPrefix(msg.Severity))
	b.WriteString("*")
	b.WriteString(msg.Title)
	b.WriteString("*")

	if msg.Body != "" {
		b.WriteString("\n")
		b.WriteString(msg.Body)
	}

	for _, section := range msg.Sections {
		b.WriteString("\n\n*")
		b.WriteString(section.Heading)
		b.WriteString("*")
		for _, f := range section.Fields {
			b.WriteString(fmt.Sprintf("\n• %s: %s", f.Name, f.Value))
		}
	}

	return b.String()
}

func severityPrefix(s Severity) string {
	switch s {
	case SeverityWarning:
		return ":warning: "
	case SeverityCritical:
		return ":rotating_light: "
	default:
		return ""
	}
}
