package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dbscale/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var received slackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(&config.NotifyConfig{
		SlackWebhookURL: server.URL,
		Username:        "dbscale",
	})

	msg := NewMessage("Database sql-orders-prod scaled up", SeverityInfo)
	msg.Body = "Capacity changed from 8 to 10 vCores."
	msg.AddSection("Resource",
		Field{Name: "Database", Value: "orders"},
		Field{Name: "Server", Value: "sql-orders-prod"},
	)

	require.NoError(t, notifier.Send(context.Background(), msg))

	assert.Equal(t, "dbscale", received.Username)
	assert.Contains(t, received.Text, "*Database sql-orders-prod scaled up*")
	assert.Contains(t, received.Text, "Capacity changed from 8 to 10 vCores.")
	assert.Contains(t, received.Text, "*Resource*")
	assert.Contains(t, received.Text, "• Server: sql-orders-prod")
}

func TestSend_WebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(&config.NotifyConfig{SlackWebhookURL: server.URL})

	err := notifier.Send(context.Background(), NewMessage("title", SeverityInfo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSend_DisabledWithoutURL(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "")
	notifier := NewSlackNotifier(&config.NotifyConfig{})

	// A missing webhook disables delivery but must never fail the run.
	assert.NoError(t, notifier.Send(context.Background(), NewMessage("title", SeverityInfo)))
}

func TestNewSlackNotifier_EnvFallback(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T000/B000/XXX")

	notifier := NewSlackNotifier(&config.NotifyConfig{})
	assert.Equal(t, "https://hooks.slack.com/services/T000/B000/XXX", notifier.webhookURL)

	// Config beats environment.
	notifier = NewSlackNotifier(&config.NotifyConfig{SlackWebhookURL: "https://hooks.slack.com/services/T111/B111/YYY"})
	assert.Equal(t, "https://hooks.slack.com/services/T111/B111/YYY", notifier.webhookURL)
}

func TestRenderText_SeverityPrefixes(t *testing.T) {
	tests := []struct {
		severity Severity
		prefix   string
	}{
		{SeverityInfo, "*title*"},
		{SeverityWarning, ":warning: *title*"},
		{SeverityCritical, ":rotating_light: *title*"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			text := renderText(NewMessage("title", tt.severity))
			assert.Equal(t, tt.prefix, text)
		})
	}
}

func TestAddSection_DropsEmptyValues(t *testing.T) {
	msg := NewMessage("title", SeverityInfo)
	msg.AddSection("Trigger Context",
		Field{Name: "Source", Value: "scheduler"},
		Field{Name: "Alert rule", Value: ""},
		Field{Name: "Job", Value: ""},
	)

	require.Len(t, msg.Sections, 1)
	require.Len(t, msg.Sections[0].Fields, 1)
	assert.Equal(t, "Source", msg.Sections[0].Fields[0].Name)

	// A section whose fields are all empty is dropped entirely.
	msg.AddSection("Empty", Field{Name: "A", Value: ""})
	assert.Len(t, msg.Sections, 1)
}
