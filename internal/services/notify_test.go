package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/models"
	"timeclock/internal/timeclock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordMessage(t *testing.T) {
	clock := timeclock.NewClock(pacific, func() time.Time { return monday("08:00") })
	n := NewDiscordNotifier(config.DiscordConfig{WebhookURL: "https://discord.example/api/webhooks/1/abc", Footer: "Employee Time Clock"}, clock)
	assert.Equal(t, "https://discord.example/api/webhooks/1/abc/slack", n.url)

	msg := n.Message(models.Record{Name: "Ana", Action: timeclock.ActionStartLunch, Time: monday("12:00")})
	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, "🍔 Ana started lunch", att.Title)
	assert.Equal(t, "**Time:** 03/11/2024, 12:00:00 PM", att.Text)
	assert.Equal(t, "#f1c40f", att.Color)
	assert.Equal(t, "Employee Time Clock", att.Footer)

	msg = n.Message(models.Record{Name: "Ana", Action: timeclock.ActionClockOut, Time: monday("17:00"), AdminAction: true, Note: "forgot"})
	att = msg.Attachments[0]
	assert.Equal(t, "🔧 🔴 Ana clocked out (Admin)", att.Title)
	assert.Contains(t, att.Text, "**Note:** forgot")
}

func TestDiscordNotifyPostsWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hook/slack", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	clock := timeclock.NewClock(pacific, func() time.Time { return monday("08:00") })
	n := NewDiscordNotifier(config.DiscordConfig{WebhookURL: srv.URL + "/hook"}, clock)

	err := n.Notify(context.Background(), models.Record{Name: "Ana", Action: timeclock.ActionClockIn, Time: monday("08:00")})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Contains(t, got, "attachments")
}

func TestDiscordNotifyReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	clock := timeclock.NewClock(pacific, nil)
	n := NewDiscordNotifier(config.DiscordConfig{WebhookURL: srv.URL}, clock)
	assert.Error(t, n.Notify(context.Background(), models.Record{Name: "Ana", Action: timeclock.ActionClockIn}))
}

func TestNewNotifierWithoutWebhook(t *testing.T) {
	n := NewNotifier(config.DiscordConfig{}, timeclock.NewClock(pacific, nil))
	assert.IsType(t, NopNotifier{}, n)
}
