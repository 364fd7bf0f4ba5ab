package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/logger"
	"timeclock/internal/models"
	"timeclock/internal/timeclock"

	"github.com/slack-go/slack"
)

// Notifier announces appended records. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, rec models.Record) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.Record) error { return nil }

type actionStyle struct {
	emoji string
	color int
	text  string
}

var actionStyles = map[timeclock.Action]actionStyle{
	timeclock.ActionClockIn:       {"🟢", 3066993, "clocked in"},
	timeclock.ActionClockOut:      {"🔴", 15158332, "clocked out"},
	timeclock.ActionStartBreak:    {"☕", 10181046, "started break"},
	timeclock.ActionEndBreak:      {"✅", 3066993, "ended break"},
	timeclock.ActionStartRestroom: {"🚻", 9807270, "started restroom break"},
	timeclock.ActionEndRestroom:   {"✅", 3066993, "ended restroom break"},
	timeclock.ActionStartLunch:    {"🍔", 15844367, "started lunch"},
	timeclock.ActionEndLunch:      {"✅", 3066993, "ended lunch"},
	timeclock.ActionStartItIssue:  {"💻", 15158332, "reported IT issue"},
	timeclock.ActionEndItIssue:    {"✅", 3066993, "resolved IT issue"},
	timeclock.ActionStartMeeting:  {"📊", 3447003, "started meeting"},
	timeclock.ActionEndMeeting:    {"✅", 3066993, "ended meeting"},
	timeclock.ActionAbsent:        {"🚫", 9807270, "was marked absent"},
}

func styleFor(a timeclock.Action) actionStyle {
	if st, ok := actionStyles[a]; ok {
		return st
	}
	return actionStyle{"⚪", 9807270, strings.ToLower(string(a))}
}

// DiscordNotifier posts to a Discord webhook through its Slack-compatible
// endpoint.
type DiscordNotifier struct {
	url    string
	footer string
	client *http.Client
	clock  *timeclock.Clock
}

func NewDiscordNotifier(cfg config.DiscordConfig, clock *timeclock.Clock) *DiscordNotifier {
	url := strings.TrimRight(cfg.WebhookURL, "/")
	if !strings.HasSuffix(url, "/slack") {
		url += "/slack"
	}
	return &DiscordNotifier{
		url:    url,
		footer: cfg.Footer,
		client: &http.Client{Timeout: config.Duration(cfg.Timeout, 10*time.Second)},
		clock:  clock,
	}
}

// NewNotifier returns a Discord notifier, or a no-op one when no webhook is set.
func NewNotifier(cfg config.DiscordConfig, clock *timeclock.Clock) Notifier {
	if cfg.WebhookURL == "" {
		logger.Info("discord webhook not configured, notifications disabled")
		return NopNotifier{}
	}
	return NewDiscordNotifier(cfg, clock)
}

func (n *DiscordNotifier) Notify(ctx context.Context, rec models.Record) error {
	msg := n.Message(rec)
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.url, n.client, msg); err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

// Message renders rec as a single embed.
func (n *DiscordNotifier) Message(rec models.Record) *slack.WebhookMessage {
	st := styleFor(rec.Action)

	title := fmt.Sprintf("%s %s %s", st.emoji, rec.Name, st.text)
	text := fmt.Sprintf("**Time:** %s", n.clock.Format(rec.Time))
	if rec.AdminAction {
		title = fmt.Sprintf("🔧 %s (Admin)", title)
		if rec.Note != "" {
			text += fmt.Sprintf("\n**Note:** %s", rec.Note)
		}
	}

	return &slack.WebhookMessage{
		Attachments: []slack.Attachment{{
			Color:  fmt.Sprintf("#%06x", st.color),
			Title:  title,
			Text:   text,
			Footer: n.footer,
			Ts:     json.Number(strconv.FormatInt(n.clock.Now().Unix(), 10)),
		}},
	}
}

// dispatch delivers rec in the background. Errors are logged only.
func dispatch(n Notifier, rec models.Record, timeout time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := n.Notify(ctx, rec); err != nil {
			logger.Error("notify.failed", "pin", rec.PIN, "action", rec.Action, "err", err)
		}
	}()
}
