// Package notify delivers class-start notices. The daemon has no lock
// screen of its own, so delivery goes out through Pushover when
// credentials are configured and through the log otherwise.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"knwidget/internal/alarm"
	appLog "knwidget/internal/log"
)

const pushoverAPI = "https://api.pushover.net/1/messages.json"

// Pushover posts notices to the Pushover message API. Tapping the message
// follows the slot deep link (url parameter), which brings the host app to
// the foreground.
type Pushover struct {
	Token  string
	User   string
	client *http.Client
}

// NewPushover creates a Pushover notifier.
func NewPushover(token, user string) *Pushover {
	return &Pushover{
		Token:  token,
		User:   user,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify implements alarm.Notifier.
func (p *Pushover) Notify(ctx context.Context, n alarm.Notice) error {
	params := url.Values{}
	params.Set("token", p.Token)
	params.Set("user", p.User)
	params.Set("title", n.Title)
	params.Set("message", n.Body)
	if n.DeepLink != "" {
		params.Set("url", n.DeepLink)
		params.Set("url_title", "앱에서 열기")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pushoverAPI,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("pushover api error: status %s, body %s", resp.Status, string(body))
	}
	return nil
}

// Logger is the fallback notifier used when no delivery channel is
// configured; it writes the notice to the log and always succeeds.
type Logger struct{}

// Notify implements alarm.Notifier.
func (Logger) Notify(_ context.Context, n alarm.Notice) error {
	appLog.Info("class notification", "title", n.Title, "body", n.Body, "deep_link", n.DeepLink)
	return nil
}
