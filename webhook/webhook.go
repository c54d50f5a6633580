// Package webhook posts run notifications to an operator-supplied URL.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Event types.
const (
	// EventBatchCompleted is sent once a run over the input records ends.
	EventBatchCompleted = "batch.completed"
	// EventCompanyScraped is sent after a single company scraped outside a run.
	EventCompanyScraped = "company.scraped"
)

// SignatureHeader carries "sha256=<hex>" of the body when a secret is set.
const SignatureHeader = "X-Founderscope-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Notifier delivers events to one endpoint.
type Notifier struct {
	URL    string
	Secret string

	// Retry lists the waits before each attempt. The first entry is
	// normally 0.
	Retry []time.Duration

	Client *http.Client
}

// New returns a Notifier with the default retry schedule (now, 1s, 5s, 30s),
// or nil when url is empty. A nil Notifier drops every event.
func New(url, secret string) *Notifier {
	if url == "" {
		return nil
	}
	return &Notifier{
		URL:    url,
		Secret: secret,
		Retry:  []time.Duration{0, time.Second, 5 * time.Second, 30 * time.Second},
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends event once.
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Founderscope-Webhook/1.0")
	if n.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(n.Secret, body))
	}

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Send delivers event following the retry schedule and reports whether any
// attempt succeeded. It gives up early when ctx is done.
func (n *Notifier) Send(ctx context.Context, event *Event) bool {
	if n == nil {
		return false
	}
	for attempt, delay := range n.Retry {
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return false
			case <-t.C:
			}
		}
		actx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := n.Deliver(actx, event)
		cancel()
		if err == nil {
			slog.Info("webhook delivered",
				"url", n.URL,
				"event", event.Type,
				"run_id", event.RunID,
				"attempt", attempt+1,
			)
			return true
		}
		slog.Warn("webhook delivery failed",
			"url", n.URL,
			"event", event.Type,
			"run_id", event.RunID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("webhook delivery exhausted all retries",
		"url", n.URL,
		"event", event.Type,
		"run_id", event.RunID,
	)
	return false
}

// SendAsync runs Send in the background. The returned channel is closed
// when delivery ends.
func (n *Notifier) SendAsync(event *Event) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Send(context.Background(), event)
	}()
	return done
}
