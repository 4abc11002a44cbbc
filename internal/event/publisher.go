package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// publishAttempts bounds retries per event before giving up.
const publishAttempts = 3

// Publisher POSTs CloudEvents to a broker-facing HTTP endpoint. Delivery is
// best-effort: a publish that exhausts its retries is reported as an error
// for the caller to log, never to abort the triggering operation.
type Publisher struct {
	endpoint string
	topic    string
	client   *http.Client
}

func NewPublisher(endpoint, topic string) *Publisher {
	return &Publisher{
		endpoint: endpoint,
		topic:    topic,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a broker endpoint is configured. When it is not,
// events are only recorded locally.
func (p *Publisher) Enabled() bool {
	return p.endpoint != ""
}

func (p *Publisher) publishURL() string {
	return fmt.Sprintf("%s/%s", p.endpoint, p.topic)
}

// Publish delivers one envelope, retrying with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, env Envelope) error {
	if !p.Enabled() {
		return fmt.Errorf("publisher not configured")
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL(), bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/cloudevents+json")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("publish status %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), publishAttempts-1),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return fmt.Errorf("publish event %s: %w", env.ID, err)
	}
	return nil
}
