package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/webotp/internal/pkg/hash"
	"github.com/shandysiswandi/webotp/internal/pkg/messaging"
	"github.com/shandysiswandi/webotp/internal/pkg/uid"
	"github.com/shandysiswandi/webotp/internal/webotp"
)

const (
	// HeaderEvent carries the event name.
	HeaderEvent = "event"
	// HeaderSignature carries the hex HMAC of the body when signing is on.
	HeaderSignature = "signature"
)

// EventPayload is the broker body for a dispatched event.
type EventPayload struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Detail map[string]string `json:"detail"`
	At     time.Time         `json:"at"`
}

// Publisher is a webotp.Dispatcher that publishes events to a broker topic.
// Broker errors are retried with exponential backoff.
type Publisher struct {
	pub      messaging.Publisher
	topic    string
	ids      uid.StringID
	attempts uint64
	base     time.Duration
	signer   hash.Signer
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// SignWith adds a HeaderSignature computed by signer to every message.
func SignWith(signer hash.Signer) PublisherOption {
	return func(p *Publisher) {
		p.signer = signer
	}
}

// NewPublisher returns a Publisher. attempts counts retries after the first
// try; base is the first backoff.
func NewPublisher(pub messaging.Publisher, topic string, ids uid.StringID, attempts uint64, base time.Duration, opts ...PublisherOption) *Publisher {
	if ids == nil {
		ids = uid.NewUUID()
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	p := &Publisher{pub: pub, topic: topic, ids: ids, attempts: attempts, base: base}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch implements webotp.Dispatcher.
func (p *Publisher) Dispatch(ctx context.Context, evt webotp.Event) error {
	payload := EventPayload{
		ID:     p.ids.Generate(),
		Name:   evt.Name,
		Detail: map[string]string{"otp": evt.OTP},
		At:     evt.At,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("simulator: encode event: %w", err)
	}

	msg := messaging.Message{
		Key:     []byte(payload.ID),
		Body:    body,
		Headers: map[string]string{HeaderEvent: evt.Name},
		Time:    evt.At,
	}
	if p.signer != nil {
		msg.Headers[HeaderSignature] = p.signer.Sign(body)
	}

	backoff := retry.WithMaxRetries(p.attempts, retry.NewExponential(p.base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.pub.Publish(ctx, p.topic, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
