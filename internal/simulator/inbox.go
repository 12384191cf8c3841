package simulator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/webotp/internal/pkg/messaging"
)

// Inbox feeds SMS texts consumed from a broker topic into a Platform, the way
// a phone's modem would. Malformed or unmatched texts are acknowledged and
// dropped.
type Inbox struct {
	sub      messaging.Subscriber
	topic    string
	platform *Platform
	log      *slog.Logger
}

// NewInbox returns an Inbox for topic.
func NewInbox(sub messaging.Subscriber, topic string, platform *Platform) *Inbox {
	return &Inbox{
		sub:      sub,
		topic:    topic,
		platform: platform,
		log:      slog.Default().With("component", "simulator.inbox"),
	}
}

// Run blocks until ctx is done.
func (in *Inbox) Run(ctx context.Context) error {
	in.log.InfoContext(ctx, "listening for sms", "topic", in.topic)

	err := in.sub.Subscribe(ctx, in.topic, in.handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (in *Inbox) handle(ctx context.Context, msg messaging.Message) error {
	d, err := in.platform.Deliver(ctx, string(msg.Body))
	if err != nil {
		in.log.InfoContext(ctx, "sms from broker not delivered", "topic", msg.Topic, "error", err)
		return nil
	}

	in.log.InfoContext(ctx, "sms from broker delivered", "topic", msg.Topic, "request_id", d.RequestID)
	return nil
}
