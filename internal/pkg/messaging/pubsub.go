package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// ErrPubSubProjectIDRequired is returned when ProjectID is missing.
var ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")

// PubSubConfig configures the Google Pub/Sub driver.
type PubSubConfig struct {
	ProjectID string
	// Subscription is the subscription ID used by Subscribe. Defaults to the
	// topic name.
	Subscription  string
	ClientOptions []option.ClientOption
}

// PubSub is a Client backed by Google Pub/Sub. Headers map to attributes.
type PubSub struct {
	client       *pubsub.Client
	subscription string

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
	closed     bool
}

// NewPubSub creates the Pub/Sub client.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}

	return &PubSub{
		client:       c,
		subscription: cfg.Subscription,
		publishers:   map[string]*pubsub.Publisher{},
	}, nil
}

// Close stops publishers and closes the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pubs := p.publishers
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}
	return p.client.Close()
}

func (p *PubSub) publisher(topic string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub, nil
	}
	pub := p.client.Publisher(topic)
	p.publishers[topic] = pub
	return pub, nil
}

// Publish sends msg and waits for the server ID.
func (p *PubSub) Publish(ctx context.Context, topic string, msg Message) error {
	if err := validate(ctx, topic); err != nil {
		return err
	}
	pub, err := p.publisher(topic)
	if err != nil {
		return err
	}

	res := pub.Publish(ctx, &pubsub.Message{Data: msg.Body, Attributes: msg.Headers})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("messaging: pubsub publish: %w", err)
	}
	return nil
}

// Subscribe receives from the configured subscription. A handler error nacks.
func (p *PubSub) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if err := validateSubscribe(ctx, topic, handler); err != nil {
		return err
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	subID := p.subscription
	if subID == "" {
		subID = topic
	}

	return p.client.Subscriber(subID).Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		msg := Message{Topic: topic, Body: m.Data, Headers: m.Attributes, Time: m.PublishTime}
		if err := safeHandle(ctx, DriverGooglePubSub, handler, msg); err != nil {
			m.Nack()
			return
		}
		m.Ack()
	})
}
