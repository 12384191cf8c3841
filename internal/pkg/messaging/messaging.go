package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrTopicRequired is returned when publishing or subscribing without a topic.
	ErrTopicRequired = errors.New("messaging: topic is required")
	// ErrHandlerRequired is returned when Subscribe receives a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrClosed is returned once the client has been closed.
	ErrClosed = errors.New("messaging: client is closed")
)

// Client publishes to and subscribes on a broker.
type Client interface {
	io.Closer

	Publisher
	Subscriber
}

// Publisher sends messages to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
}

// Subscriber delivers messages from a topic to a handler until ctx is done.
//
// A nil handler error acknowledges the message. Any other error leaves
// redelivery to the broker.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// Handler processes one delivered message.
type Handler func(ctx context.Context, msg Message) error

// Message is the broker-neutral payload.
type Message struct {
	// Topic is filled on delivery.
	Topic string
	// Key is used for partitioning where the broker supports it.
	Key []byte
	// Body is the raw payload.
	Body []byte
	// Headers map to broker headers or attributes. NSQ drops them.
	Headers map[string]string
	// Time is the broker timestamp on delivery, or the publish time.
	Time time.Time
}
