package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired is returned when the NATS server URL is missing.
var ErrNATSURLRequired = errors.New("messaging: nats url is required")

// NATSConfig configures the NATS driver.
type NATSConfig struct {
	URL string
	// QueueGroup load-balances subscribers sharing the same name.
	QueueGroup string
	Options    []nats.Option
}

// NATS is a Client backed by core NATS subjects.
type NATS struct {
	conn       *nats.Conn
	queueGroup string

	mu     sync.Mutex
	closed bool
}

// NewNATS connects to cfg.URL.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn, queueGroup: cfg.QueueGroup}, nil
}

// Close drains the connection.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true

	err := n.conn.Drain()
	n.conn.Close()
	return err
}

func (n *NATS) isClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// Publish sends msg to the subject named topic and flushes.
func (n *NATS) Publish(ctx context.Context, topic string, msg Message) error {
	if err := validate(ctx, topic); err != nil {
		return err
	}
	if n.isClosed() {
		return ErrClosed
	}

	nmsg := nats.NewMsg(topic)
	nmsg.Data = msg.Body
	for k, v := range msg.Headers {
		nmsg.Header.Set(k, v)
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("messaging: nats flush: %w", err)
	}
	return nil
}

// Subscribe blocks until ctx is done. Core NATS has no redelivery, so handler
// errors are only logged by the caller.
func (n *NATS) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if err := validateSubscribe(ctx, topic, handler); err != nil {
		return err
	}
	if n.isClosed() {
		return ErrClosed
	}

	sub, err := n.conn.QueueSubscribe(topic, n.queueGroup, func(m *nats.Msg) {
		msg := Message{Topic: m.Subject, Body: m.Data, Time: time.Now()}
		if len(m.Header) > 0 {
			msg.Headers = make(map[string]string, len(m.Header))
			for k := range m.Header {
				msg.Headers[k] = m.Header.Get(k)
			}
		}
		//nolint:errcheck // core NATS cannot nack
		_ = safeHandle(ctx, DriverNATS, handler, msg)
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	<-ctx.Done()
	return errors.Join(ctx.Err(), sub.Drain())
}
