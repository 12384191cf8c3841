package messaging

import (
	"context"
	"sync"
	"time"
)

const memoryBuffer = 64

// Memory is an in-process broker. Messages published while a topic has no
// subscriber are dropped.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]chan Message
	closed bool
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{subs: map[string][]chan Message{}}
}

// Close stops accepting publishes and ends every subscription.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, chans := range m.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	m.subs = nil
	return nil
}

// Publish fans msg out to every current subscriber of topic.
func (m *Memory) Publish(ctx context.Context, topic string, msg Message) error {
	if err := validate(ctx, topic); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}

	msg.Topic = topic
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	for _, ch := range m.subs[topic] {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe delivers messages on topic until ctx is done or the broker closes.
func (m *Memory) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if err := validateSubscribe(ctx, topic, handler); err != nil {
		return err
	}

	ch := make(chan Message, memoryBuffer)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[topic] = append(m.subs[topic], ch)
	m.mu.Unlock()

	defer m.unsubscribe(topic, ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			//nolint:errcheck // no redelivery in memory
			_ = safeHandle(ctx, DriverMemory, handler, msg)
		}
	}
}

func (m *Memory) unsubscribe(topic string, ch chan Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	chans := m.subs[topic]
	for i := range chans {
		if chans[i] == ch {
			m.subs[topic] = append(chans[:i], chans[i+1:]...)
			return
		}
	}
}

// Subscribers reports how many subscriptions are attached to topic.
func (m *Memory) Subscribers(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[topic])
}
