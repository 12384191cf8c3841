package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var (
	// ErrNSQProducerAddrRequired is returned when publishing without an nsqd address.
	ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")
	// ErrNSQConsumerAddrsRequired is returned when subscribing without nsqd or lookupd addresses.
	ErrNSQConsumerAddrsRequired = errors.New("messaging: nsq nsqd/lookupd addresses are required")
	// ErrNSQChannelRequired is returned when subscribing without a channel.
	ErrNSQChannelRequired = errors.New("messaging: nsq channel is required")
)

// NSQConfig configures the NSQ driver.
type NSQConfig struct {
	ProducerAddr string
	NSQDAddrs    []string
	LookupdAddrs []string
	Channel      string
}

// NSQ is a Client backed by go-nsq. Headers are not carried.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

// NewNSQ creates the producer when cfg.ProducerAddr is set.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	n := &NSQ{cfg: cfg}
	if cfg.ProducerAddr == "" {
		return n, nil
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)
	n.producer = p

	return n, nil
}

// Close stops consumers and the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}
	if n.producer != nil {
		n.producer.Stop()
	}
	return nil
}

// Publish sends msg.Body to topic.
func (n *NSQ) Publish(ctx context.Context, topic string, msg Message) error {
	if err := validate(ctx, topic); err != nil {
		return err
	}
	if n.producer == nil {
		return ErrNSQProducerAddrRequired
	}

	if err := n.producer.Publish(topic, msg.Body); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}
	return nil
}

// Subscribe consumes topic on the configured channel. A handler error
// requeues the message.
func (n *NSQ) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if err := validateSubscribe(ctx, topic, handler); err != nil {
		return err
	}
	if n.cfg.Channel == "" {
		return ErrNSQChannelRequired
	}
	if len(n.cfg.NSQDAddrs) == 0 && len(n.cfg.LookupdAddrs) == 0 {
		return ErrNSQConsumerAddrsRequired
	}

	consumer, err := nsq.NewConsumer(topic, n.cfg.Channel, nsq.NewConfig())
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)
	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		return safeHandle(ctx, DriverNSQ, handler, Message{
			Topic: topic,
			Body:  m.Body,
			Time:  time.Unix(0, m.Timestamp),
		})
	}))

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrClosed
	}
	n.consumers = append(n.consumers, consumer)
	n.mu.Unlock()

	if len(n.cfg.LookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.LookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.cfg.NSQDAddrs)
	}
	if err != nil {
		consumer.Stop()
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}
