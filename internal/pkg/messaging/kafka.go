package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrKafkaBrokersRequired is returned when no Kafka brokers are configured.
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	// ErrKafkaGroupRequired is returned by Subscribe without a consumer group.
	ErrKafkaGroupRequired = errors.New("messaging: kafka consumer group is required")
)

// KafkaConfig configures the Kafka driver.
type KafkaConfig struct {
	Brokers []string
	GroupID string
	Dialer  *kafka.Dialer
}

// Kafka is a Client backed by kafka-go. Writers are created per topic.
type Kafka struct {
	cfg KafkaConfig

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// NewKafka validates cfg. Connections are opened lazily.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	cfg.Brokers = append([]string{}, cfg.Brokers...)
	return &Kafka{cfg: cfg, writers: map[string]*kafka.Writer{}}, nil
}

// Close flushes and closes every writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers := k.writers
	k.writers = nil
	k.mu.Unlock()

	var err error
	for _, w := range writers {
		err = errors.Join(err, w.Close())
	}
	return err
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  k.cfg.Brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		Dialer:   k.cfg.Dialer,
	})
	k.writers[topic] = w
	return w, nil
}

// Publish writes msg synchronously to topic.
func (k *Kafka) Publish(ctx context.Context, topic string, msg Message) error {
	if err := validate(ctx, topic); err != nil {
		return err
	}
	w, err := k.writer(topic)
	if err != nil {
		return err
	}

	km := kafka.Message{Key: msg.Key, Value: msg.Body, Time: msg.Time}
	if km.Time.IsZero() {
		km.Time = time.Now()
	}
	for key, val := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: key, Value: []byte(val)})
	}

	if err := w.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

// Subscribe reads topic in the configured consumer group. The offset of a
// message is committed only after the handler succeeds.
func (k *Kafka) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if err := validateSubscribe(ctx, topic, handler); err != nil {
		return err
	}
	if k.cfg.GroupID == "" {
		return ErrKafkaGroupRequired
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		GroupID:  k.cfg.GroupID,
		Topic:    topic,
		MaxBytes: 10e6,
		Dialer:   k.cfg.Dialer,
	})

	err := k.consume(ctx, reader, handler)
	return errors.Join(err, reader.Close())
}

func (k *Kafka) consume(ctx context.Context, reader *kafka.Reader, handler Handler) error {
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("messaging: kafka fetch: %w", err)
		}

		msg := Message{Topic: m.Topic, Key: m.Key, Body: m.Value, Time: m.Time}
		if len(m.Headers) > 0 {
			msg.Headers = make(map[string]string, len(m.Headers))
			for _, h := range m.Headers {
				msg.Headers[h.Key] = string(h.Value)
			}
		}

		if herr := safeHandle(ctx, DriverKafka, handler, msg); herr != nil {
			continue
		}
		if err := reader.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("messaging: kafka commit: %w", err)
		}
	}
}
