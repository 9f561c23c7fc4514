package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Syafiq-lab/library-management-be/logger"
)

// Publisher delivers envelopes to the event sink.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	// Brokers lists the Kafka bootstrap addresses.
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	// Topic is the destination topic.
	Topic string `yaml:"topic" mapstructure:"topic"`
	// WriteTimeout bounds a single publish attempt.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ApplyDefaults fills zero-value fields.
func (c *KafkaConfig) ApplyDefaults() {
	if c.Topic == "" {
		c.Topic = "audit-events"
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
}

// KafkaPublisher implements Publisher on a kafka-go writer.
type KafkaPublisher struct {
	writer *kafkago.Writer
	log    *logger.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to the configured topic.
func NewKafkaPublisher(cfg KafkaConfig, log *logger.Logger) *KafkaPublisher {
	cfg.ApplyDefaults()
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafkago.RequireOne,
	}
	return &KafkaPublisher{
		writer: writer,
		log:    log.WithComponent("audit.publisher"),
	}
}

// Publish serializes the envelope and writes it to Kafka. The trace id is
// the partition key so one request's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("audit: marshal envelope: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(env.TraceID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event-name", Value: []byte(env.EventName)},
			{Key: "source-service", Value: []byte(env.SourceService)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: env.CreatedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("audit: publish: %w", err)
	}
	return nil
}

// Close shuts down the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
