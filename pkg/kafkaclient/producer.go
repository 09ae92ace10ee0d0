package kafkaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of *kafka.Writer the producer uses.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON-encoded values to a single topic.
type Producer struct {
	writer KafkaWriter
}

// flushTimeout bounds how long a synchronous single-message write waits for
// a batch to fill. kafka-go's default is one second.
const flushTimeout = 10 * time.Millisecond

// NewProducer builds a producer that flushes every message on its own.
// PublishJSON blocks until its write completes.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: newWriter(brokers, topic)}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           flushTimeout,
		AllowAutoTopicCreation: true,
	}
}

// PublishJSON sends v keyed by key; equal keys land on the same partition.
func (p *Producer) PublishJSON(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
