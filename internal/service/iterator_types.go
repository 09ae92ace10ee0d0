package service

import (
	"context"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

// MessageIterator is satisfied by *kafkaclient.KafkaConsumer.
type MessageIterator interface {
	// Messages is closed when the consumer stops.
	Messages() <-chan kafka.Message
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc reads and decodes the object at bucket/key.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// KeyFilter selects which decoded object keys are loaded.
type KeyFilter func(key string) bool

// FetchedObject pairs a loaded object with the event that announced it.
type FetchedObject[T any] struct {
	Data  T
	Event notification.Event
}
