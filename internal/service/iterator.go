// Package service turns object-storage notifications delivered over Kafka
// into loaded documents.
package service

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/minio/minio-go/v7/pkg/notification"
	"go.uber.org/zap"
)

// Iterator interprets each message as a MinIO bucket notification, loads the
// referenced objects that pass the key filter, and yields them on a channel.
// It does not own the message source; callers start and stop it.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
	filter      KeyFilter
	log         *zap.Logger
}

// NewIterator builds an iterator. A nil filter accepts every key.
func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T], filter KeyFilter, log *zap.Logger) *Iterator[T] {
	if filter == nil {
		filter = func(string) bool { return true }
	}
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
		filter:      filter,
		log:         log,
	}
}

// Objects streams loaded objects until the message channel closes or ctx is
// canceled. Undecodable messages and load failures are logged and skipped. A
// message is committed once every matching record in it has been handled.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			var info notification.Info
			if err := json.Unmarshal(msg.Value, &info); err != nil {
				it.log.Warn("skipping undecodable notification", zap.Error(err))
				continue
			}

			for _, event := range info.Records {
				objectKey, err := url.QueryUnescape(event.S3.Object.Key)
				if err != nil {
					it.log.Warn("skipping notification with bad key", zap.String("key", event.S3.Object.Key), zap.Error(err))
					continue
				}
				if !it.filter(objectKey) {
					continue
				}
				data, err := it.loader(ctx, event.S3.Bucket.Name, objectKey)
				if err != nil {
					it.log.Warn("error loading object", zap.String("key", objectKey), zap.Error(err))
					continue
				}
				select {
				case out <- &FetchedObject[T]{Data: data, Event: event}:
				case <-ctx.Done():
					return
				}
			}

			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				it.log.Warn("failed to commit offset", zap.Error(err))
			}
		}
	}()
	return out
}
