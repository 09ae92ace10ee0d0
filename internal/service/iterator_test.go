package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cuisinemap/internal/keys"
	"cuisinemap/internal/models"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMessages struct {
	ch        chan kafka.Message
	committed []int64
}

func (f *fakeMessages) Messages() <-chan kafka.Message { return f.ch }

func (f *fakeMessages) CommitOffset(_ context.Context, msg kafka.Message) error {
	f.committed = append(f.committed, msg.Offset)
	return nil
}

func notificationFor(t *testing.T, bucket, key string) []byte {
	t.Helper()
	var ev notification.Event
	ev.S3.Bucket.Name = bucket
	ev.S3.Object.Key = key
	b, err := json.Marshal(notification.Info{Records: []notification.Event{ev}})
	require.NoError(t, err)
	return b
}

func TestIterator_LoadsMatchingObjects(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	src := &fakeMessages{ch: make(chan kafka.Message, 4)}
	src.ch <- kafka.Message{Offset: 0, Value: notificationFor(t, "cuisinemap", "discoveries%2Flatest.json")}
	src.ch <- kafka.Message{Offset: 1, Value: []byte("not json")}
	src.ch <- kafka.Message{Offset: 2, Value: notificationFor(t, "cuisinemap", "registry/2026-03-07/run.json")}
	src.ch <- kafka.Message{Offset: 3, Value: notificationFor(t, "cuisinemap", "discoveries/latest.json")}
	close(src.ch)

	calls := 0
	loader := func(_ context.Context, bucket, key string) (*models.DiscoveryDocument, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("transient")
		}
		assert.Equal(t, "cuisinemap", bucket)
		assert.Equal(t, keys.LatestDiscoveries(), key)
		return &models.DiscoveryDocument{LastUpdated: "2026-03-08"}, nil
	}

	it := NewIterator[*models.DiscoveryDocument](src, loader, keys.IsLatestDiscoveries, zap.NewNop())
	var got []*FetchedObject[*models.DiscoveryDocument]
	for obj := range it.Objects(ctx) {
		got = append(got, obj)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "2026-03-08", got[0].Data.LastUpdated)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int64{0, 2, 3}, src.committed, "undecodable messages are not committed")
}
