package events

import (
	"context"
	"testing"
	"time"

	"cuisinemap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	keys   []string
	values []any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.keys = append(p.keys, key)
	p.values = append(p.values, v)
	return nil
}

func TestEmitter_CountUpdated(t *testing.T) {
	pub := &recordingPublisher{}
	e := NewEmitter(pub)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	ev := CountUpdated{RunID: "r1", CuisineID: "thai", AreaID: "tokyo-23", Count: models.AtLeast(60), Date: "2026-03-01"}
	require.NoError(t, e.CountUpdated(context.Background(), ev))

	require.Len(t, pub.keys, 1)
	assert.Equal(t, "thai/tokyo-23", pub.keys[0])
	assert.Equal(t, Envelope{Type: TypeCountUpdated, OccurredAt: fixed, Payload: ev}, pub.values[0])
}

func TestEmitter_NilIsNoop(t *testing.T) {
	var e *Emitter
	assert.NoError(t, e.DiscoveriesPublished(context.Background(), DiscoveriesPublished{Date: "2026-03-01"}))
	assert.NoError(t, NewEmitter(nil).CountUpdated(context.Background(), CountUpdated{}))
}
