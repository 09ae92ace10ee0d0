// Package events defines the messages published after pipeline runs.
package events

import (
	"context"
	"time"

	"cuisinemap/internal/models"
)

const (
	TypeCountUpdated         = "count.updated"
	TypeDiscoveriesPublished = "discoveries.published"
)

// Envelope is the wire form of every event.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type CountUpdated struct {
	RunID     string       `json:"runId"`
	CuisineID string       `json:"cuisineId"`
	AreaID    string       `json:"areaId"`
	Count     models.Count `json:"count"`
	Date      string       `json:"date"`
}

type DiscoveriesPublished struct {
	Date     string `json:"date"`
	Cuisines int    `json:"cuisines"`
	Key      string `json:"key"`
}

// Publisher sends a keyed JSON message. *kafkaclient.Producer satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Emitter wraps payloads in envelopes. A nil *Emitter drops everything.
type Emitter struct {
	pub Publisher
	now func() time.Time
}

func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub, now: time.Now}
}

func (e *Emitter) CountUpdated(ctx context.Context, ev CountUpdated) error {
	return e.emit(ctx, ev.CuisineID+"/"+ev.AreaID, TypeCountUpdated, ev)
}

func (e *Emitter) DiscoveriesPublished(ctx context.Context, ev DiscoveriesPublished) error {
	return e.emit(ctx, ev.Date, TypeDiscoveriesPublished, ev)
}

func (e *Emitter) emit(ctx context.Context, key, typ string, payload any) error {
	if e == nil || e.pub == nil {
		return nil
	}
	return e.pub.PublishJSON(ctx, key, Envelope{Type: typ, OccurredAt: e.now().UTC(), Payload: payload})
}
