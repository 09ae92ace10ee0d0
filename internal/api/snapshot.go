package api

import (
	"context"
	"sync"

	"cuisinemap/internal/models"
	"cuisinemap/internal/service"

	"go.uber.org/zap"
)

// DiscoverySnapshot holds the discoveries document the API serves. It is
// replaced whole, never mutated.
type DiscoverySnapshot struct {
	mu  sync.RWMutex
	doc *models.DiscoveryDocument
}

func NewDiscoverySnapshot(doc *models.DiscoveryDocument) *DiscoverySnapshot {
	return &DiscoverySnapshot{doc: doc}
}

func (s *DiscoverySnapshot) Get() *models.DiscoveryDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *DiscoverySnapshot) Set(doc *models.DiscoveryDocument) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Follow swaps in every document announced on objects until the channel
// closes or ctx is done.
func (s *DiscoverySnapshot) Follow(ctx context.Context, objects <-chan *service.FetchedObject[*models.DiscoveryDocument], log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case obj, ok := <-objects:
			if !ok {
				return
			}
			if obj.Data == nil {
				continue
			}
			s.Set(obj.Data)
			log.Info("discoveries reloaded",
				zap.String("key", obj.Event.S3.Object.Key),
				zap.String("lastUpdated", obj.Data.LastUpdated),
				zap.Int("cuisines", len(obj.Data.Discoveries)))
		}
	}
}
