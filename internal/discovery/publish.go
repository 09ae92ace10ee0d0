package discovery

import (
	"context"

	"cuisinemap/internal/events"
	"cuisinemap/internal/keys"
	"cuisinemap/internal/models"

	"go.uber.org/zap"
)

type ObjectPublisher interface {
	PublishDiscoveries(ctx context.Context, doc *models.DiscoveryDocument) error
}

type Notifier interface {
	DiscoveriesPublished(ctx context.Context, ev events.DiscoveriesPublished) error
}

// Publisher mirrors a written discoveries document to object storage and
// announces it. Both collaborators are optional; failures are warnings since
// the local file is already authoritative.
type Publisher struct {
	Objects  ObjectPublisher
	Notifier Notifier
	Log      *zap.Logger
}

func (p Publisher) Publish(ctx context.Context, doc *models.DiscoveryDocument) {
	if p.Objects == nil {
		return
	}
	if err := p.Objects.PublishDiscoveries(ctx, doc); err != nil {
		p.Log.Warn("discoveries upload failed", zap.Error(err))
		return
	}
	if p.Notifier == nil {
		return
	}
	ev := events.DiscoveriesPublished{Date: doc.LastUpdated, Cuisines: len(doc.Discoveries), Key: keys.LatestDiscoveries()}
	if err := p.Notifier.DiscoveriesPublished(ctx, ev); err != nil {
		p.Log.Warn("discoveries event failed", zap.Error(err))
	}
}
