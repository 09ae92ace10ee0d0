package storage

import (
	"context"

	"cuisinemap/internal/keys"
	"cuisinemap/internal/models"
)

// PublishDiscoveries writes doc under both the latest key and its dated key.
func (s *S3Service) PublishDiscoveries(ctx context.Context, doc *models.DiscoveryDocument) error {
	if err := s.PutJSON(ctx, keys.Discoveries(doc.LastUpdated), doc); err != nil {
		return err
	}
	return s.PutJSON(ctx, keys.LatestDiscoveries(), doc)
}

// GetDiscoveries loads a discoveries document from bucket/key.
func (s *S3Service) GetDiscoveries(ctx context.Context, bucket, key string) (*models.DiscoveryDocument, error) {
	var doc models.DiscoveryDocument
	if err := s.GetJSON(ctx, bucket, key, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LatestDiscoveries loads the current published discoveries document. It
// returns nil and no error when nothing has been published yet.
func (s *S3Service) LatestDiscoveries(ctx context.Context) (*models.DiscoveryDocument, error) {
	key := keys.LatestDiscoveries()
	ok, err := s.Exists(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	return s.GetDiscoveries(ctx, s.bucket, key)
}
