package services

import (
	"context"

	"github.com/dmitrijs2005/chirp/internal/client/cache"
	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/client/models"
)

// MediaService resolves display URLs of uploaded media.
type MediaService struct {
	api   *client.API
	cache *cache.QueryCache
}

func NewMediaService(d Deps) *MediaService {
	return &MediaService{api: d.API, cache: d.Cache}
}

// URL returns a read URL for the media together with its metadata. The URL
// is presigned and cached only for the stale window.
func (s *MediaService) URL(ctx context.Context, id int64) (models.PresignedURLResponse, error) {
	return cache.Query(ctx, s.cache, MediaURLKey(id), func(ctx context.Context) (models.PresignedURLResponse, error) {
		r, err := s.api.Media.PresignedURL(ctx, id)
		if err != nil {
			return models.PresignedURLResponse{}, err
		}
		return *r, nil
	})
}

func (s *MediaService) UserMedia(ctx context.Context, userID int64) ([]models.Media, error) {
	return cache.Query(ctx, s.cache, cache.K("users", userID, "media"), func(ctx context.Context) ([]models.Media, error) {
		return s.api.Media.UserMedia(ctx, userID)
	})
}
