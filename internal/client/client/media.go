package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

type MediaService struct{ c *Client }

// Init announces an upload and returns its transfer destinations.
func (s *MediaService) Init(ctx context.Context, req models.MediaInitRequest) (*models.MediaInitResponse, error) {
	return required(Post[models.MediaInitResponse](ctx, s.c, common.APIPrefix+"/media/init", req))
}

// Uploaded confirms a finished transfer. Parts is empty for a single part.
func (s *MediaService) Uploaded(ctx context.Context, req models.MediaUploadedRequest) (*models.Media, error) {
	return Post[models.Media](ctx, s.c, common.APIPrefix+"/media/uploaded", req)
}

func (s *MediaService) ByID(ctx context.Context, id int64) (*models.Media, error) {
	return required(Get[models.Media](ctx, s.c, fmt.Sprintf("%s/media/%d", common.APIPrefix, id)))
}

func (s *MediaService) PresignedURL(ctx context.Context, id int64) (*models.PresignedURLResponse, error) {
	return required(Get[models.PresignedURLResponse](ctx, s.c, fmt.Sprintf("%s/media/%d/presigned-url", common.APIPrefix, id)))
}

func (s *MediaService) UserMedia(ctx context.Context, userID int64) ([]models.Media, error) {
	return valueOf(Get[[]models.Media](ctx, s.c, fmt.Sprintf("%s/users/%d/media", common.APIPrefix, userID)))
}

func (s *MediaService) Delete(ctx context.Context, id int64) error {
	return Delete(ctx, s.c, fmt.Sprintf("%s/media/%d", common.APIPrefix, id), nil)
}
