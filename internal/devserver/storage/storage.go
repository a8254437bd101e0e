// Package storage abstracts the object store media bytes travel to. Clients
// never send bytes through the API: they PUT to presigned URLs issued here.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/google/uuid"
)

// ObjectStore issues presigned URLs and finalizes multi-part uploads.
type ObjectStore interface {
	// PresignPut returns a URL accepting the whole object in one PUT.
	PresignPut(ctx context.Context, key string) (string, error)
	// CreateMultipart starts a multi-part upload and returns its id.
	CreateMultipart(ctx context.Context, key string) (string, error)
	// PresignPart returns the PUT URL of one 1-indexed part.
	PresignPart(ctx context.Context, key, uploadID string, partNumber int) (string, error)
	// CompleteMultipart assembles the object from parts, which must be in
	// ascending part order and carry the ETags returned by the part PUTs.
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []models.MediaUploadPart) error
	// PresignGet returns a time-limited read URL.
	PresignGet(ctx context.Context, key string) (string, error)
	// HeadObject returns the size of a stored object or common.ErrorNotFound.
	HeadObject(ctx context.Context, key string) (int64, error)
}

// NewKey returns a fresh storage key for an object owned by userID.
func NewKey(userID int64) string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// ValidateParts checks that parts are numbered 1..want without gaps, in
// ascending order, each with an ETag.
func ValidateParts(parts []models.MediaUploadPart, want int) error {
	if len(parts) != want {
		return fmt.Errorf("%w: got %d parts, want %d", common.ErrorValidation, len(parts), want)
	}
	for i, p := range parts {
		if p.PartNumber != i+1 {
			return fmt.Errorf("%w: part %d out of order at position %d", common.ErrorValidation, p.PartNumber, i+1)
		}
		if NormalizeETag(p.ETag) == "" {
			return fmt.Errorf("%w: part %d has no etag", common.ErrorValidation, p.PartNumber)
		}
	}
	return nil
}

// NormalizeETag strips the quotes storage backends put around ETags.
func NormalizeETag(etag string) string {
	return strings.Trim(strings.TrimSpace(etag), `"`)
}
