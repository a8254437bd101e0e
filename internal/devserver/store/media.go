package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

// Media is the server record of one attachment. StorageKey and UploadID
// address the object in the object store; Parts is the number of parts a
// multi-part upload was planned with (0 for single part).
type Media struct {
	models.Media
	Size       int64
	StorageKey string
	UploadID   string
	Parts      int
}

// CreateMedia registers an upload in the INIT state.
func (s *Store) CreateMedia(ctx context.Context, userID int64, kind models.MediaType, size int64, storageKey string) (Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	m := &Media{
		Media: models.Media{
			ID:         s.nextID(),
			MediaType:  kind,
			Path:       storageKey,
			Status:     models.MediaStatusInit,
			UserID:     userID,
			CreatedAt:  now,
			ModifiedAt: now,
		},
		Size:       size,
		StorageKey: storageKey,
	}
	s.media[m.ID] = m
	return *m, nil
}

// SetMultipart records the multi-part upload the media was planned with.
func (s *Store) SetMultipart(ctx context.Context, id int64, uploadID string, parts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.UploadID = uploadID
	m.Parts = parts
	return nil
}

// OwnedMedia returns media id when it belongs to userID.
func (s *Store) OwnedMedia(ctx context.Context, userID, id int64) (Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[id]
	if !ok {
		return Media{}, common.ErrorNotFound
	}
	if m.UserID != userID {
		return Media{}, common.ErrForbidden
	}
	return *m, nil
}

func (s *Store) Media(ctx context.Context, id int64) (Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[id]
	if !ok {
		return Media{}, common.ErrorNotFound
	}
	return *m, nil
}

// SetMediaStatus moves media id to status. Only INIT media can change
// state; a second confirm is a validation error.
func (s *Store) SetMediaStatus(ctx context.Context, id int64, status models.MediaStatus) (Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[id]
	if !ok {
		return Media{}, common.ErrorNotFound
	}
	if m.Status != models.MediaStatusInit {
		return Media{}, fmt.Errorf("%w: media %d is %s", common.ErrorValidation, id, m.Status)
	}
	m.Status = status
	m.ModifiedAt = s.now()
	return *m, nil
}

// UserMedia lists the confirmed media of userID, newest first.
func (s *Store) UserMedia(ctx context.Context, userID int64) []models.Media {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Media{}
	for _, m := range s.media {
		if m.UserID == userID && m.Status == models.MediaStatusCompleted {
			out = append(out, m.Media)
		}
	}
	sortBy(out, func(a, b models.Media) bool { return a.ID > b.ID })
	return out
}

func (s *Store) DeleteMedia(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[id]
	if !ok {
		return common.ErrorNotFound
	}
	if m.UserID != userID {
		return common.ErrForbidden
	}
	delete(s.media, id)
	return nil
}
