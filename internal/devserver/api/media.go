package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/devserver/storage"
	"github.com/gin-gonic/gin"
)

// partCount is the number of ChunkSize parts a file of size bytes splits
// into.
func partCount(size int64) int {
	return int((size + common.ChunkSize - 1) / common.ChunkSize)
}

// mediaInit registers an upload and answers with a single-part plan for
// files up to one chunk, a multi-part plan otherwise.
func (s *Server) mediaInit(c *gin.Context) {
	ctx := c.Request.Context()
	var req models.MediaInitRequest
	if !bind(c, &req) {
		return
	}
	switch req.MediaType {
	case models.MediaTypeImage, models.MediaTypeVideo, models.MediaTypeGIF:
	default:
		abort(c, http.StatusBadRequest, fmt.Sprintf("unsupported media type %q", req.MediaType))
		return
	}
	if req.FileSize <= 0 {
		abort(c, http.StatusBadRequest, "file size must be positive")
		return
	}
	if req.FileSize > s.maxUploadBytes {
		abort(c, http.StatusBadRequest, fmt.Sprintf("file exceeds the %d byte limit", s.maxUploadBytes))
		return
	}

	uid := currentUser(c)
	key := storage.NewKey(uid)
	m, err := s.store.CreateMedia(ctx, uid, req.MediaType, req.FileSize, key)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := models.MediaInitResponse{Media: m.Media}

	if req.FileSize <= common.ChunkSize {
		resp.PresignedURL, err = s.objects.PresignPut(ctx, key)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.metrics.mediaInits.WithLabelValues("single").Inc()
		c.JSON(http.StatusOK, resp)
		return
	}

	n := partCount(req.FileSize)
	resp.UploadID, err = s.objects.CreateMultipart(ctx, key)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.PresignedURLParts = make([]models.PresignedURLPart, 0, n)
	for part := 1; part <= n; part++ {
		u, err := s.objects.PresignPart(ctx, key, resp.UploadID, part)
		if err != nil {
			s.fail(c, err)
			return
		}
		resp.PresignedURLParts = append(resp.PresignedURLParts, models.PresignedURLPart{PartNumber: part, URL: u})
	}
	if err := s.store.SetMultipart(ctx, m.ID, resp.UploadID, n); err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.mediaInits.WithLabelValues("multi").Inc()
	c.JSON(http.StatusOK, resp)
}

// mediaUploaded confirms a transfer. Single-part uploads must carry no parts
// and the object must exist; multi-part uploads must list every planned
// part in ascending order with the ETags storage returned.
func (s *Server) mediaUploaded(c *gin.Context) {
	ctx := c.Request.Context()
	var req models.MediaUploadedRequest
	if !bind(c, &req) {
		return
	}
	uid := currentUser(c)
	m, err := s.store.OwnedMedia(ctx, uid, req.MediaID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if m.Status != models.MediaStatusInit {
		abort(c, http.StatusBadRequest, fmt.Sprintf("media %d is %s", m.ID, m.Status))
		return
	}

	if err := s.verifyTransfer(c, m.StorageKey, m.UploadID, m.Parts, req.Parts); err != nil {
		s.metrics.mediaConfirms.WithLabelValues("rejected").Inc()
		s.logger.Warn(ctx, "media confirm rejected", "media_id", m.ID, "error", err)
		s.markFailed(ctx, m.ID)
		s.fail(c, err)
		return
	}

	done, err := s.store.SetMediaStatus(ctx, m.ID, models.MediaStatusCompleted)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.mediaConfirms.WithLabelValues("completed").Inc()
	s.metrics.mediaBytes.Add(float64(m.Size))
	c.JSON(http.StatusOK, done.Media)
}

func (s *Server) markFailed(ctx context.Context, id int64) {
	if _, err := s.store.SetMediaStatus(ctx, id, models.MediaStatusFailed); err != nil {
		s.logger.Warn(ctx, "media status update failed", "media_id", id, "status", models.MediaStatusFailed, "error", err)
	}
}

func (s *Server) verifyTransfer(c *gin.Context, key, uploadID string, planned int, parts []models.MediaUploadPart) error {
	ctx := c.Request.Context()
	if uploadID == "" {
		if len(parts) > 0 {
			return fmt.Errorf("%w: single-part upload confirmed with parts", common.ErrorValidation)
		}
		if _, err := s.objects.HeadObject(ctx, key); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: object was never uploaded", common.ErrorValidation)
			}
			return err
		}
		return nil
	}
	if err := storage.ValidateParts(parts, planned); err != nil {
		return err
	}
	if err := s.objects.CompleteMultipart(ctx, key, uploadID, parts); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		return err
	}
	return nil
}

func (s *Server) getMedia(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	m, err := s.store.Media(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m.Media)
}

func (s *Server) mediaPresignedURL(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	m, err := s.store.Media(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if m.Status != models.MediaStatusCompleted {
		abort(c, http.StatusNotFound, "Not found")
		return
	}
	u, err := s.objects.PresignGet(ctx, m.StorageKey)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PresignedURLResponse{PresignedURL: u, Media: m.Media})
}

func (s *Server) userMedia(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.UserMedia(c.Request.Context(), id))
}

func (s *Server) deleteMedia(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteMedia(c.Request.Context(), currentUser(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
