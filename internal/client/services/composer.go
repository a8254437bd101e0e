package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/chirp/internal/client/media"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/client/session"
	"github.com/dmitrijs2005/chirp/internal/common"
)

var (
	ErrAttachmentFailed = errors.New("an attachment failed to upload")
	ErrUploadsPending   = errors.New("attachments are still uploading")
	ErrComposerDone     = errors.New("composer already submitted or abandoned")
)

// Attachments is satisfied by *session.Manager.
type Attachments interface {
	Add(src media.Source) (string, bool)
	Remove(id string) bool
	Clear()
	Assets() []session.Asset
	IsUploading() bool
	HasErrors() bool
	MediaIDs() []int64
	Wait(ctx context.Context) error
}

// Poster is satisfied by *PostService.
type Poster interface {
	CreatePost(ctx context.Context, content string, mediaIDs []int64) (*models.Post, error)
}

// Composer is one post being written. It owns its attachments and clears
// them exactly once, when the post is published or abandoned.
type Composer struct {
	poster      Poster
	attachments Attachments

	mu   sync.Mutex
	done bool
}

func NewComposer(poster Poster, attachments Attachments) *Composer {
	return &Composer{poster: poster, attachments: attachments}
}

func (c *Composer) Attach(src media.Source) (string, bool) {
	if c.finished() {
		return "", false
	}
	return c.attachments.Add(src)
}

func (c *Composer) Detach(id string) bool {
	return c.attachments.Remove(id)
}

func (c *Composer) Attachments() []session.Asset {
	return c.attachments.Assets()
}

func (c *Composer) finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Submit waits for the attachments to settle and publishes the post with
// every uploaded media id. A failed attachment blocks publishing until it is
// detached. The attachments are kept when publishing fails. Attach, Detach
// and Abandon stay usable while the uploads are awaited; an Abandon during
// the wait makes Submit return ErrComposerDone.
func (c *Composer) Submit(ctx context.Context, content string) (*models.Post, error) {
	if c.finished() {
		return nil, ErrComposerDone
	}
	if err := c.attachments.Wait(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return nil, ErrComposerDone
	}
	if c.attachments.HasErrors() {
		return nil, ErrAttachmentFailed
	}
	if c.attachments.IsUploading() {
		return nil, ErrUploadsPending
	}

	ids := c.attachments.MediaIDs()
	if strings.TrimSpace(content) == "" && len(ids) == 0 {
		return nil, fmt.Errorf("%w: post is empty", common.ErrorValidation)
	}

	post, err := c.poster.CreatePost(ctx, content, ids)
	if err != nil {
		return nil, err
	}
	c.done = true
	c.attachments.Clear()
	return post, nil
}

// Abandon discards the draft and its attachments.
func (c *Composer) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.done = true
	c.attachments.Clear()
}
