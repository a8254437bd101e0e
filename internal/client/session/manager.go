// Package session tracks the attachments of one post being composed and
// runs their uploads concurrently.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/media"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/client/notify"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/google/uuid"
)

type Status string

const (
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Asset is a snapshot of one attachment. ID starts as LocalID and becomes
// the server media id once the upload is confirmed.
type Asset struct {
	ID       string
	LocalID  string
	MediaID  int64
	Name     string
	Kind     models.MediaType
	Preview  string
	Progress int
	Status   Status
	Err      error
}

// Uploader is satisfied by *media.Engine.
type Uploader interface {
	Upload(ctx context.Context, src media.Source, progress media.ProgressObserver) (int64, error)
}

type Options struct {
	MaxAttachments int
	// UploadTimeout bounds each upload; zero means no bound.
	UploadTimeout time.Duration
	Previews      PreviewStore
	Notifier      notify.Notifier
	Logger        logging.Logger
}

const uploadFailedNotice = "Media upload failed"

type entry struct {
	asset Asset
}

type Manager struct {
	uploader Uploader
	max      int
	timeout  time.Duration
	previews PreviewStore
	notifier notify.Notifier
	logger   logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	entries  []*entry
	inflight int
	settled  chan struct{}
}

func NewManager(uploader Uploader, opts Options) *Manager {
	m := &Manager{
		uploader: uploader,
		max:      opts.MaxAttachments,
		timeout:  opts.UploadTimeout,
		previews: opts.Previews,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		settled:  make(chan struct{}),
	}
	if m.max <= 0 {
		m.max = common.MaxAttachments
	}
	if m.previews == nil {
		m.previews = NewBlobStore()
	}
	if m.notifier == nil {
		m.notifier = notify.Nop()
	}
	if m.logger == nil {
		m.logger = logging.Nop()
	}
	m.logger = m.logger.With("component", "session")
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Add attaches src and starts its upload. The manager closes src once the
// upload settles. It returns false when the attachment limit is reached; the
// caller keeps ownership of src in that case.
func (m *Manager) Add(src media.Source) (string, bool) {
	ctx := context.Background()

	m.mu.Lock()
	if len(m.entries) >= m.max {
		m.mu.Unlock()
		m.logger.Info(ctx, "attachment limit reached, dropping file", "name", src.Name, "limit", m.max)
		return "", false
	}

	ref, err := m.previews.Acquire(src)
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn(ctx, "preview unavailable, dropping file", "name", src.Name, "error", err)
		return "", false
	}

	localID := uuid.NewString()
	e := &entry{asset: Asset{
		ID:      localID,
		LocalID: localID,
		Name:    src.Name,
		Kind:    src.Kind(),
		Preview: ref,
		Status:  StatusUploading,
	}}
	m.entries = append(m.entries, e)
	m.inflight++
	m.mu.Unlock()

	m.logger.Debug(ctx, "attachment added", "local_id", localID, "name", src.Name, "size", src.Size)
	go m.run(e, src)
	return localID, true
}

func (m *Manager) run(e *entry, src media.Source) {
	ctx := m.ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	id, err := m.uploader.Upload(ctx, src, media.ProgressFunc(func(p int) {
		m.progress(e, p)
	}))
	if cerr := src.Close(); cerr != nil {
		m.logger.Debug(ctx, "closing attachment source failed", "local_id", e.asset.LocalID, "error", cerr)
	}
	m.settle(ctx, e, id, err)
}

func (m *Manager) progress(e *entry, p int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.owns(e) || e.asset.Status != StatusUploading {
		return
	}
	if p > e.asset.Progress {
		e.asset.Progress = p
	}
}

func (m *Manager) settle(ctx context.Context, e *entry, id int64, err error) {
	defer m.done()

	m.mu.Lock()
	if !m.owns(e) {
		m.mu.Unlock()
		m.logger.Debug(ctx, "discarding result of removed attachment", "local_id", e.asset.LocalID, "error", err)
		return
	}

	if err != nil {
		e.asset.Status = StatusError
		e.asset.Err = err
		m.mu.Unlock()
		m.logger.Warn(ctx, "attachment upload failed", "local_id", e.asset.LocalID, "error", err)
		m.notifier.Error(ctx, uploadFailedNotice, err)
		return
	}

	e.asset.Status = StatusCompleted
	e.asset.MediaID = id
	e.asset.ID = strconv.FormatInt(id, 10)
	e.asset.Progress = 100
	m.mu.Unlock()
	m.logger.Info(ctx, "attachment uploaded", "local_id", e.asset.LocalID, "media_id", id)
}

func (m *Manager) done() {
	m.mu.Lock()
	m.inflight--
	close(m.settled)
	m.settled = make(chan struct{})
	m.mu.Unlock()
}

// owns reports whether e is still attached. Callers hold m.mu.
func (m *Manager) owns(e *entry) bool {
	for _, x := range m.entries {
		if x == e {
			return true
		}
	}
	return false
}

// Remove detaches the asset known by its current or local id and releases
// its preview. An upload still in flight is not aborted; its result is
// discarded.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	var removed *entry
	for i, e := range m.entries {
		if e.asset.ID == id || e.asset.LocalID == id {
			removed = e
			m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	if removed == nil {
		return false
	}
	m.previews.Release(removed.asset.Preview)
	return true
}

// Clear releases every preview and empties the session.
func (m *Manager) Clear() {
	m.mu.Lock()
	entries := m.entries
	m.entries = nil
	m.mu.Unlock()

	for _, e := range entries {
		m.previews.Release(e.asset.Preview)
	}
}

func (m *Manager) Assets() []Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Asset, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.asset
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// IsUploading reports whether any attached asset is still uploading.
func (m *Manager) IsUploading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.asset.Status == StatusUploading {
			return true
		}
	}
	return false
}

// HasErrors reports whether any attached asset failed.
func (m *Manager) HasErrors() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.asset.Status == StatusError {
			return true
		}
	}
	return false
}

// MediaIDs returns the server ids of completed assets in attachment order.
func (m *Manager) MediaIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.entries))
	for _, e := range m.entries {
		if e.asset.Status == StatusCompleted {
			ids = append(ids, e.asset.MediaID)
		}
	}
	return ids
}

// Wait blocks until no upload started by this manager is in flight,
// including uploads of removed assets.
func (m *Manager) Wait(ctx context.Context) error {
	for {
		m.mu.Lock()
		if m.inflight == 0 {
			m.mu.Unlock()
			return nil
		}
		ch := m.settled
		m.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels every upload still in flight. Previews stay attached until
// Clear or Remove.
func (m *Manager) Close() {
	m.cancel()
}
