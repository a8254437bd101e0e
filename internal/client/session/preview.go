package session

import (
	"sync"

	"github.com/dmitrijs2005/chirp/internal/client/media"
	"github.com/google/uuid"
)

// PreviewStore hands out display references for local files. Every
// reference acquired must be released exactly once.
type PreviewStore interface {
	Acquire(src media.Source) (string, error)
	Release(ref string)
}

// Preview is what a reference resolves to. It holds no file handle, so it
// stays valid after the upload closes the source.
type Preview struct {
	Name        string
	ContentType string
	Size        int64
}

// BlobStore issues in-memory "blob:<uuid>" references. Releasing an unknown
// or already released reference does nothing.
type BlobStore struct {
	mu   sync.Mutex
	refs map[string]Preview
}

func NewBlobStore() *BlobStore {
	return &BlobStore{refs: make(map[string]Preview)}
}

func (b *BlobStore) Acquire(src media.Source) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	ref := "blob:" + id.String()

	b.mu.Lock()
	b.refs[ref] = Preview{Name: src.Name, ContentType: src.ContentType, Size: src.Size}
	b.mu.Unlock()
	return ref, nil
}

func (b *BlobStore) Release(ref string) {
	b.mu.Lock()
	delete(b.refs, ref)
	b.mu.Unlock()
}

// Lookup resolves a live reference.
func (b *BlobStore) Lookup(ref string) (Preview, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.refs[ref]
	return p, ok
}

// Live reports how many references are outstanding.
func (b *BlobStore) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.refs)
}
