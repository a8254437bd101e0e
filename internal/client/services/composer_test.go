package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/media"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/client/session"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	err      error
	calls    int
	content  string
	mediaIDs []int64
}

func (p *fakePoster) CreatePost(_ context.Context, content string, mediaIDs []int64) (*models.Post, error) {
	p.calls++
	p.content = content
	p.mediaIDs = mediaIDs
	if p.err != nil {
		return nil, p.err
	}
	return &models.Post{ID: 1, Content: content, MediaIDs: mediaIDs}, nil
}

type fakeAttachments struct {
	assets   []session.Asset
	waitErr  error
	waited   int
	clears   int
	removed  []string
	uploaded []int64
	// waiting and release, when set, make Wait block until release closes.
	waiting chan struct{}
	release chan struct{}
}

func (f *fakeAttachments) Add(src media.Source) (string, bool) {
	f.assets = append(f.assets, session.Asset{ID: src.Name, LocalID: src.Name, Status: session.StatusUploading})
	return src.Name, true
}

func (f *fakeAttachments) Remove(id string) bool {
	f.removed = append(f.removed, id)
	return true
}

func (f *fakeAttachments) Clear()                  { f.clears++ }
func (f *fakeAttachments) Assets() []session.Asset { return f.assets }

func (f *fakeAttachments) IsUploading() bool {
	for _, a := range f.assets {
		if a.Status == session.StatusUploading {
			return true
		}
	}
	return false
}

func (f *fakeAttachments) HasErrors() bool {
	for _, a := range f.assets {
		if a.Status == session.StatusError {
			return true
		}
	}
	return false
}

func (f *fakeAttachments) MediaIDs() []int64 { return f.uploaded }

func (f *fakeAttachments) Wait(context.Context) error {
	f.waited++
	if f.release != nil {
		close(f.waiting)
		<-f.release
	}
	return f.waitErr
}

func TestComposer_SubmitPublishesUploadedMediaAndClearsOnce(t *testing.T) {
	poster := &fakePoster{}
	att := &fakeAttachments{
		assets:   []session.Asset{{ID: "501", Status: session.StatusCompleted}, {ID: "502", Status: session.StatusCompleted}},
		uploaded: []int64{501, 502},
	}
	c := NewComposer(poster, att)

	post, err := c.Submit(context.Background(), "look")
	require.NoError(t, err)
	assert.Equal(t, []int64{501, 502}, post.MediaIDs)
	assert.Equal(t, 1, att.waited)
	assert.Equal(t, 1, att.clears)

	_, err = c.Submit(context.Background(), "again")
	assert.ErrorIs(t, err, ErrComposerDone)
	c.Abandon()
	assert.Equal(t, 1, att.clears)
	assert.Equal(t, 1, poster.calls)

	_, ok := c.Attach(media.Source{Name: "late.png"})
	assert.False(t, ok)
}

func TestComposer_FailedAttachmentBlocksSubmit(t *testing.T) {
	poster := &fakePoster{}
	att := &fakeAttachments{assets: []session.Asset{{ID: "x", Status: session.StatusError}}}
	c := NewComposer(poster, att)

	_, err := c.Submit(context.Background(), "text")
	require.ErrorIs(t, err, ErrAttachmentFailed)
	assert.Zero(t, poster.calls)
	assert.Zero(t, att.clears)
}

func TestComposer_PendingUploadBlocksSubmit(t *testing.T) {
	att := &fakeAttachments{}
	c := NewComposer(&fakePoster{}, att)
	_, ok := c.Attach(media.Source{Name: "a.png", Data: bytes.NewReader(nil)})
	require.True(t, ok)

	_, err := c.Submit(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUploadsPending)
}

func TestComposer_WaitHonoursContext(t *testing.T) {
	att := &fakeAttachments{waitErr: context.DeadlineExceeded}
	c := NewComposer(&fakePoster{}, att)
	_, err := c.Submit(context.Background(), "text")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestComposer_EmptyPostIsRejected(t *testing.T) {
	poster := &fakePoster{}
	c := NewComposer(poster, &fakeAttachments{})
	_, err := c.Submit(context.Background(), "   ")
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Zero(t, poster.calls)
}

func TestComposer_PublishFailureKeepsAttachments(t *testing.T) {
	poster := &fakePoster{err: errors.New("boom")}
	att := &fakeAttachments{assets: []session.Asset{{ID: "501", Status: session.StatusCompleted}}, uploaded: []int64{501}}
	c := NewComposer(poster, att)

	_, err := c.Submit(context.Background(), "")
	require.Error(t, err)
	assert.Zero(t, att.clears)

	poster.err = nil
	_, err = c.Submit(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, att.clears)
}

func TestComposer_AbandonClearsOnce(t *testing.T) {
	att := &fakeAttachments{}
	c := NewComposer(&fakePoster{}, att)
	c.Abandon()
	c.Abandon()
	assert.Equal(t, 1, att.clears)
}

// The composer drives a real session manager end to end.
type instantUploader struct{ next int64 }

func (u *instantUploader) Upload(_ context.Context, _ media.Source, p media.ProgressObserver) (int64, error) {
	p.OnProgress(100)
	u.next++
	return 500 + u.next, nil
}

func TestComposer_WithSessionManager(t *testing.T) {
	previews := session.NewBlobStore()
	m := session.NewManager(&instantUploader{}, session.Options{Previews: previews})
	t.Cleanup(m.Close)
	poster := &fakePoster{}
	c := NewComposer(poster, m)

	_, ok := c.Attach(media.Source{Name: "a.png", ContentType: "image/png", Size: 3, Data: bytes.NewReader([]byte("abc"))})
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := c.Submit(ctx, "pic")
	require.NoError(t, err)
	assert.Equal(t, []int64{501}, poster.mediaIDs)
	assert.Zero(t, m.Len())
	assert.Zero(t, previews.Live())
}

func TestComposer_AbandonDoesNotWaitForUploads(t *testing.T) {
	poster := &fakePoster{}
	att := &fakeAttachments{
		assets:  []session.Asset{{ID: "501", Status: session.StatusCompleted}},
		waiting: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := NewComposer(poster, att)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), "slow")
		errc <- err
	}()
	<-att.waiting

	abandoned := make(chan struct{})
	go func() {
		c.Abandon()
		close(abandoned)
	}()
	select {
	case <-abandoned:
	case <-time.After(time.Second):
		t.Fatal("Abandon blocked behind the upload wait")
	}

	close(att.release)
	assert.ErrorIs(t, <-errc, ErrComposerDone)
	assert.Zero(t, poster.calls)
	assert.Equal(t, 1, att.clears)
}
