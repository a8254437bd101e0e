package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransferer_PutReturnsETagVerbatim(t *testing.T) {
	var (
		mu      sync.Mutex
		gotBody []byte
		gotLen  int64
		gotCT   string
		gotCSRF string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBody, gotLen, gotCT, gotCSRF = b, r.ContentLength, r.Header.Get("Content-Type"), r.Header.Get(common.CSRFHeaderName)
		mu.Unlock()
		w.Header().Set("ETag", `"abc1"`)
	}))
	defer srv.Close()

	var sent []int64
	etag, err := NewHTTPTransferer().Put(context.Background(), srv.URL+"/bucket/key?X-Amz-Signature=s",
		strings.NewReader("hello"), 5, "image/png", func(n int64) { sent = append(sent, n) })
	require.NoError(t, err)
	assert.Equal(t, `"abc1"`, etag)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "hello", string(gotBody))
	assert.Equal(t, int64(5), gotLen)
	assert.Equal(t, "image/png", gotCT)
	assert.Empty(t, gotCSRF)
	require.NotEmpty(t, sent)
	assert.Equal(t, int64(5), sent[len(sent)-1])
}

func TestHTTPTransferer_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPTransferer().Put(context.Background(), srv.URL, strings.NewReader("x"), 1, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestUpload_OverHTTP(t *testing.T) {
	var (
		mu     sync.Mutex
		stored = map[string][]byte{}
	)
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		stored[r.URL.Path] = b
		mu.Unlock()
		w.Header().Set("ETag", "etag-"+strings.TrimPrefix(r.URL.Path, "/p/"))
	}))
	defer storage.Close()

	resp := multiInit(11, 2)
	resp.PresignedURLParts[0].URL = storage.URL + "/p/1"
	resp.PresignedURLParts[1].URL = storage.URL + "/p/2"
	api := &fakeAPI{initResp: resp}

	src := sourceOf(ChunkSize+10, "video/mp4")
	id, err := NewEngine(api, Options{}).Upload(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, stored["/p/1"], int(ChunkSize))
	assert.Len(t, stored["/p/2"], 10)
	assert.Equal(t, "etag-1", api.uploadedReqs[0].Parts[0].ETag)
	assert.Equal(t, "etag-2", api.uploadedReqs[0].Parts[1].ETag)
}

func TestOpenFile_SniffsContentType(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	path := filepath.Join(dir, "photo.mp4")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	src, err := OpenFile(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "photo.mp4", src.Name)
	assert.Equal(t, "image/png", src.ContentType)
	assert.Equal(t, int64(len(png)), src.Size)
	assert.Equal(t, "IMAGE", string(src.Kind()))

	buf := make([]byte, 4)
	_, err = src.Data.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(png[:4], buf))
}

func TestOpenFile_Errors(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = OpenFile(t.TempDir())
	require.Error(t, err)
}

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("test_media", reg)
	require.NoError(t, err)

	o.RecordStage(StageInit, 0, nil)
	o.RecordStage(StageTransfer, 0, assert.AnError)
	o.RecordUpload(0, 2048, nil)
	o.RecordUpload(0, 4096, assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(o.errors.WithLabelValues("transfer")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.errors.WithLabelValues("init")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(o.uploadBytes))

	again, err := NewPrometheusObserver("test_media", reg)
	require.NoError(t, err, "registering twice reuses collectors")
	again.RecordUpload(0, 1, nil)
	assert.Equal(t, 2049.0, testutil.ToFloat64(o.uploadBytes))

	var nilObserver *PrometheusObserver
	assert.NotPanics(t, func() { nilObserver.RecordStage(StageConfirm, 0, nil) })
}
