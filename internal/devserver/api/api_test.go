package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/client/media"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/dmitrijs2005/chirp/internal/devserver/store"
	"github.com/dmitrijs2005/chirp/internal/devserver/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New()
	// The server URL is only known once it listens, so route through a
	// handler that is swapped in afterwards.
	var h http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { h.ServeHTTP(w, r) }))
	t.Cleanup(srv.Close)

	local := storage.NewLocalStore(srv.URL, []byte("secret"), time.Minute)
	s, err := NewServer(Options{
		Store:          st,
		Objects:        local,
		Local:          local,
		SecretKey:      []byte("secret"),
		SessionTTL:     time.Hour,
		MaxUploadBytes: 64 << 20,
		Registry:       prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	h = s.Handler()
	return &testEnv{srv: srv, store: st}
}

// login signs username up and returns an API client holding its session.
func (e *testEnv) login(t *testing.T, username string) *client.API {
	t.Helper()
	ctx := context.Background()
	c, err := client.New(client.Options{BaseURL: e.srv.URL})
	require.NoError(t, err)
	api := client.NewAPI(c)

	_, err = api.Users.Signup(ctx, models.UserSignupRequest{Username: username, Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, api.Auth.Login(ctx, username, "secret"))
	return api
}

func TestAuth_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	anon, err := client.New(client.Options{BaseURL: env.srv.URL})
	require.NoError(t, err)
	_, err = client.NewAPI(anon).Users.Me(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	api := env.login(t, "alice")
	me, err := api.Users.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	sessions, err := api.Auth.Sessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	err = api.Auth.Login(ctx, "alice", "wrong")
	status, ok := client.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, status)

	require.NoError(t, api.Auth.Logout(ctx))
	_, err = api.Users.Me(ctx)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCSRF_MutationWithoutHeaderIsRejected(t *testing.T) {
	env := newTestEnv(t)
	base := env.srv.URL + common.APIPrefix

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := &http.Client{Jar: jar}

	resp, err := hc.Post(base+"/users/signup", "application/json", strings.NewReader(`{"username":"alice","password":"secret"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = hc.PostForm(base+"/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = hc.Post(base+"/posts", "application/json", strings.NewReader(`{"content":"x"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	u, _ := url.Parse(env.srv.URL)
	var token string
	for _, c := range jar.Cookies(u) {
		if c.Name == common.CSRFCookieName {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	req, err := http.NewRequest(http.MethodPost, base+"/posts", strings.NewReader(`{"content":"x"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.CSRFHeaderName, token)
	resp, err = hc.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestLikeAndRepost(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.login(t, "alice")
	bob := env.login(t, "bob")

	p, err := alice.Posts.Create(ctx, models.PostCreateRequest{Content: "hello"})
	require.NoError(t, err)

	like, err := bob.Likes.Create(ctx, p.ID)
	require.NoError(t, err)
	_, err = bob.Likes.Create(ctx, p.ID)
	status, _ := client.StatusOf(err)
	assert.Equal(t, http.StatusConflict, status)

	seen, err := bob.Posts.ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, seen.LikeCount)
	assert.True(t, seen.IsLikedByMe)
	assert.Equal(t, like.ID, *seen.LikeIDByMe)

	err = alice.Likes.Delete(ctx, like.ID)
	status, _ = client.StatusOf(err)
	assert.Equal(t, http.StatusForbidden, status)

	require.NoError(t, bob.Likes.Delete(ctx, like.ID))

	repost, err := bob.Reposts.Create(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, repost.RepostID)

	liked, err := bob.Profile.MyLikes(ctx)
	require.NoError(t, err)
	assert.Empty(t, liked)

	_, err = bob.Follows.Follow(ctx, p.UserID)
	require.NoError(t, err)
	tl, err := bob.Timeline.Get(ctx, 0)
	require.NoError(t, err)
	require.Len(t, tl, 1)
	assert.True(t, tl[0].IsRepostedByMe)
}

func TestMediaUpload_SinglePart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	api := env.login(t, "alice")

	data := bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 256)
	engine := media.NewEngine(api.Media, media.Options{})

	id, err := engine.Upload(ctx, media.Source{Name: "a.png", ContentType: "image/png", Size: int64(len(data)), Data: bytes.NewReader(data)}, nil)
	require.NoError(t, err)

	m, err := api.Media.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.MediaStatusCompleted, m.Status)
	assert.Equal(t, models.MediaTypeImage, m.MediaType)

	p, err := api.Posts.Create(ctx, models.PostCreateRequest{Content: "pic", MediaIDs: []int64{id}})
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, p.MediaIDs)

	u, err := api.Media.PresignedURL(ctx, id)
	require.NoError(t, err)
	resp, err := http.Get(u.PresignedURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, data, got)
}

func TestMediaUpload_MultiPart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	api := env.login(t, "alice")

	size := common.ChunkSize + 1024
	data := bytes.Repeat([]byte("v"), int(size))

	init, err := api.Media.Init(ctx, models.MediaInitRequest{MediaType: models.MediaTypeVideo, FileSize: size})
	require.NoError(t, err)
	require.Empty(t, init.PresignedURL)
	require.Len(t, init.PresignedURLParts, 2)

	engine := media.NewEngine(api.Media, media.Options{})
	var last int
	id, err := engine.Upload(ctx, media.Source{Name: "v.mp4", ContentType: "video/mp4", Size: size, Data: bytes.NewReader(data)},
		media.ProgressFunc(func(p int) { last = p }))
	require.NoError(t, err)
	assert.Equal(t, 100, last)

	m, err := api.Media.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.MediaStatusCompleted, m.Status)
}

func TestMediaUploaded_RejectsBadConfirmations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	api := env.login(t, "alice")

	t.Run("single part never transferred", func(t *testing.T) {
		init, err := api.Media.Init(ctx, models.MediaInitRequest{MediaType: models.MediaTypeImage, FileSize: 10})
		require.NoError(t, err)
		_, err = api.Media.Uploaded(ctx, models.MediaUploadedRequest{MediaID: init.ID})
		status, _ := client.StatusOf(err)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("multi part misordered", func(t *testing.T) {
		size := 2*common.ChunkSize + 1
		init, err := api.Media.Init(ctx, models.MediaInitRequest{MediaType: models.MediaTypeVideo, FileSize: size})
		require.NoError(t, err)
		require.Len(t, init.PresignedURLParts, 3)

		parts := []models.MediaUploadPart{{PartNumber: 2, ETag: "b"}, {PartNumber: 1, ETag: "a"}, {PartNumber: 3, ETag: "c"}}
		_, err = api.Media.Uploaded(ctx, models.MediaUploadedRequest{MediaID: init.ID, Parts: parts})
		status, _ := client.StatusOf(err)
		assert.Equal(t, http.StatusBadRequest, status)

		m, err := api.Media.ByID(ctx, init.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MediaStatusFailed, m.Status)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := api.Media.Init(ctx, models.MediaInitRequest{MediaType: models.MediaTypeVideo, FileSize: 65 << 20})
		status, _ := client.StatusOf(err)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := api.Media.Init(ctx, models.MediaInitRequest{MediaType: "AUDIO", FileSize: 1})
		status, _ := client.StatusOf(err)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "alice")

	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "chirp_api_requests_total")
}

func TestPartCount(t *testing.T) {
	assert.Equal(t, 1, partCount(1))
	assert.Equal(t, 1, partCount(common.ChunkSize))
	assert.Equal(t, 3, partCount(20<<20))
}

func TestMarkFailed_LogsRejectedStatusWrite(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New("json", "debug", &buf)
	require.NoError(t, err)

	st := store.New()
	s, err := NewServer(Options{Store: st, Logger: logger})
	require.NoError(t, err)

	ctx := context.Background()
	m, err := st.CreateMedia(ctx, 1, models.MediaTypeImage, 3, "k")
	require.NoError(t, err)
	_, err = st.SetMediaStatus(ctx, m.ID, models.MediaStatusCompleted)
	require.NoError(t, err)

	s.markFailed(ctx, m.ID)

	assert.Contains(t, buf.String(), "media status update failed")
	got, err := st.Media(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MediaStatusCompleted, got.Status)
}
