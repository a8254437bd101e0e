package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	csrf        string
	body        string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, nav Navigator) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recordedRequest{
			method:      r.Method,
			path:        r.URL.RequestURI(),
			contentType: r.Header.Get("Content-Type"),
			csrf:        r.Header.Get(common.CSRFHeaderName),
			body:        string(b),
		})
		rec.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, Navigator: nav})
	require.NoError(t, err)
	return c, rec
}

func setCSRFCookie(t *testing.T, c *Client, value string) {
	t.Helper()
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: common.CSRFCookieName, Value: value, Path: "/"}})
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "/api"})
	require.Error(t, err)
}

func TestNew_KeepsProvidedJar(t *testing.T) {
	hc := &http.Client{}
	c, err := New(Options{BaseURL: "http://localhost:8080/", HTTPClient: hc})
	require.NoError(t, err)
	require.NotNil(t, hc.Jar)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
}

func TestRequest_SendsCSRFHeaderFromCookie(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1,"postId":42}`)
	}, nil)
	setCSRFCookie(t, c, url.QueryEscape("tok/en=="))

	like, err := Post[models.Like](context.Background(), c, common.APIPrefix+"/likes", models.LikeCreateRequest{PostID: 42})
	require.NoError(t, err)
	require.NotNil(t, like)
	assert.Equal(t, int64(1), like.ID)

	require.Len(t, seen.all(), 1)
	got := seen.all()[0]
	assert.Equal(t, "tok/en==", got.csrf)
	assert.Equal(t, "application/json", got.contentType)
	assert.JSONEq(t, `{"postId":42}`, got.body)
}

func TestRequest_OmitsCSRFHeaderWithoutCookie(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, nil)

	_, err := c.Request(context.Background(), http.MethodGet, common.APIPrefix+"/posts", nil)
	require.NoError(t, err)
	assert.Empty(t, seen.all()[0].csrf)
}

func TestRequest_NoValueResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"204", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }},
		{"empty 200", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }},
		{"whitespace 200", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "  \n") }},
		{"non-json 200", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "<html>ok</html>") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler, nil)
			raw, err := c.Request(context.Background(), http.MethodDelete, common.APIPrefix+"/posts/1", nil)
			require.NoError(t, err)
			assert.Nil(t, raw)

			post, err := Get[models.Post](context.Background(), c, common.APIPrefix+"/posts/1")
			require.NoError(t, err)
			assert.Nil(t, post)
		})
	}
}

func TestRequest_ErrorMessageFromBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"not allowed","code":"FORBIDDEN"}`)
	}, nil)

	_, err := c.Request(context.Background(), http.MethodPost, common.APIPrefix+"/likes", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "not allowed", apiErr.Message)
	assert.Equal(t, "FORBIDDEN", apiErr.Details["code"])
}

func TestRequest_ErrorMessageFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}, nil)

	_, err := c.Request(context.Background(), http.MethodGet, common.APIPrefix+"/posts", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Request failed", apiErr.Message)
	assert.Nil(t, apiErr.Details)
}

func TestRequest_NotFoundMatchesSentinel(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, nil)

	_, err := NewAPI(c).Posts.ByID(context.Background(), 9)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.False(t, errors.Is(err, common.ErrUnauthorized))
}

func TestRequest_SessionExpiryRedirects(t *testing.T) {
	unauthorized := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"expired"}`)
	}

	tests := []struct {
		name         string
		current      string
		endpoint     string
		wantRedirect bool
	}{
		{"me from feed", "/feed", common.SessionEndpoint, true},
		{"post from feed", "/feed", common.APIPrefix + "/posts/42", false},
		{"me on login", common.LoginPath, common.SessionEndpoint, false},
		{"me on signup", common.SignupPath, common.SessionEndpoint, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var redirects []string
			nav := NewPathNavigator(tt.current, func(p string) { redirects = append(redirects, p) })
			c, _ := newTestClient(t, unauthorized, nav)

			_, err := c.Request(context.Background(), http.MethodGet, tt.endpoint, nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
			assert.Equal(t, "Unauthorized", apiErr.Message)
			require.ErrorIs(t, err, common.ErrUnauthorized)

			if tt.wantRedirect {
				assert.Equal(t, []string{common.LoginPath}, redirects)
				assert.Equal(t, common.LoginPath, nav.CurrentPath())
			} else {
				assert.Empty(t, redirects)
				assert.Equal(t, tt.current, nav.CurrentPath())
			}
		})
	}
}

func TestRequest_NetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base})
	require.NoError(t, err)

	_, err = c.Request(context.Background(), http.MethodGet, common.APIPrefix+"/posts", nil)
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestRequest_CancelledContextPassesThrough(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Request(ctx, http.MethodGet, common.APIPrefix+"/posts", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLogin_PostsFormAndStoresCookies(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: common.SessionCookieName, Value: "jwt", Path: "/", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: common.CSRFCookieName, Value: "csrf-1", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}, nil)
	api := NewAPI(c)

	require.NoError(t, api.Auth.Login(context.Background(), "alice", "secret"))
	_, err := c.Request(context.Background(), http.MethodPost, common.APIPrefix+"/logout", nil)
	require.NoError(t, err)

	require.Len(t, seen.all(), 2)
	login := seen.all()[0]
	assert.Equal(t, common.APIPrefix+"/login", login.path)
	assert.Equal(t, "application/x-www-form-urlencoded", login.contentType)
	form, err := url.ParseQuery(login.body)
	require.NoError(t, err)
	assert.Equal(t, "alice", form.Get("username"))
	assert.Equal(t, "secret", form.Get("password"))

	assert.Equal(t, "csrf-1", seen.all()[1].csrf)
}

func TestServices_Paths(t *testing.T) {
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)
	api := NewAPI(c)
	ctx := context.Background()

	_, _ = api.Timeline.Get(ctx, 0)
	_ = api.Follows.Unfollow(ctx, 7)
	_, _ = api.Follows.Counts(ctx)
	_, _ = api.Media.UserMedia(ctx, 3)
	_, _ = api.Posts.Create(ctx, models.PostCreateRequest{Content: "hi"})

	require.Len(t, seen.all(), 5)
	assert.Equal(t, common.APIPrefix+"/timelines?limit=50", seen.all()[0].path)
	assert.Equal(t, http.MethodDelete, seen.all()[1].method)
	assert.JSONEq(t, `{"followeeId":7}`, seen.all()[1].body)
	assert.Equal(t, common.APIPrefix+"/follow_counts", seen.all()[2].path)
	assert.Equal(t, common.APIPrefix+"/users/3/media", seen.all()[3].path)
	assert.JSONEq(t, `{"content":"hi","mediaIds":[]}`, seen.all()[4].body)
}

func TestRequired_EmptyResponseIsError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	_, err := NewAPI(c).Media.Init(context.Background(), models.MediaInitRequest{MediaType: models.MediaTypeImage, FileSize: 1})
	require.ErrorIs(t, err, errNoValue)
}
