// Package api is the gin front of the reference server: the /api/v1 REST
// contract the chirp client talks to, session and CSRF middleware, the
// local object store routes and /metrics.
package api

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/devserver/store"
	"github.com/dmitrijs2005/chirp/internal/devserver/storage"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Store   *store.Store
	Objects storage.ObjectStore
	// Local, when set, has its object routes mounted on the router.
	Local          *storage.LocalStore
	SecretKey      []byte
	SessionTTL     time.Duration
	MaxUploadBytes int64
	// SecureCookies marks session cookies Secure (HTTPS deployments).
	SecureCookies bool
	Registry      *prometheus.Registry
	Logger        logging.Logger
}

type Server struct {
	store          *store.Store
	objects        storage.ObjectStore
	local          *storage.LocalStore
	secret         []byte
	sessionTTL     time.Duration
	maxUploadBytes int64
	secureCookies  bool
	registry       *prometheus.Registry
	metrics        *metrics
	logger         logging.Logger
}

func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	return &Server{
		store:          opts.Store,
		objects:        opts.Objects,
		local:          opts.Local,
		secret:         opts.SecretKey,
		sessionTTL:     opts.SessionTTL,
		maxUploadBytes: opts.MaxUploadBytes,
		secureCookies:  opts.SecureCookies,
		registry:       reg,
		metrics:        m,
		logger:         logger.With("module", "api"),
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	if s.local != nil {
		s.local.Register(r)
	}

	v1 := r.Group(common.APIPrefix, s.csrf())

	v1.POST("/login", s.login)
	v1.POST("/users/signup", s.signup)

	authed := v1.Group("", s.authenticate())

	authed.POST("/logout", s.logout)
	authed.GET("/sessions", s.sessions)

	authed.GET("/users/me", s.me)
	authed.GET("/users/:id", s.userByID)
	authed.GET("/users/:id/posts", s.userPosts)
	authed.GET("/users/:id/replies", s.userReplies)
	authed.GET("/users/:id/follow-counts", s.userFollowCounts)
	authed.GET("/users/:id/media", s.userMedia)

	authed.GET("/posts", s.listPosts)
	authed.POST("/posts", s.createPost)
	authed.GET("/posts/:id", s.getPost)
	authed.PUT("/posts/:id", s.updatePost)
	authed.DELETE("/posts/:id", s.deletePost)
	authed.GET("/posts/:id/replies", s.listReplies)
	authed.POST("/posts/:id/replies", s.createReply)
	authed.POST("/posts/:id/quotes", s.createQuote)

	authed.PUT("/replies/:id", s.updateReply)
	authed.DELETE("/replies/:id", s.deletePost)
	authed.GET("/quotes", s.listQuotes)
	authed.GET("/quotes/:id", s.getQuote)
	authed.DELETE("/quotes/:id", s.deletePost)

	authed.GET("/likes", s.listLikes)
	authed.POST("/likes", s.createLike)
	authed.GET("/likes/:id", s.getLike)
	authed.DELETE("/likes/:id", s.deleteLike)

	authed.GET("/reposts", s.listReposts)
	authed.POST("/reposts", s.createRepost)
	authed.GET("/reposts/:id", s.getRepost)
	authed.DELETE("/reposts/:id", s.deleteRepost)

	authed.POST("/follows", s.follow)
	authed.DELETE("/follows", s.unfollow)
	authed.GET("/follows/followers", s.followers)
	authed.GET("/follows/followees", s.followees)
	authed.GET("/follows/check/:id", s.isFollowing)
	authed.GET("/follow_counts", s.followCounts)

	authed.GET("/profile/posts", s.myPosts)
	authed.GET("/profile/replies", s.myReplies)
	authed.GET("/profile/likes", s.myLikes)

	authed.GET("/timelines", s.timeline)

	authed.POST("/media/init", s.mediaInit)
	authed.POST("/media/uploaded", s.mediaUploaded)
	authed.GET("/media/:id", s.getMedia)
	authed.GET("/media/:id/presigned-url", s.mediaPresignedURL)
	authed.DELETE("/media/:id", s.deleteMedia)

	return r
}
