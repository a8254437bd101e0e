package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/chirp/internal/client/cache"
	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/client/config"
	"github.com/dmitrijs2005/chirp/internal/client/media"
	"github.com/dmitrijs2005/chirp/internal/client/notify"
	"github.com/dmitrijs2005/chirp/internal/client/services"
	"github.com/dmitrijs2005/chirp/internal/client/session"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Screen paths the CLI reports to the gateway navigator.
const (
	pathLogin  = common.LoginPath
	pathSignup = common.SignupPath
	pathFeed   = "/feed"
)

type App struct {
	config   *config.Config
	api      *client.API
	cache    *cache.QueryCache
	svc      *services.Services
	engine   *media.Engine
	nav      *client.PathNavigator
	notifier notify.Notifier
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	mu       sync.Mutex
	userName string
	composer *services.Composer
	draft    *session.Manager
	// retired drafts may still have uploads in flight; they are only
	// cancelled when the app closes.
	retired []*session.Manager
}

// NewApp wires the gateway, cache, services and upload engine from cfg.
// Upload metrics are registered on reg; nil selects the default registry.
func NewApp(cfg *config.Config, in io.Reader, out io.Writer, logger logging.Logger, reg prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	a := &App{
		config: cfg,
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
	}
	a.notifier = notify.NewConsole(out, logger)
	a.nav = client.NewPathNavigator(pathLogin, func(path string) {
		a.setUser("")
		fmt.Fprintf(a.out, "Session expired, redirected to %s. Please log in.\n", path)
	})

	c, err := client.New(client.Options{BaseURL: cfg.BaseURL, Navigator: a.nav, Logger: logger})
	if err != nil {
		return nil, err
	}
	a.api = client.NewAPI(c)

	a.cache, err = cache.New(cache.Options{
		StaleTime:  cfg.StaleTime,
		GCTime:     cfg.GCTime,
		MaxEntries: cfg.CacheSize,
		Retry:      client.RetryUpTo(cfg.MaxReadRetries),
		Notifier:   a.notifier,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	observer, err := media.NewPrometheusObserver(cfg.MetricsNamespace, reg)
	if err != nil {
		return nil, err
	}
	a.engine = media.NewEngine(a.api.Media, media.Options{Observer: observer, Logger: logger})

	a.svc = services.New(services.Deps{
		API:           a.api,
		Cache:         a.cache,
		Notifier:      a.notifier,
		Logger:        logger,
		TimelineLimit: cfg.TimelineLimit,
	})
	return a, nil
}

// Run starts the REPL and blocks until the user exits or in is exhausted.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	fmt.Fprintln(a.out, "Welcome to chirp (type 'help' for commands)")
	a.tryResumeSession(ctx)
	runREPL(ctx, a, a.status, a.reader)
}

// Close abandons the current draft and stops background work.
func (a *App) Close() {
	a.mu.Lock()
	composer, draft, retired := a.composer, a.draft, a.retired
	a.composer, a.draft, a.retired = nil, nil, nil
	a.mu.Unlock()
	if composer != nil {
		composer.Abandon()
		draft.Close()
	}
	for _, m := range retired {
		m.Close()
	}
	a.cache.Close()
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.userName
	if a.draft != nil {
		if n := a.draft.Len(); n > 0 {
			s = strings.TrimSpace(fmt.Sprintf("%s +%d", s, n))
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// currentComposer returns the open draft, starting one when needed.
func (a *App) currentComposer() *services.Composer {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.composer == nil {
		a.draft = session.NewManager(a.engine, session.Options{
			MaxAttachments: a.config.MaxAttachments,
			UploadTimeout:  a.config.UploadTimeout,
			Notifier:       a.notifier,
			Logger:         a.logger,
		})
		a.composer = services.NewComposer(a.svc.Posts, a.draft)
	}
	return a.composer
}

// finishDraft forgets the draft after it was submitted or abandoned. Its
// uploads are left to finish; their results are discarded.
func (a *App) finishDraft() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.draft != nil {
		a.retired = append(a.retired, a.draft)
	}
	a.composer, a.draft = nil, nil
}
