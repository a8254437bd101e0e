// Package devserver runs the reference implementation of the chirp REST
// contract: an in-memory backend with presigned media uploads, used to
// exercise the client end to end.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/chirp/internal/devserver/api"
	"github.com/dmitrijs2005/chirp/internal/devserver/config"
	"github.com/dmitrijs2005/chirp/internal/devserver/storage"
	"github.com/dmitrijs2005/chirp/internal/devserver/store"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	server *http.Server
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	gin.SetMode(gin.ReleaseMode)

	var (
		objects storage.ObjectStore
		local   *storage.LocalStore
	)
	switch c.StorageBackend {
	case config.StorageLocal:
		local = storage.NewLocalStore(c.PublicURL, []byte(c.SecretKey), c.PresignExpiry)
		objects = local
	case config.StorageS3:
		s3, err := storage.NewS3Store(ctx, storage.S3Options{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Expiry:       c.PresignExpiry,
		})
		if err != nil {
			return nil, fmt.Errorf("object store init error: %w", err)
		}
		objects = s3
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := api.NewServer(api.Options{
		Store:          store.New(),
		Objects:        objects,
		Local:          local,
		SecretKey:      []byte(c.SecretKey),
		SessionTTL:     c.SessionTTL,
		MaxUploadBytes: c.MaxUploadBytes,
		SecureCookies:  strings.HasPrefix(c.PublicURL, "https://"),
		Registry:       reg,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		logger: logger.With("module", "devserver"),
		server: &http.Server{
			Addr:              c.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then shuts the listener down
// gracefully.
func (app *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		return err
	}
	return app.serve(ctx, ln)
}

func (app *App) serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String(), "storage", app.config.StorageBackend)
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.server.Shutdown(sctx)
	})

	return g.Wait()
}
