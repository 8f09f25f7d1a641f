// Package server runs the in-repo resume analysis backend over HTTP so the
// CLI can be tried without the production service. It handles graceful
// shutdown on SIGINT/SIGTERM and optionally seeds a demo account.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/resumecli/internal/fakebackend"
	"github.com/dmitrijs2005/resumecli/internal/logging"
	"github.com/dmitrijs2005/resumecli/internal/server/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *fakebackend.Server
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	backend := fakebackend.New(
		fakebackend.WithSecret([]byte(c.SecretKey)),
		fakebackend.WithTokenTTL(c.AccessTokenValidityDuration),
		fakebackend.WithBcryptCost(bcrypt.DefaultCost),
	)

	if c.DemoEmail != "" {
		if _, err := backend.SeedUser(c.DemoEmail, c.DemoPassword, nil); err != nil {
			return nil, fmt.Errorf("seed demo account: %w", err)
		}
	}

	return &App{config: c, logger: logger.With("module", "http_server"), backend: backend}, nil
}

// Handler returns the backend routes wrapped with request id and access
// logging.
func (app *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(app.accessLog)
	r.Mount("/", app.backend.Handler())
	return r
}

func (app *App) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		app.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run listens on the configured address until a signal arrives or ctx is
// cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	listen, err := net.Listen("tcp", app.config.EndpointAddr)
	if err != nil {
		return err
	}
	return app.serve(ctx, listen)
}

func (app *App) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
