// Package server wires the fibkeeper components together and runs the HTTP
// API, the optional gRPC health endpoint and the session sweeper until the
// process is signalled to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fibkeeper/internal/logging"
	"github.com/dmitrijs2005/fibkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fibkeeper/internal/server/config"
	"github.com/dmitrijs2005/fibkeeper/internal/server/fibonacci"
	"github.com/dmitrijs2005/fibkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/fibkeeper/internal/server/session"
	"github.com/dmitrijs2005/fibkeeper/internal/server/users"
	"golang.org/x/crypto/bcrypt"

	gs "github.com/dmitrijs2005/fibkeeper/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	counter   *fibonacci.Counter
	directory *users.Directory
	backend   *auth.Backend
	sessions  *session.Manager
}

// passwordHash returns the configured bcrypt hash, hashing the plaintext
// password when no hash was given.
func passwordHash(c *config.Config) ([]byte, error) {
	if c.AuthPasswordHash != "" {
		return []byte(c.AuthPasswordHash), nil
	}
	if c.AuthPassword == "" {
		return nil, errors.New("no password or password hash configured")
	}
	return cryptox.HashPassword([]byte(c.AuthPassword), bcrypt.DefaultCost)
}

func NewApp(c *config.Config) (*App, error) {
	return newApp(c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func newApp(c *config.Config, logger logging.Logger) (*App, error) {
	if c.SessionValidityDuration <= 0 {
		return nil, fmt.Errorf("session init error: validity must be positive, got %s", c.SessionValidityDuration)
	}

	if c.SecretKey == "" {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("secret key init error: %w", err)
		}
		c.SecretKey = key
		logger.Warn(context.Background(), "No secret key configured, sessions will not survive a restart")
	}

	hash, err := passwordHash(c)
	if err != nil {
		return nil, fmt.Errorf("auth init error: %w", err)
	}

	backend, err := auth.NewBackend(c.AuthUsername, hash, []byte(c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("auth init error: %w", err)
	}

	sessions := session.NewManager(session.NewStore(), backend, c.SecretKey, c.SessionValidityDuration, c.CookieSecure)

	return &App{
		config:    c,
		logger:    logger,
		counter:   fibonacci.NewCounter(),
		directory: users.NewDirectory(),
		backend:   backend,
		sessions:  sessions,
	}, nil
}

// withSignals returns a context cancelled on SIGINT, SIGTERM or SIGQUIT.
// Calling stop releases the signal registration.
func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.counter, app.directory, app.backend, app.sessions)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, stop := withSignals(ctx)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.RunCleanup(ctx, app.config.SessionCleanupInterval, app.logger.With("module", "sessions"))
	}()

	wg.Wait()

	n, _ := app.directory.Len()
	app.logger.Info(context.Background(), "App stopped", "users", n)
}
