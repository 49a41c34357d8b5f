// Package httpapi exposes the counter, the user directory and the login
// flow as a JSON-over-HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fibkeeper/internal/logging"
	"github.com/dmitrijs2005/fibkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fibkeeper/internal/server/users"
	"lukechampine.com/uint128"
)

// Sequence hands out consecutive terms.
type Sequence interface {
	Next() (uint128.Uint128, error)
}

// Directory stores user records and renders them as JSON.
type Directory interface {
	List() ([]byte, error)
	Get(id string) ([]byte, error)
	Upsert(u users.User) error
}

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, creds auth.Credentials) (auth.Principal, error)
}

// Sessions binds principals to clients across requests.
type Sessions interface {
	Login(w http.ResponseWriter, r *http.Request, p auth.Principal) error
	Authenticate(r *http.Request) (auth.Principal, error)
	Logout(w http.ResponseWriter, r *http.Request) error
}

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address   string
	logger    logging.Logger
	sequence  Sequence
	directory Directory
	auth      Authenticator
	sessions  Sessions
}

func NewHTTPServer(a string, l logging.Logger, seq Sequence, dir Directory, au Authenticator, sess Sessions) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		sequence:  seq,
		directory: dir,
		auth:      au,
		sessions:  sess,
	}
}

// Handler returns the routed API with logging and panic recovery applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", s.Login)
	mux.HandleFunc("POST /logout", s.Logout)
	mux.HandleFunc("GET /hello", s.Hello)

	mux.HandleFunc("POST /next", s.requireSession(s.NextFibonacci))
	mux.HandleFunc("GET /users", s.requireSession(s.ListUsers))
	mux.HandleFunc("POST /users", s.requireSession(s.UpsertUser))
	mux.HandleFunc("GET /user/{id}", s.requireSession(s.GetUser))

	return s.logRequests(s.recoverPanics(mux))
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
