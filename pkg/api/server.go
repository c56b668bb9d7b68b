package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/tycoon/pkg/api/handlers"
	"github.com/cbodonnell/tycoon/pkg/api/middleware"
	authproviders "github.com/cbodonnell/tycoon/pkg/auth/providers"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/gorilla/mux"
)

const (
	DefaultLobbyRateLimit  = 5
	DefaultLobbyRateWindow = time.Hour
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port         int
	TLS          *TLSConfig
	AuthProvider authproviders.AuthProvider
	Lobbies      handlers.LobbyService
	// LobbyRecorder is optional
	LobbyRecorder    handlers.LobbyRecorder
	WebSocketHandler http.Handler
	LobbyRateLimit   int
	LobbyRateWindow  time.Duration
}

// NewAPIServer creates a new http.Server for the lobby endpoints and the websocket upgrade
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter builds the route table used by the APIServer.
func NewRouter(opts NewAPIServerOptions) *mux.Router {
	limit := opts.LobbyRateLimit
	if limit <= 0 {
		limit = DefaultLobbyRateLimit
	}
	window := opts.LobbyRateWindow
	if window <= 0 {
		window = DefaultLobbyRateWindow
	}
	rateLimiter := middleware.NewRateLimiter(limit, window)
	authMiddleware := middleware.NewAuthMiddleware(opts.AuthProvider)

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.Handle("/lobbies", rateLimiter.Middleware(authMiddleware(
		handlers.HandleCreateLobby(opts.Lobbies, opts.LobbyRecorder),
	))).Methods(http.MethodPost)
	r.Handle("/lobbies/{code}/admin", authMiddleware(middleware.RequireIdentity(
		handlers.HandleReserveAdmin(opts.Lobbies),
	))).Methods(http.MethodPut)
	r.Handle("/rooms/{code}", handlers.HandleGetRoom(opts.Lobbies)).Methods(http.MethodGet)
	r.Handle("/healthz", handlers.HandleHealth()).Methods(http.MethodGet)
	if opts.WebSocketHandler != nil {
		r.Handle("/ws", opts.WebSocketHandler)
	}
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		next.ServeHTTP(w, r)
	})
}

// Start runs the APIServer until it is stopped
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("API server error: %v", err)
	}
	return nil
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
