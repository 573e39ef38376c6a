// ABOUTME: Development backend serving the municipal panel REST contract
// ABOUTME: chi router, JWT-protected routes, admin-only approvals and graceful shutdown

package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/gadibarra/panel-municipal/internal/config"
)

// Version is reported by the health endpoint.
var Version = "dev"

const shutdownTimeout = 5 * time.Second

// Server is an in-memory backend for local development and end-to-end tests.
type Server struct {
	cfg       config.DevConfig
	secret    []byte
	tokenTTL  time.Duration
	users     map[string]*user
	dummyHash []byte
	data      *store
	now       func() time.Time
	logger    *slog.Logger
	router    chi.Router

	loginLimiter *rateLimiter

	seedUsers []SeedUser
	hashCost  int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces the time source used for token issuance and checks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithUsers replaces the built-in logins.
func WithUsers(users ...SeedUser) Option {
	return func(s *Server) { s.seedUsers = users }
}

// WithHashCost sets the bcrypt cost for seeded passwords.
func WithHashCost(cost int) Option {
	return func(s *Server) { s.hashCost = cost }
}

// New builds a Server with seeded data.
func New(cfg config.DevConfig, opts ...Option) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("dev server jwt secret is required")
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}

	s := &Server{
		cfg:       cfg,
		secret:    []byte(cfg.JWTSecret),
		tokenTTL:  time.Duration(cfg.TokenTTL),
		data:      newStore(),
		now:       time.Now,
		logger:    slog.Default(),
		seedUsers: DefaultUsers,
		hashCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = time.Hour
	}
	if len(s.seedUsers) == 0 {
		return nil, errNoUsers
	}

	users, err := hashUsers(s.seedUsers, s.hashCost)
	if err != nil {
		return nil, err
	}
	s.users = users
	if s.dummyHash, err = bcrypt.GenerateFromPassword([]byte("unused"), s.hashCost); err != nil {
		return nil, fmt.Errorf("hashing placeholder password: %w", err)
	}

	if cfg.LoginLimit > 0 {
		s.loginLimiter = newRateLimiter(cfg.LoginLimit, time.Minute, s.now)
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.logRequest)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, "Recurso no encontrado", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, "Método no permitido", http.StatusMethodNotAllowed)
	})

	// Public
	r.Get("/", s.root)
	r.Head("/", s.root)
	r.Options("/", s.rootOptions)
	r.Get("/health", s.health)
	r.Post(s.cfg.LoginPath, s.limitLogin(s.Login))
	r.Post("/auth/logout", s.Logout)

	// Inline middleware keeps unmatched paths on the public 404 instead of a 401.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		s.proyectosResource().mount(r, "/api/proyectos")
		s.requerimientosResource().mount(r, "/api/requerimientos")
		s.feriasResource().mount(r, "/api/ferias")
		s.localesResource().mount(r, "/api/locales-comerciales")

		mensajes := s.mensajesResource()
		r.Get("/api/mensajes", mensajes.list)
		r.Post("/api/mensajes", mensajes.create)
		r.Get("/api/mensajes/{id}", mensajes.get)
		r.Patch("/api/mensajes/{id}", s.markMensaje)
		r.Delete("/api/mensajes/{id}", mensajes.remove)

		r.Get("/api/dashboard", s.dashboard)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(RoleAdmin))
			r.Get("/admin/pending", s.pending)
			r.Post("/admin/approve/{id}", s.approve)
			r.Post("/admin/reject/{id}", s.reject)
			r.Delete("/admin/reject/{id}", s.reject)
		})
	})

	return r
}

// Run serves on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dev server listening", "addr", s.cfg.Addr, "login_path", s.cfg.LoginPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Dev server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
