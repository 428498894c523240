// Package api is a local stand-in for the KuFlow REST API, used by the SDK
// tests and the kuflow-stub binary.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kuflow/kuflow-sdk-go/internal/api/handlers"
	apiMiddleware "github.com/kuflow/kuflow-sdk-go/internal/api/middleware"
	"github.com/kuflow/kuflow-sdk-go/internal/config"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// Options configures the stub server.
type Options struct {
	APIVersion   string
	AuthDisabled bool
	ClientID     string
	ClientSecret string
	TenantID     uuid.UUID
	JWTSecret    string
	TokenTTL     time.Duration
	Latency      time.Duration
	RateLimitRPS float64
	RateBurst    int
	EchoID       string
	// Users are seeded as USER principals.
	Users []string
	// KmsKeys are seeded with values derived from JWTSecret.
	KmsKeys []string
}

// OptionsFromConfig maps the stub section of the configuration.
func OptionsFromConfig(cfg *config.StubConfig) (Options, error) {
	opts := Options{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		Latency:      cfg.Latency,
		RateLimitRPS: cfg.RateLimit.RPS,
		RateBurst:    cfg.RateLimit.Burst,
		Users:        cfg.Users,
		KmsKeys:      cfg.KmsKeys,
	}
	if cfg.TenantID != "" {
		tenantID, err := uuid.Parse(cfg.TenantID)
		if err != nil {
			return Options{}, err
		}
		opts.TenantID = tenantID
	}
	return opts, nil
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	store   store.Store
	opts    Options
	handler *handlers.Handler
}

// NewServer creates a new HTTP server
func NewServer(st store.Store, opts Options) *Server {
	if opts.APIVersion == "" {
		opts.APIVersion = client.DefaultAPIVersion
	}

	s := &Server{
		router: chi.NewRouter(),
		store:  st,
		opts:   opts,
		handler: handlers.New(st, handlers.Config{
			ClientID:  opts.ClientID,
			TenantID:  opts.TenantID,
			JWTSecret: opts.JWTSecret,
			TokenTTL:  opts.TokenTTL,
			EchoID:    opts.EchoID,
		}),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(apiMiddleware.RequestLogger())
	s.router.Use(middleware.Recoverer)

	// Heartbeat endpoint for load balancers
	s.router.Use(middleware.Heartbeat("/health"))
}

func (s *Server) setupRoutes() {
	auth := apiMiddleware.Auth(&apiMiddleware.AuthConfig{
		Enabled:      !s.opts.AuthDisabled,
		ClientID:     s.opts.ClientID,
		ClientSecret: s.opts.ClientSecret,
		JWTSecret:    s.opts.JWTSecret,
	})
	h := s.handler

	s.router.Route("/v"+s.opts.APIVersion, func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(apiMiddleware.Latency(s.opts.Latency))
		r.Use(apiMiddleware.ClientRateLimit(s.opts.RateLimitRPS, s.opts.RateBurst))
		r.Use(auth)

		r.Post("/authentications", h.CreateAuthentication)
		r.Get("/echo", h.Echo)
		r.Get("/kms/keys/{keyId}", h.RetrieveKmsKey)
		r.Post("/workers", h.CreateOrUpdateWorker)

		r.Route("/principals", func(r chi.Router) {
			r.Get("/", h.FindPrincipals)
			r.Get("/{principalId}", h.RetrievePrincipal)
		})

		r.Route("/processes", func(r chi.Router) {
			r.Get("/", h.FindProcesses)
			r.Post("/", h.CreateProcess)
			r.Get("/{processId}", h.RetrieveProcess)
			r.Post("/{processId}/~actions/cancel", h.CancelProcess)
			r.Post("/{processId}/~actions/change-initiator", h.ChangeProcessInitiator)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.FindTasks)
			r.Post("/", h.CreateTask)
			r.Get("/{taskId}", h.RetrieveTask)
			r.Post("/{taskId}/~actions/claim", h.ClaimTask)
			r.Post("/{taskId}/~actions/assign", h.AssignTask)
			r.Post("/{taskId}/~actions/complete", h.CompleteTask)
			r.Post("/{taskId}/~actions/append-log", h.AppendTaskLog)
		})
	})

	// Admin routes
	s.router.Route("/admin", func(r chi.Router) {
		r.Use(auth)

		r.Get("/workers", h.ListWorkers)
		r.Get("/workers/{workerId}", h.GetWorker)
		r.Get("/stats", h.Stats)
	})

	s.router.Handle("/metrics", promhttp.Handler())
}

// Seed stores the application principal of the configured client, the
// configured users and the configured KMS keys.
func (s *Server) Seed(ctx context.Context) error {
	if err := s.handler.AddPrincipal(ctx, handlers.ApplicationPrincipal(s.opts.ClientID)); err != nil {
		return err
	}
	for _, email := range s.opts.Users {
		if err := s.handler.AddPrincipal(ctx, handlers.UserPrincipal(email)); err != nil {
			return err
		}
	}
	for _, keyID := range s.opts.KmsKeys {
		if _, err := s.handler.AddKmsKey(ctx, keyID); err != nil {
			return err
		}
	}
	return nil
}

// AddPrincipal stores an extra principal, optionally in groups.
func (s *Server) AddPrincipal(ctx context.Context, p client.Principal, groupIDs ...uuid.UUID) error {
	return s.handler.AddPrincipal(ctx, p, groupIDs...)
}

// TenantID is the tenant stamped on every resource.
func (s *Server) TenantID() uuid.UUID {
	return s.handler.TenantID()
}

// Router returns the chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}
