package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"todo-app/internal/auth"
	"todo-app/internal/errs"
	"todo-app/internal/model"
	"todo-app/internal/repository"
	"todo-app/internal/service"
)

type TaskService interface {
	List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.TaskDetails, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*model.TaskDetails, error)
	Create(ctx context.Context, userID uuid.UUID, input service.TaskInput) (*model.TaskDetails, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, input service.TaskInput) (*model.TaskDetails, error)
	SetStatus(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*model.TaskDetails, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type TagService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Tag, error)
	Create(ctx context.Context, userID uuid.UUID, input service.TagInput) (*model.Tag, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
}

type ProfileService interface {
	Get(ctx context.Context, claims auth.Claims) (*model.User, error)
	Create(ctx context.Context, claims auth.Claims, input service.ProfileInput) (*model.User, error)
	Update(ctx context.Context, claims auth.Claims, input service.ProfileInput) (*model.User, error)
}

// UserResolver maps verified claims to an internal user id.
type UserResolver interface {
	Resolve(ctx context.Context, claims auth.Claims) (uuid.UUID, error)
}

// Config wires the HTTP surface to its collaborators.
type Config struct {
	Log            *zap.Logger
	Verifier       TokenVerifier
	Resolver       UserResolver
	Tasks          TaskService
	Tags           TagService
	Categories     CategoryService
	Profiles       ProfileService
	AllowedOrigins []string

	// Registry receives the HTTP metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry

	// Health reports whether the backing store is reachable.
	Health func(ctx context.Context) error
}

type handler struct {
	api        *API
	resolver   UserResolver
	tasks      TaskService
	tags       TagService
	categories CategoryService
	profiles   ProfileService
	health     func(ctx context.Context) error
}

// NewHandler builds the router for the whole service.
func NewHandler(cfg Config) http.Handler {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	api := NewAPI(cfg.Log)
	h := &handler{
		api:        api,
		resolver:   cfg.Resolver,
		tasks:      cfg.Tasks,
		tags:       cfg.Tags,
		categories: cfg.Categories,
		profiles:   cfg.Profiles,
		health:     cfg.Health,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		Metrics(newMetrics(cfg.Registry)),
		AccessLog(cfg.Log.Named("http")),
		CORS(cfg.AllowedOrigins),
	)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(api, cfg.Verifier))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.handleListTasks)
			r.Post("/", h.handleCreateTask)
			r.Get("/{id}", h.handleGetTask)
			r.Put("/{id}", h.handleUpdateTask)
			r.Patch("/{id}/status", h.handleSetTaskStatus)
			r.Delete("/{id}", h.handleDeleteTask)
		})

		r.Get("/categories", h.handleListCategories)

		r.Get("/tags", h.handleListTags)
		r.Post("/tags", h.handleCreateTag)

		r.Get("/users/profile", h.handleGetProfile)
		r.Post("/users/profile", h.handleCreateProfile)
		r.Put("/users/profile", h.handleUpdateProfile)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Err(w, r, errs.NotFound("api.route", "resource not found"))
	})

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.api.log.Warn("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
