package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"alumni/internal/aggregate"
	"alumni/internal/cache"
	"alumni/internal/log"
	"alumni/internal/middleware/security"
	"alumni/internal/middleware/trace"
	"alumni/internal/services"
	appweb "alumni/web"
)

const defaultRequestTimeout = 7 * time.Second

// Options carries the optional collaborators of a Server
type Options struct {
	Logger *log.Logger
	// CacheManager is stopped on Shutdown when set
	CacheManager *cache.Manager
	// Ready reports whether the record source is still reachable
	Ready          func(ctx context.Context) error
	RequestTimeout time.Duration
}

// Server serves the dashboard pages, HTMX partials and JSON view
type Server struct {
	http.Server
	templates      *template.Template
	svc            *services.DashboardService
	filters        aggregate.FilterOptions
	logger         *log.Logger
	tracer         *trace.Middleware
	cacheManager   *cache.Manager
	ready          func(ctx context.Context) error
	requestTimeout time.Duration
	startedAt      time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc *services.DashboardService, opts Options) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("dashboard service is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:      t,
		svc:            svc,
		filters:        svc.FilterOptions(),
		logger:         logger.WithComponent(log.ComponentHTTP),
		tracer:         trace.NewMiddleware(logger, nil),
		cacheManager:   opts.CacheManager,
		ready:          opts.Ready,
		requestTimeout: timeout,
		startedAt:      time.Now(),
	}

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DashboardHeadersConfig()))

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount embedded static FS: %w", err)
	}
	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	r.Get("/", s.handleDashboard)

	r.Route("/ui", func(r chi.Router) {
		r.Get("/courses", s.handleCourseChart)
		r.Get("/universities", s.handleUniversityChart)
		r.Get("/top-courses", s.handleTopCourses)
		r.Get("/top-universities", s.handleTopUniversities)
	})

	r.Get("/api/view", s.handleAPIView)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("page not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError("GET").Write(w)
	})

	return r, nil
}

// Shutdown stops the cache sweeper and gracefully shuts down the server.
// Only the first call has effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.InfoContext(ctx, "HTTP server stopped", log.FieldOperation, log.OpShutdown)
	})

	return shutdownErr
}
