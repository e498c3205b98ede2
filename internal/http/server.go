package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"baketrack/internal/core"
	"baketrack/internal/log"
	"baketrack/internal/middleware/ratelimit"
	"baketrack/internal/middleware/security"
	"baketrack/internal/middleware/trace"
	appweb "baketrack/web"
)

// Dashboard is what the handlers need from the remote-data context.
type Dashboard interface {
	Snapshot(ctx context.Context) (core.Dashboard, error)
	Refresh(ctx context.Context) (core.Dashboard, error)
	SubmitTransaction(ctx context.Context, tx core.Transaction, isUpdate bool) (string, error)
	DeleteTransaction(ctx context.Context, id string) error
	SubmitProduct(ctx context.Context, p core.Product, isUpdate bool) (int64, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, p core.Profile) error
}

type Options struct {
	Addr               string
	CORSAllowedOrigins []string
	RateLimit          ratelimit.Config
	Logger             *log.Logger
	// Now is used for default form dates and export file names.
	Now func() time.Time
}

type appMetrics struct {
	transactionsSaved   atomic.Int64
	transactionsDeleted atomic.Int64
	exportsServed       atomic.Int64
	backendFailures     atomic.Int64
	started             time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	dash      Dashboard
	logger    *log.Logger

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
	corsOrigins []string

	now        func() time.Time
	appMetrics appMetrics

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires the router.
func NewServer(dash Dashboard, opts Options) (*Server, error) {
	if dash == nil {
		return nil, errors.New("dashboard is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		templates:   t,
		dash:        dash,
		logger:      logger,
		detector:    detector,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		tracer:      trace.NewMiddleware(detector.ExtractClientIP, opts.Logger),
		corsOrigins: opts.CORSAllowedOrigins,
		now:         opts.Now,
	}
	s.appMetrics.started = opts.Now()
	s.Handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(s.detector.Middleware(s.logger))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.ReadOnly, s.handleRateLimited))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/report", http.StatusFound)
	})
	r.Get("/input", s.handleInputPage)
	r.Get("/report", s.handleReportPage)
	r.Get("/products", s.handleProductsPage)
	r.Get("/settings", s.handleSettingsPage)

	r.Route("/ui", func(r chi.Router) {
		r.Get("/history", s.handleHistoryTable)
		r.Get("/report-table", s.handleReportTable)
	})

	r.Post("/transactions", s.handleSaveTransaction)
	r.Post("/transactions/{id}/delete", s.handleDeleteTransaction)
	r.Post("/products", s.handleSaveProduct)
	r.Post("/products/{id}/delete", s.handleDeleteProduct)
	r.Post("/settings/profile", s.handleUpdateProfile)
	r.Post("/settings/preferences", s.handleUpdatePreferences)
	r.Post("/refresh", s.handleRefresh)

	r.Get("/report/export.csv", s.handleExportCSV)
	r.Get("/report/export.xlsx", s.handleExportXLSX)

	r.Route("/api", func(r chi.Router) {
		r.Use(newCORS(s.corsOrigins).Handler)
		r.Get("/dashboard", s.handleAPIDashboard)
		r.Get("/report", s.handleAPIReport)
		r.Get("/transactions", s.handleAPIListTransactions)
		r.Post("/transactions", s.handleAPISaveTransaction)
		r.Delete("/transactions/{id}", s.handleAPIDeleteTransaction)
	})

	return r
}

// newCORS allows the configured origins to call the JSON API.
func newCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", trace.HeaderRequestID},
		ExposedHeaders:   []string{trace.HeaderRequestID, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			TriggerErrorNotification("Too many requests, please slow down").
			Write(w)
		return
	}
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown stops the rate limiter and then the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
