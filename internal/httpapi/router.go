package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	dnaAuth "github.com/MrEthical07/dnaAuth"
	"github.com/MrEthical07/dnaAuth/internal/records"
	dnamw "github.com/MrEthical07/dnaAuth/middleware"
)

// Options wires the router's collaborators.
type Options struct {
	Engine  *dnaAuth.Engine
	Records *records.Store
	Logger  *slog.Logger

	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	CORSOrigins    []string
	RequestTimeout time.Duration
	AccessLog      bool
}

type api struct {
	engine  *dnaAuth.Engine
	records *records.Store
	logger  *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	a := &api{engine: opts.Engine, records: opts.Records, logger: logger}

	r := chi.NewRouter()

	if opts.AccessLog {
		r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
			NoColor: true,
		}))
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders: []string{
			dnamw.HeaderRole,
			dnamw.HeaderTrustScore,
			dnamw.HeaderAuth,
			dnamw.HeaderInstitution,
			dnamw.HeaderInstitutionType,
		},
		MaxAge: 300,
	}))
	r.Use(dnamw.Authenticate(opts.Engine, logger))

	r.Get("/health", a.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", a.login)
			r.Post("/logout", a.logout)
			r.Get("/status", a.status)
		})

		write := dnamw.RequirePermission(opts.Engine, "write")
		del := dnamw.RequirePermission(opts.Engine, "delete")

		r.Route("/students", func(r chi.Router) {
			r.Get("/", a.listStudents)
			r.With(write).Post("/", a.createStudent)
			r.With(write).Put("/{id}", a.updateStudent)
			r.With(del).Delete("/{id}", a.deleteStudent)
		})
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", a.listCourses)
			r.With(write).Post("/", a.createCourse)
			r.With(write).Put("/{id}", a.updateCourse)
			r.With(del).Delete("/{id}", a.deleteCourse)
		})
		r.Route("/certificates", func(r chi.Router) {
			r.Get("/", a.listCertificates)
			r.Get("/{id}", a.getCertificate)
			r.With(write).Post("/", a.issueCertificate)
		})
		r.Get("/stats", a.stats)
	})

	return r
}
