package main

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/i18n"
	"github.com/diewo77/go-lessons/internal/config"
	"github.com/diewo77/go-lessons/internal/handlers"
	"github.com/diewo77/go-lessons/internal/metrics"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/policy"
	"github.com/diewo77/go-lessons/internal/services"
	"github.com/diewo77/go-lessons/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	router   chi.Router
	cfg      *config.Config
	authGate *policy.AuthGate
	authn    *auth.Authenticator
	registry *prometheus.Registry

	authH        *handlers.AuthHandler
	profileH     *handlers.ProfileHandler
	directoryH   *handlers.DirectoryHandler
	slotH        *handlers.SlotHandler
	appointmentH *handlers.AppointmentHandler
	adminH       *handlers.AdminHandler
}

// NewApp builds the services and the router. rdb may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	ag := policy.NewAuthGate(db, cfg.Auth.RoleCacheTTL, rdb)
	authn := auth.New(auth.Options{
		SessionSecret: cfg.Auth.SessionSecret,
		TokenSecret:   cfg.Auth.JWTSecret,
		Issuer:        cfg.Auth.JWTIssuer,
		TokenTTL:      cfg.Auth.TokenTTL,
		SecureCookie:  !cfg.App.Dev,
	}, ag.Lookup)

	opts := services.OptionsFromConfig(cfg, rec)
	store := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.PublicPrefix)

	accounts := services.NewAccountService(db)
	profiles := services.NewProfileService(db, ag.Gate, opts)
	slots := services.NewSlotService(db, ag.Gate, opts)
	appointments := services.NewAppointmentService(db, ag.Gate, opts)
	verification := services.NewVerificationService(db, ag.Gate, opts)
	documents := services.NewDocumentService(ag.Gate, store, opts)

	app := &App{
		router:       chi.NewRouter(),
		cfg:          cfg,
		authGate:     ag,
		authn:        authn,
		registry:     reg,
		authH:        handlers.NewAuthHandler(accounts, authn),
		profileH:     handlers.NewProfileHandler(profiles, documents, cfg.Storage.MaxUploadBytes),
		directoryH:   handlers.NewDirectoryHandler(profiles, slots),
		slotH:        handlers.NewSlotHandler(slots),
		appointmentH: handlers.NewAppointmentHandler(appointments),
		adminH:       handlers.NewAdminHandler(verification),
	}
	app.setupRoutes()
	return app, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	r := a.router
	r.Use(middleware.Recoverer)
	r.Use(corsSettings(a.cfg.Server.CORSOrigins).Handler)
	r.Use(i18n.Middleware)
	r.Use(a.authn.Middleware)

	// Public
	r.Get("/health", handlers.Health)
	r.Get("/healthz", handlers.Health)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", a.authH.Signup)
		r.Post("/login", a.authH.Login)
		r.Post("/logout", a.authH.Logout)
	})

	r.Route("/instructors", func(r chi.Router) {
		r.Get("/", a.directoryH.Search)
		r.Get("/{id}", a.directoryH.Get)
		r.Get("/{id}/slots", a.directoryH.Slots)
	})

	// Any authenticated caller
	r.Route("/me", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", a.profileH.Me)
		r.Patch("/profile", a.profileH.UpdateProfile)
		r.With(a.authGate.RequireRole(models.RoleInstructor)).Put("/instructor", a.profileH.UpdateInstructor)
		r.Post("/documents", a.profileH.UploadDocument)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.With(a.authGate.RequireRole(models.RoleStudent)).Post("/", a.appointmentH.Create)
		r.Patch("/{id}/status", a.appointmentH.UpdateStatus)
	})

	r.Route("/instructor", func(r chi.Router) {
		r.Use(a.authGate.RequireRole(models.RoleInstructor))
		r.Get("/slots", a.slotH.List)
		r.Post("/slots", a.slotH.Create)
		r.Delete("/slots/{id}", a.slotH.Delete)
		r.Get("/appointments", a.appointmentH.InstructorList)
		r.Get("/timeline", a.appointmentH.InstructorTimeline)
		r.With(a.authGate.RequirePermission(policy.ResourceStats, gate.ActionView)).Get("/stats", a.appointmentH.Stats)
	})

	r.Route("/student", func(r chi.Router) {
		r.Use(a.authGate.RequireRole(models.RoleStudent))
		r.Get("/appointments", a.appointmentH.StudentList)
		r.Get("/timeline", a.appointmentH.StudentTimeline)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.authGate.RequireRole(models.RoleAdmin))
		r.Get("/instructors/pending", a.adminH.Pending)
		r.Post("/instructors/{id}/decision", a.adminH.Decide)
	})

	// Uploaded documents
	prefix := strings.TrimRight(a.cfg.Storage.PublicPrefix, "/") + "/"
	r.Handle(prefix+"*", http.StripPrefix(prefix, handlers.DocumentFiles(a.cfg.Storage.UploadDir)))
}

// corsSettings allows the configured origins. Credentials stay off for the
// "*" origin.
func corsSettings(origins []string) *cors.Cors {
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept-Language"},
		AllowCredentials: !wildcard,
	})
}
