package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/talentbridge/pkg/service/activity"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
)

const (
	defaultDashboardURL = "/dashboard"
	projectName         = "talentbridge"
)

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	hub          *activity.Hub
	dashboardURL string
	version      string
}

type Options func(*Server)

// WithActivityHub enables the server-sent event stream of pipeline moves
func WithActivityHub(hub *activity.Hub) Options {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithDashboardURL sets where the OAuth callback sends the browser
func WithDashboardURL(url string) Options {
	return func(s *Server) {
		s.dashboardURL = url
	}
}

func WithVersion(version string) Options {
	return func(s *Server) {
		s.version = version
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		uc:           uc,
		dashboardURL: defaultDashboardURL,
		version:      "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	// OAuth endpoints exist only when a CRM is configured
	if uc.OAuth != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/connect", authConnectHandler(uc.OAuth))
			r.Get("/callback", authCallbackHandler(uc.OAuth, s.dashboardURL))
			r.Post("/refresh", authRefreshHandler(uc.OAuth))
			r.Get("/status", authStatusHandler(uc.OAuth))
			r.Post("/disconnect", authDisconnectHandler(uc.OAuth))
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/candidates", func(r chi.Router) {
			r.Get("/", listCandidatesHandler(uc))
			r.Post("/", createCandidateHandler(uc))
			r.Get("/{id}", getCandidateHandler(uc))
			r.Put("/{id}", updateCandidateHandler(uc))
			r.Delete("/{id}", deleteCandidateHandler(uc))
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", listJobsHandler(uc))
			r.Post("/", createJobHandler(uc))
			r.Get("/{id}", getJobHandler(uc))
			r.Put("/{id}", updateJobHandler(uc))
			r.Delete("/{id}", deleteJobHandler(uc))
		})

		r.Route("/pipeline/{jobId}", func(r chi.Router) {
			r.Get("/", getBoardHandler(uc))
			r.Post("/move", moveCandidateHandler(uc))
			r.Post("/candidates", addToBoardHandler(uc))
			if uc.Sync != nil {
				r.Post("/associate", associateHandler(uc))
			}
		})

		if uc.Remote != nil {
			r.Route("/sync", func(r chi.Router) {
				r.Post("/candidates", syncCandidatesHandler(uc))
				r.Post("/jobs", syncJobsHandler(uc))
				r.Get("/status", syncStatusHandler(uc))
			})
			r.Route("/remote", func(r chi.Router) {
				r.Get("/candidates", remoteCandidatesHandler(uc))
				r.Get("/jobs", remoteJobsHandler(uc))
			})
		}

		r.Get("/settings", settingsHandler(uc))
		r.Post("/webhook", webhookHandler)

		if s.hub != nil {
			r.Get("/events", eventsHandler(s.hub))
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status  string `json:"status"`
	Project string `json:"project"`
	Version string `json:"version"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, healthResponse{
		Status:  "active",
		Project: projectName,
		Version: s.version,
	})
}
