package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/kapu/higapro-site/internal/config"
	"github.com/kapu/higapro-site/internal/contact"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/header"
	"github.com/kapu/higapro-site/internal/metrics"
	"github.com/kapu/higapro-site/internal/news"
	"github.com/kapu/higapro-site/internal/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Content is the CMS data the pages are built from.
type Content interface {
	LatestNews(ctx context.Context) ([]domain.News, error)
	Roster(ctx context.Context) ([]domain.Person, error)
	Marquee(ctx context.Context) ([]domain.Person, error)
	Person(ctx context.Context, id string) (*domain.Person, error)
}

type Dependencies struct {
	Config    config.ServerConfig
	Content   Content
	Sessions  *header.Registry
	News      *news.Presenter
	Submitter *contact.Submitter
	// MailRelay backs POST /email. Nil disables the endpoint.
	MailRelay contact.Relay
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	// HealthChecks are reported by /healthz; any failing check makes it 503.
	HealthChecks map[string]func(context.Context) bool
	Logger       *zap.Logger
}

type Server struct {
	cfg       config.ServerConfig
	content   Content
	sessions  *header.Registry
	news      *news.Presenter
	submitter *contact.Submitter
	mailRelay contact.Relay
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	checks    map[string]func(context.Context) bool
	logger    *zap.Logger
	router    chi.Router
}

func New(deps Dependencies) *Server {
	s := &Server{
		cfg:       deps.Config,
		content:   deps.Content,
		sessions:  deps.Sessions,
		news:      deps.News,
		submitter: deps.Submitter,
		mailRelay: deps.MailRelay,
		metrics:   deps.Metrics,
		gatherer:  deps.Gatherer,
		checks:    deps.HealthChecks,
		logger:    deps.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// Long-lived; kept outside the timeout group.
	r.Get("/ws/header", s.handleHeaderSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/healthz", s.handleHealth)
		r.Get("/robots.txt", s.handleRobots)
		r.Get("/sitemap.xml", s.handleSitemap)
		if s.gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
		}
		r.Handle("/assets/*", http.StripPrefix("/assets", view.Assets()))

		if s.mailRelay != nil {
			r.Post("/email", s.handleEmail)
		}

		r.Group(func(r chi.Router) {
			if s.cfg.CSRFKey != "" {
				r.Use(csrf.Protect([]byte(s.cfg.CSRFKey),
					csrf.FieldName(csrfField),
					csrf.Path("/"),
					csrf.Secure(isHTTPS(s.cfg.SiteURL)),
				))
			}
			r.Get("/", s.handleHome)
			r.Post("/contact", s.handleContact)
			r.Get("/talents/{personId}", s.handleDetail(domain.KindTalent))
			r.Get("/managers/{personId}", s.handleDetail(domain.KindManager))
		})
	})

	r.NotFound(s.handleStatic)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok"}

	if len(s.checks) > 0 {
		results := make(map[string]bool, len(s.checks))
		for name, check := range s.checks {
			results[name] = check(r.Context())
			if !results[name] {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		body["checks"] = results
	}

	writeJSON(w, status, body)
}

func isHTTPS(siteURL string) bool {
	return strings.HasPrefix(siteURL, "https://")
}
