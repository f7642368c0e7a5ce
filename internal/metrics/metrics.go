package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks page renders, CMS traffic, contact submissions and header sessions.
type Metrics struct {
	PageRenders        *prometheus.CounterVec
	PageRenderDuration *prometheus.HistogramVec
	CMSRequests        *prometheus.CounterVec
	ContactSubmissions *prometheus.CounterVec
	HeaderSockets      prometheus.Gauge
}

// New registers all site metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PageRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "higapro_page_renders_total",
			Help: "Total number of page renders by page and status code",
		}, []string{"page", "status"}),
		PageRenderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "higapro_page_render_duration_seconds",
			Help:    "Duration of page renders including CMS fetches",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"page"}),
		CMSRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "higapro_cms_requests_total",
			Help: "Total number of CMS requests by endpoint and result (hit, ok, error)",
		}, []string{"endpoint", "result"}),
		ContactSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "higapro_contact_submissions_total",
			Help: "Total number of contact form submissions by outcome",
		}, []string{"outcome"}),
		HeaderSockets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "higapro_header_sockets",
			Help: "Number of open header websocket connections",
		}),
	}
}

// ObservePage records one render of page. Call with time.Now() at the start of the render.
func (m *Metrics) ObservePage(page string, status int, start time.Time) {
	m.PageRenders.WithLabelValues(page, statusLabel(status)).Inc()
	m.PageRenderDuration.WithLabelValues(page).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveCMS(endpoint, result string) {
	m.CMSRequests.WithLabelValues(endpoint, result).Inc()
}

func (m *Metrics) ObserveContact(outcome string) {
	m.ContactSubmissions.WithLabelValues(outcome).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
