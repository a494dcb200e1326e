// Package metrics holds the service's Prometheus counters. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	authActions    *prometheus.CounterVec
	profileSyncs   *prometheus.CounterVec
	contentFetches *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		authActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsaccess_auth_actions_total",
			Help: "Auth actions by action and outcome status.",
		}, []string{"action", "status"}),
		profileSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsaccess_profile_sync_total",
			Help: "Profile synchronizations by result.",
		}, []string{"result"}),
		contentFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsaccess_content_fetch_total",
			Help: "Personalized content fetches by source.",
		}, []string{"source"}),
	}
	reg.MustRegister(
		m.authActions,
		m.profileSyncs,
		m.contentFetches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) AuthAction(action, status string) {
	if m == nil {
		return
	}
	m.authActions.WithLabelValues(action, status).Inc()
}

func (m *Metrics) ProfileSync(result string) {
	if m == nil {
		return
	}
	m.profileSyncs.WithLabelValues(result).Inc()
}

func (m *Metrics) ContentFetch(source string) {
	if m == nil {
		return
	}
	m.contentFetches.WithLabelValues(source).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
