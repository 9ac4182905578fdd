// Package metrics expone contadores Prometheus del ciclo de vida de la sesion.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionMetrics es lo que el SessionManager y la reparacion reportan.
type SessionMetrics interface {
	RecordTransition(to string)
	RecordAuthAttempt(method, outcome string)
	RecordRepair(outcome string)
}

// Collector implementa SessionMetrics con Prometheus.
type Collector struct {
	transitions  *prometheus.CounterVec
	authAttempts *prometheus.CounterVec
	repairs      *prometheus.CounterVec
}

// NewCollector registra las metricas en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_session_transitions_total",
			Help: "Transiciones de estado de la sesion por estado destino",
		}, []string{"state"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_auth_attempts_total",
			Help: "Intentos de obtener credenciales por metodo y resultado",
		}, []string{"method", "outcome"}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_company_name_repairs_total",
			Help: "Resultados de la reparacion del nombre de empresa",
		}, []string{"outcome"}),
	}
	reg.MustRegister(c.transitions, c.authAttempts, c.repairs)
	return c
}

func (c *Collector) RecordTransition(to string) {
	c.transitions.WithLabelValues(to).Inc()
}

func (c *Collector) RecordAuthAttempt(method, outcome string) {
	c.authAttempts.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordRepair(outcome string) {
	c.repairs.WithLabelValues(outcome).Inc()
}

// Handler devuelve el handler de scrape.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type nop struct{}

// Nop descarta todo; util en tests y en el CLI.
func Nop() SessionMetrics { return nop{} }

func (nop) RecordTransition(string)          {}
func (nop) RecordAuthAttempt(string, string) {}
func (nop) RecordRepair(string)              {}
