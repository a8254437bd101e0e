package api

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests      *prometheus.CounterVec
	mediaInits    *prometheus.CounterVec
	mediaConfirms *prometheus.CounterVec
	mediaBytes    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chirp_api",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		mediaInits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chirp_api",
			Name:      "media_inits_total",
			Help:      "Accepted media uploads by transfer plan.",
		}, []string{"plan"}),
		mediaConfirms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chirp_api",
			Name:      "media_confirms_total",
			Help:      "Media confirmations by result.",
		}, []string{"result"}),
		mediaBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chirp_api",
			Name:      "media_confirmed_bytes_total",
			Help:      "Declared size of confirmed media.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.mediaInits, m.mediaConfirms, m.mediaBytes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register api metrics: %w", err)
		}
	}
	return m, nil
}
