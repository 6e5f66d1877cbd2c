// Package metrics defines the application's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Card counts card renders and template version lookups.
type Card struct {
	Renders        *prometheus.CounterVec
	VersionLookups *prometheus.CounterVec
}

// NewCard registers the card collectors with reg.
func NewCard(reg prometheus.Registerer) *Card {
	f := promauto.With(reg)
	return &Card{
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goonies",
			Name:      "card_renders_total",
			Help:      "Card render requests by route and outcome.",
		}, []string{"route", "outcome"}),
		VersionLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goonies",
			Name:      "card_version_lookups_total",
			Help:      "Template version lookups by result.",
		}, []string{"result"}),
	}
}

// Render records one card request. A nil receiver is a no-op.
func (c *Card) Render(route, outcome string) {
	if c == nil {
		return
	}
	c.Renders.WithLabelValues(route, outcome).Inc()
}

// VersionLookup records one lookup result. A nil receiver is a no-op.
func (c *Card) VersionLookup(result string) {
	if c == nil {
		return
	}
	c.VersionLookups.WithLabelValues(result).Inc()
}
