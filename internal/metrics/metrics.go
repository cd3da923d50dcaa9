// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CardsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "librarycard_cards_created_total",
		Help: "Card records accepted by the record store.",
	})
	CardsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "librarycard_cards_rendered_total",
		Help: "Card documents rendered, by outcome.",
	}, []string{"outcome"})
	RenderDegradations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "librarycard_render_degradations_total",
		Help: "Card elements substituted during rendering.",
	}, []string{"element"})
	Suggestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "librarycard_suggestions_total",
		Help: "Course suggestions served, by source.",
	}, []string{"source"})
	SuggestionCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "librarycard_suggestion_cache_total",
		Help: "Suggestion cache lookups, by result.",
	}, []string{"result"})
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "librarycard_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
