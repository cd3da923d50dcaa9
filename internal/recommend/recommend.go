// Package recommend suggests courses for a department. Known departments are
// answered from the static catalogue; unknown ones may be passed to a text
// generation backend. Recommend never fails: backend problems produce a
// single generic suggestion.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"librarycard/internal/card"
	"librarycard/internal/catalog"
	"librarycard/internal/metrics"
)

// Result sources.
const (
	SourceStatic    = "static"
	SourceGenerated = "generated"
	SourceCached    = "cached"
	SourceFallback  = "fallback"
)

// Suggestions is the payload shown to the user.
type Suggestions struct {
	Recommendations []card.CourseRecommendation `json:"recommendations"`
	Message         string                      `json:"message"`
}

// Result is a Suggestions with its provenance.
type Result struct {
	Suggestions
	Source string   `json:"source"`
	Notes  []string `json:"notes,omitempty"`
}

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Cache stores generated suggestions by department.
type Cache interface {
	Get(ctx context.Context, department string) (Suggestions, bool, error)
	Set(ctx context.Context, department string, s Suggestions) error
}

const defaultTimeout = 15 * time.Second

// Engine answers suggestion requests.
type Engine struct {
	gen     Generator
	cache   Cache
	timeout time.Duration
	log     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator enables generated suggestions for unknown departments.
func WithGenerator(g Generator) Option {
	return func(e *Engine) { e.gen = g }
}

// WithCache memoises generated suggestions.
func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds an engine. Without WithGenerator it only knows the
// static catalogue.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: defaultTimeout, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns suggestions for department.
func (e *Engine) Recommend(ctx context.Context, department string) Result {
	department = strings.TrimSpace(department)
	res := e.recommend(ctx, department)
	metrics.Suggestions.WithLabelValues(res.Source).Inc()
	return res
}

func (e *Engine) recommend(ctx context.Context, department string) Result {
	if courses, ok := catalog.CoursesFor(department); ok {
		return staticResult(department, courses)
	}
	if e.gen == nil {
		return Result{
			Suggestions: Suggestions{
				Recommendations: []card.CourseRecommendation{{
					Course: "General course in " + department,
					Reason: "This is a general recommendation as the suggestion service is not configured.",
				}},
				Message: "Suggestions are limited because the suggestion service is not configured.",
			},
			Source: SourceFallback,
			Notes:  []string{"suggestion service not configured"},
		}
	}

	key := cacheKey(department)
	if cached, ok := e.lookup(ctx, key); ok {
		return Result{Suggestions: cached, Source: SourceCached}
	}

	s, err := e.generate(ctx, department)
	if err != nil {
		e.log.Warn("suggestion backend failed", zap.String("department", department), zap.Error(err))
		return fallbackResult(department, err)
	}
	if e.cache != nil {
		if err := e.cache.Set(ctx, key, s); err != nil {
			e.log.Warn("suggestion cache write failed", zap.String("department", department), zap.Error(err))
		}
	}
	return Result{Suggestions: s, Source: SourceGenerated}
}

func (e *Engine) lookup(ctx context.Context, key string) (Suggestions, bool) {
	if e.cache == nil {
		return Suggestions{}, false
	}
	s, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.log.Warn("suggestion cache read failed", zap.String("key", key), zap.Error(err))
		ok = false
	}
	if ok {
		metrics.SuggestionCache.WithLabelValues("hit").Inc()
	} else {
		metrics.SuggestionCache.WithLabelValues("miss").Inc()
	}
	return s, ok
}

func (e *Engine) generate(ctx context.Context, department string) (Suggestions, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	text, err := e.gen.Generate(ctx, Prompt(department))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Suggestions{}, fmt.Errorf("recommend: backend timed out after %s: %w", e.timeout, err)
		}
		return Suggestions{}, fmt.Errorf("recommend: backend: %w", err)
	}
	return Parse(text)
}

func staticResult(department string, courses []string) Result {
	recs := make([]card.CourseRecommendation, 0, len(courses))
	for _, course := range courses {
		recs = append(recs, card.CourseRecommendation{
			Course:   course,
			Reason:   fmt.Sprintf("%s is a popular choice in the %s department.", course, department),
			Semester: catalog.SuggestedSemester(course),
		})
	}
	return Result{
		Suggestions: Suggestions{
			Recommendations: recs,
			Message:         "Here are some recommended courses for " + department,
		},
		Source: SourceStatic,
	}
}

func fallbackResult(department string, cause error) Result {
	return Result{
		Suggestions: Suggestions{
			Recommendations: []card.CourseRecommendation{{
				Course: "General course in " + department,
				Reason: "This is a fallback recommendation.",
			}},
			Message: "We encountered an issue generating personalized recommendations.",
		},
		Source: SourceFallback,
		Notes:  []string{cause.Error()},
	}
}

func cacheKey(department string) string {
	return strings.ToLower(strings.Join(strings.Fields(department), " "))
}
