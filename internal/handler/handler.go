// Package handler exposes the card service over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"librarycard/internal/assets"
	"librarycard/internal/card"
	"librarycard/internal/cloudinary"
	"librarycard/internal/recommend"
	"librarycard/internal/render"
	"librarycard/internal/store"
)

// PhotoFetcher resolves a stored photo reference to image bytes.
type PhotoFetcher interface {
	FetchPhoto(ctx context.Context, ref string) ([]byte, error)
}

// LogoSource supplies the institution logo, nil when unavailable.
type LogoSource interface {
	Bytes(ctx context.Context) []byte
}

// PhotoUploader hosts a data: URI photo and returns its public URL.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, dataURL, enrollmentNumber string) (*cloudinary.UploadResult, error)
}

// Recommender suggests courses for a department.
type Recommender interface {
	Recommend(ctx context.Context, department string) recommend.Result
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) bool

// Deps are the collaborators of a Handler. Uploader and Checks are optional.
type Deps struct {
	Store     store.RecordStore
	Validator *card.Validator
	Renderer  *render.Renderer
	Engine    Recommender
	Photos    PhotoFetcher
	Logo      LogoSource
	Uploader  PhotoUploader
	Checks    map[string]HealthCheck
	Log       *zap.Logger
}

// Handler serves the card API.
type Handler struct {
	store     store.RecordStore
	validator *card.Validator
	renderer  *render.Renderer
	engine    Recommender
	photos    PhotoFetcher
	logo      LogoSource
	uploader  PhotoUploader
	checks    map[string]HealthCheck
	log       *zap.Logger
}

// New builds a Handler, filling unset optional collaborators with defaults.
func New(d Deps) *Handler {
	h := &Handler{
		store:     d.Store,
		validator: d.Validator,
		renderer:  d.Renderer,
		engine:    d.Engine,
		photos:    d.Photos,
		logo:      d.Logo,
		uploader:  d.Uploader,
		checks:    d.Checks,
		log:       d.Log,
	}
	if h.validator == nil {
		h.validator = card.NewValidator()
	}
	if h.renderer == nil {
		h.renderer = render.New()
	}
	if h.engine == nil {
		h.engine = recommend.NewEngine()
	}
	if h.photos == nil {
		c := assets.New(10*time.Second, assets.DefaultMaxBytes)
		c.PhotoHosts = card.DefaultPhotoHosts
		h.photos = c
	}
	if h.logo == nil {
		h.logo = noLogo{}
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// Register mounts the API routes and the health probe on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.POST("/student-cards", h.createCard)
	api.GET("/student-cards", h.listCards)
	api.GET("/student-cards/:enrollmentNumber", h.getCard)
	api.GET("/student-cards/:enrollmentNumber/card", h.downloadCard)
	api.POST("/cards/render", h.previewCard)
	api.GET("/suggestions", h.suggestions)
	api.GET("/catalog/departments", h.departments)
	api.GET("/catalog/courses", h.courses)
	api.GET("/catalog/semesters", h.semesters)
}

func (h *Handler) health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	out := gin.H{}
	for name, check := range h.checks {
		ok := check(c.Request.Context())
		out[name] = ok
		if !ok {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	if h.store != nil {
		ok := h.store.Healthy(c.Request.Context())
		out["store"] = ok
		if !ok {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	out["status"] = status
	c.JSON(code, out)
}

type noLogo struct{}

func (noLogo) Bytes(context.Context) []byte { return nil }
