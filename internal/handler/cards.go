package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"librarycard/internal/card"
	"librarycard/internal/metrics"
	"librarycard/internal/render"
	"librarycard/internal/store"
)

// maxBodyBytes bounds a request body; photos arrive inline as data: URIs.
const maxBodyBytes = 12 << 20

const (
	msgValidation   = "Validation error"
	msgNotFound     = "Student card not found"
	msgCreateFailed = "An error occurred while creating the student card"
	msgFetchFailed  = "An error occurred while retrieving the student card"
	msgRenderFailed = "An error occurred while generating the library card"
	msgUploadFailed = "image upload failed"
)

func (h *Handler) createCard(c *gin.Context) {
	req, ok := h.bindCard(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.uploader != nil && strings.HasPrefix(req.PhotoURL, "data:") {
		res, err := h.uploader.UploadPhoto(ctx, req.PhotoURL, req.EnrollmentNumber)
		if err != nil {
			h.log.Error("photo upload failed", zap.String("enrollment_number", req.EnrollmentNumber), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"message": msgUploadFailed})
			return
		}
		req.PhotoURL = res.SecureURL
	}

	stored, err := h.store.Create(ctx, req)
	if err != nil {
		h.log.Error("create card failed", zap.String("enrollment_number", req.EnrollmentNumber), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgCreateFailed})
		return
	}
	metrics.CardsCreated.Inc()
	c.JSON(http.StatusCreated, stored)
}

func (h *Handler) getCard(c *gin.Context) {
	stored, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *Handler) listCards(c *gin.Context) {
	cards, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("list cards failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	if cards == nil {
		cards = []card.StoredCard{}
	}
	c.JSON(http.StatusOK, cards)
}

func (h *Handler) downloadCard(c *gin.Context) {
	stored, ok := h.lookup(c)
	if !ok {
		return
	}
	res, err := h.render(c.Request.Context(), stored.Request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgRenderFailed})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	if len(res.Notes) > 0 {
		c.Header("X-Card-Degraded", degradedElements(res.Notes))
	}
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

type previewResponse struct {
	Filename   string        `json:"filename"`
	DataURI    string        `json:"dataUri"`
	Barcode    string        `json:"barcode"`
	IssueDate  string        `json:"issueDate"`
	ValidUntil string        `json:"validUntil"`
	Pages      int           `json:"pages"`
	Notes      []render.Note `json:"notes"`
}

func (h *Handler) previewCard(c *gin.Context) {
	req, ok := h.bindCard(c)
	if !ok {
		return
	}
	res, err := h.render(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgRenderFailed})
		return
	}
	notes := res.Notes
	if notes == nil {
		notes = []render.Note{}
	}
	c.JSON(http.StatusOK, previewResponse{
		Filename:   res.Filename,
		DataURI:    res.DataURI(),
		Barcode:    res.BarcodeValue,
		IssueDate:  card.FormatDate(res.IssueDate),
		ValidUntil: card.FormatDate(res.ValidUntil),
		Pages:      res.Pages,
		Notes:      notes,
	})
}

// bindCard decodes and validates a card request body, writing the 400
// response itself on failure.
func (h *Handler) bindCard(c *gin.Context) (card.Request, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.badBody(c, "Request body is too large")
		return card.Request{}, false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var input map[string]any
	if err := dec.Decode(&input); err != nil || input == nil {
		h.badBody(c, "Request body must be a JSON object")
		return card.Request{}, false
	}

	req, err := h.validator.Validate(input)
	var verr *card.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgValidation, "errors": verr.Fields})
		return card.Request{}, false
	}
	if err != nil {
		h.badBody(c, err.Error())
		return card.Request{}, false
	}
	return req, true
}

func (h *Handler) badBody(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": msgValidation,
		"errors":  []card.FieldError{{Field: "body", Message: msg}},
	})
}

func (h *Handler) lookup(c *gin.Context) (card.StoredCard, bool) {
	key := strings.TrimSpace(c.Param("enrollmentNumber"))
	stored, err := h.store.GetByEnrollment(c.Request.Context(), key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
		return card.StoredCard{}, false
	case err != nil:
		h.log.Error("get card failed", zap.String("enrollment_number", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return card.StoredCard{}, false
	}
	return stored, true
}

// render gathers the photo and logo concurrently and lays out the card.
// Asset failures only degrade the card.
func (h *Handler) render(ctx context.Context, req card.Request) (*render.Result, error) {
	var in render.Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := h.photos.FetchPhoto(gctx, req.PhotoURL)
		if err != nil {
			h.log.Warn("photo unavailable", zap.String("enrollment_number", req.EnrollmentNumber), zap.Error(err))
			in.PhotoErr = err
			return nil
		}
		in.Photo = data
		return nil
	})
	g.Go(func() error {
		in.Logo = h.logo.Bytes(gctx)
		return nil
	})
	_ = g.Wait()

	res, err := h.renderer.RenderWith(req, in)
	if err != nil {
		metrics.CardsRendered.WithLabelValues("error").Inc()
		h.log.Error("render card failed", zap.String("enrollment_number", req.EnrollmentNumber), zap.Error(err))
		return nil, err
	}
	metrics.CardsRendered.WithLabelValues("ok").Inc()
	for _, n := range res.Notes {
		metrics.RenderDegradations.WithLabelValues(n.Element).Inc()
	}
	return res, nil
}

func degradedElements(notes []render.Note) string {
	seen := map[string]bool{}
	var out []string
	for _, n := range notes {
		if !seen[n.Element] {
			seen[n.Element] = true
			out = append(out, n.Element)
		}
	}
	return strings.Join(out, ",")
}
