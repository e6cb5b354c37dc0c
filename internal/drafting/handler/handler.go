package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rtidesk/internal/drafting"
	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
	"rtidesk/pkg/platform/httputil"
	"rtidesk/pkg/requestcontext"
)

const maxBodyBytes = 256 << 10

// Service is the drafting surface the handler needs.
type Service interface {
	Draft(ctx context.Context, req drafting.DraftRequest) (string, error)
	SuggestDepartmentAndPIO(ctx context.Context, subject, details string) (drafting.Suggestion, error)
	Review(ctx context.Context, content string, lang id.Language) (string, error)
}

// Handler serves the public /ai routes. Callers wrap it with the rate limiter.
type Handler struct {
	service  Service
	logger   *slog.Logger
	limiter  func(http.Handler) http.Handler
	detailed bool
}

type Option func(*Handler)

// WithRateLimit wraps every /ai route in mw.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.limiter = mw
	}
}

func WithDetailedErrors(detailed bool) Option {
	return func(h *Handler) {
		h.detailed = detailed
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/ai", func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter)
		}
		r.Post("/generate-rti", h.handleGenerate)
		r.Post("/suggest", h.handleSuggest)
		r.Post("/review", h.handleReview)
	})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req drafting.DraftRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := h.service.Draft(r.Context(), req)
	if err != nil {
		httputil.WriteErrorDetailed(w, err, h.detailed)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"rtiApplication": text})
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req drafting.SuggestRequest
	if !h.decode(w, r, &req) {
		return
	}
	suggestion, err := h.service.SuggestDepartmentAndPIO(r.Context(), req.Subject, req.Details)
	if err != nil {
		httputil.WriteErrorDetailed(w, err, h.detailed)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, suggestion)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	var req drafting.ReviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	lang, err := id.ParseLanguage(req.Language)
	if err != nil {
		httputil.WriteErrorDetailed(w, err, h.detailed)
		return
	}
	text, err := h.service.Review(r.Context(), req.Content, lang)
	if err != nil {
		httputil.WriteErrorDetailed(w, err, h.detailed)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"content": text})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "invalid drafting request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteErrorDetailed(w, dErrors.Wrap(err, dErrors.CodeValidation, "Invalid request body"), h.detailed)
		return false
	}
	return true
}
