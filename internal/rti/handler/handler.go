package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rtidesk/internal/platform/middleware"
	"rtidesk/internal/rti/models"
	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
	"rtidesk/pkg/platform/httputil"
	"rtidesk/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// Service is the lifecycle surface the handler needs.
type Service interface {
	Create(ctx context.Context, owner id.UserID, req models.CreateRequest) (*models.Application, error)
	List(ctx context.Context, owner id.UserID) ([]*models.Application, error)
	Get(ctx context.Context, appID id.ApplicationID, owner id.UserID) (*models.Application, error)
	Update(ctx context.Context, appID id.ApplicationID, owner id.UserID, patch models.Patch) (*models.Application, error)
	Submit(ctx context.Context, appID id.ApplicationID, owner id.UserID) (*models.Application, error)
	FileAppeal(ctx context.Context, appID id.ApplicationID, owner id.UserID, reason string) (*models.Application, error)
	Delete(ctx context.Context, appID id.ApplicationID, owner id.UserID) error
	RecordOutcome(ctx context.Context, appID id.ApplicationID, outcome models.Outcome, actor string) (*models.Application, error)
}

// Handler serves the /rti routes and the administrative outcome route.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
	adminToken   string
	detailed     bool
}

type Option func(*Handler)

// WithDetailedErrors adds the underlying cause to error bodies. Never enable in production.
func WithDetailedErrors(detailed bool) Option {
	return func(h *Handler) {
		h.detailed = detailed
	}
}

// WithAdminToken enables POST /admin/rti/{id}/outcome behind X-Admin-Token.
func WithAdminToken(token string) Option {
	return func(h *Handler) {
		h.adminToken = token
	}
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the owner routes under /rti and the admin route under /admin/rti.
func (h *Handler) Register(r chi.Router) {
	r.Route("/rti", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Post("/{id}/submit", h.handleSubmit)
		r.Post("/{id}/appeal", h.handleAppeal)
		r.Delete("/{id}", h.handleDelete)
	})
	r.Route("/admin/rti", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/{id}/outcome", h.handleRecordOutcome)
	})
}

type recordResponse struct {
	Message string              `json:"message"`
	RTI     *models.Application `json:"rti"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	// The authenticated email wins over whatever the body claims.
	if email := requestcontext.Email(ctx); email != "" {
		req.Applicant.Email = email
	}

	app, err := h.service.Create(ctx, requestcontext.UserID(ctx), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, recordResponse{Message: "RTI application created successfully", RTI: app})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	apps, err := h.service.List(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.Get(ctx, appID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeValidation, "Invalid updates"))
		return
	}
	patch, err := models.DecodePatch(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.service.Update(ctx, appID, requestcontext.UserID(ctx), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recordResponse{Message: "RTI application updated successfully", RTI: app})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.service.Submit(ctx, appID, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recordResponse{Message: "RTI application submitted successfully", RTI: app})
}

func (h *Handler) handleAppeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	var req models.AppealRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.service.FileAppeal(ctx, appID, requestcontext.UserID(ctx), req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recordResponse{Message: "Appeal filed successfully", RTI: app})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, appID, requestcontext.UserID(ctx)); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "RTI application deleted successfully")
}

func (h *Handler) handleRecordOutcome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	var req models.OutcomeRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	outcome, err := req.Outcome()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.service.RecordOutcome(ctx, appID, outcome, "admin:"+requestcontext.ClientIP(ctx))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recordResponse{Message: "RTI outcome recorded successfully", RTI: app})
}

// applicationID parses the {id} path segment. Malformed ids are reported
// exactly like absent records.
func (h *Handler) applicationID(w http.ResponseWriter, r *http.Request) (id.ApplicationID, bool) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "malformed application id",
			"request_id", requestcontext.RequestID(r.Context()),
			"application_id", chi.URLParam(r, "id"),
		)
		h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeNotFound, "RTI application not found"))
		return id.ApplicationID{}, false
	}
	return appID, true
}

func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeValidation, "Invalid request body")
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, _ *http.Request, err error) {
	httputil.WriteErrorDetailed(w, err, h.detailed)
}
