// Package httptransport is the thin caller-facing surface. Handlers decode,
// delegate and translate; every decision lives in the coordinator.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"registrar/internal/identity/models"
	"registrar/internal/platform/middleware"
	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// Service is the coordinator surface the handlers delegate to.
type Service interface {
	Submit(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, attrs models.IdentityAttributes) (*models.LedgerEntry, error)
	Get(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error)
}

// Handler handles the trn-request endpoints.
type Handler struct {
	svc       Service
	logger    *slog.Logger
	validator middleware.CallerValidator
	apiKeys   middleware.APIKeys
}

// New creates a Handler. apiKeys may be nil when all callers use JWTs.
func New(svc Service, logger *slog.Logger, validator middleware.CallerValidator, apiKeys middleware.APIKeys) *Handler {
	return &Handler{svc: svc, logger: logger, validator: validator, apiKeys: apiKeys}
}

// Register mounts the authenticated caller routes.
func (h *Handler) Register(r chi.Router) {
	sub := chi.NewRouter()
	sub.Use(middleware.RequestID)
	sub.Use(middleware.Recovery(h.logger))
	sub.Use(middleware.Logger(h.logger))
	sub.Use(middleware.Timeout(30 * time.Second))
	sub.Use(middleware.RequireCaller(h.validator, h.apiKeys, h.logger))
	sub.Put("/v1/trn-requests/{requestId}", h.handleSubmit)
	sub.Get("/v1/trn-requests/{requestId}", h.handleGet)

	r.Mount("/", sub)
}

// handleSubmit is create-or-fetch: the first PUT for a request id runs the
// allocation flow, replays return the recorded outcome.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID, requestID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	attrs, err := req.toAttributes()
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.svc.Submit(ctx, callerID, requestID, attrs)
	switch {
	case dErrors.HasCode(err, dErrors.CodeWithheld):
		writeJSON(w, http.StatusAccepted, pendingResponse(entry, statusWithheld))
	case err != nil:
		h.logFailure(ctx, "submit failed", err)
		writeError(w, err)
	case entry.Completed():
		writeJSON(w, http.StatusOK, completedResponse(entry))
	default:
		writeJSON(w, http.StatusAccepted, pendingResponse(entry, statusPending))
	}
}

// handleGet is the polling read.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID, requestID, ok := h.identify(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.Get(ctx, callerID, requestID)
	if err != nil {
		h.logFailure(ctx, "poll failed", err)
		writeError(w, err)
		return
	}
	switch {
	case entry.Completed():
		writeJSON(w, http.StatusOK, completedResponse(entry))
	case entry.Withheld && entry.CandidateID == nil:
		writeError(w, dErrors.New(dErrors.CodeConflict, "submission matches multiple records and needs human resolution"))
	case entry.Withheld:
		writeJSON(w, http.StatusAccepted, pendingResponse(entry, statusWithheld))
	default:
		writeJSON(w, http.StatusAccepted, pendingResponse(entry, statusPending))
	}
}

func (h *Handler) identify(w http.ResponseWriter, r *http.Request) (domain.CallerID, domain.RequestID, bool) {
	ctx := r.Context()

	callerID := middleware.GetCallerID(ctx)
	if callerID == "" {
		h.logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx))
		writeError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", "", false
	}

	requestID, err := domain.ParseRequestID(chi.URLParam(r, "requestId"))
	if err != nil {
		writeError(w, err)
		return "", "", false
	}
	return callerID, requestID, true
}

func (h *Handler) logFailure(ctx context.Context, message string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, message,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error())
		return
	}
	h.logger.WarnContext(ctx, message,
		"request_id", middleware.GetRequestID(ctx),
		"code", string(code))
}
