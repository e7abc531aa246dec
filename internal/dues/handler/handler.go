// Package handler exposes the dues-tracking API over HTTP.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"duesgate/internal/fhe"
	"duesgate/internal/platform/metrics"
	"duesgate/internal/platform/middleware"
	"duesgate/internal/transport/http/shared"
	id "duesgate/pkg/domain"
	dErrors "duesgate/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_service.go -package=mocks

// Service defines the interface for dues operations.
type Service interface {
	RegisterOrUpdate(ctx context.Context, caller id.PrincipalID, member id.MemberID, att fhe.AttestedCiphertext) (fhe.HandleID, bool, error)
	CheckStatusPrivate(ctx context.Context, caller id.PrincipalID, member id.MemberID) (fhe.HandleID, error)
	CheckStatusPublic(ctx context.Context, caller id.PrincipalID, member id.MemberID) (fhe.HandleID, error)
	SetGraceDays(ctx context.Context, caller id.PrincipalID, days uint32) error
	SetTreasurer(ctx context.Context, caller, principal id.PrincipalID) error
	TransferOwnership(ctx context.Context, caller, principal id.PrincipalID) error
	ResetMember(ctx context.Context, caller id.PrincipalID, member id.MemberID) (fhe.HandleID, error)
	PaidThroughHandle(ctx context.Context, member id.MemberID) (fhe.HandleID, bool, error)
}

// Handler handles dues-tracking endpoints.
type Handler struct {
	logger    *slog.Logger
	dues      Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new dues Handler.
func New(
	dues Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		dues:      dues,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the dues routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	duesRouter := chi.NewRouter()
	duesRouter.Use(middleware.Recovery(h.logger))
	duesRouter.Use(middleware.RequestID)
	duesRouter.Use(middleware.Logger(h.logger))
	duesRouter.Use(middleware.Timeout(30 * time.Second))
	duesRouter.Use(middleware.RequireAuth(h.validator, h.logger))

	duesRouter.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/v1/members/{member}/paid-through", h.handlePaidThrough)
		r.Put("/v1/config/grace-days", h.handleSetGraceDays)
		r.Put("/v1/roles/treasurer", h.handleSetTreasurer)
		r.Put("/v1/roles/owner", h.handleTransferOwnership)
	})
	duesRouter.Post("/v1/members/{member}/status/private", h.handleStatusPrivate)
	duesRouter.Post("/v1/members/{member}/status/public", h.handleStatusPublic)
	duesRouter.Post("/v1/members/{member}/reset", h.handleReset)
	duesRouter.Get("/v1/members/{member}/paid-through/handle", h.handleGetHandle)

	r.Mount("/", duesRouter)
}

type paidThroughRequest struct {
	Ciphertext string `json:"ciphertext"`
	Proof      string `json:"proof"`
}

type handleResponse struct {
	Handle  string `json:"handle"`
	Created bool   `json:"created,omitempty"`
}

type statusResponse struct {
	Handle     string `json:"handle"`
	Visibility string `json:"visibility"`
}

// handlePaidThrough ingests an attested encrypted paid-through timestamp for
// the member in the path.
func (h *Handler) handlePaidThrough(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	memberID, err := id.ParseMemberID(chi.URLParam(r, "member"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req paidThroughRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	att, err := decodeAttested(req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	handle, created, err := h.dues.RegisterOrUpdate(ctx, caller, memberID, att)
	if err != nil {
		h.writeServiceError(ctx, w, "register or update failed", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.WriteJSON(w, status, handleResponse{Handle: handle.String(), Created: created})
}

func (h *Handler) handleStatusPrivate(w http.ResponseWriter, r *http.Request) {
	h.handleStatus(w, r, h.dues.CheckStatusPrivate, "private")
}

func (h *Handler) handleStatusPublic(w http.ResponseWriter, r *http.Request) {
	h.handleStatus(w, r, h.dues.CheckStatusPublic, "public")
}

func (h *Handler) handleStatus(
	w http.ResponseWriter,
	r *http.Request,
	check func(context.Context, id.PrincipalID, id.MemberID) (fhe.HandleID, error),
	visibility string,
) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	memberID, err := id.ParseMemberID(chi.URLParam(r, "member"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	handle, err := check(ctx, caller, memberID)
	if err != nil {
		h.writeServiceError(ctx, w, "status check failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, statusResponse{Handle: handle.String(), Visibility: visibility})
}

type graceDaysRequest struct {
	Days uint32 `json:"days"`
}

func (h *Handler) handleSetGraceDays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	var req graceDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.dues.SetGraceDays(ctx, caller, req.Days); err != nil {
		h.writeServiceError(ctx, w, "grace update failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleRequest struct {
	Principal string `json:"principal"`
}

func (h *Handler) handleSetTreasurer(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.dues.SetTreasurer, "treasurer change failed")
}

func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.dues.TransferOwnership, "ownership transfer failed")
}

func (h *Handler) handleRoleChange(
	w http.ResponseWriter,
	r *http.Request,
	change func(context.Context, id.PrincipalID, id.PrincipalID) error,
	failMsg string,
) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	principal, err := id.ParsePrincipalID(req.Principal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := change(ctx, caller, principal); err != nil {
		h.writeServiceError(ctx, w, failMsg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	memberID, err := id.ParseMemberID(chi.URLParam(r, "member"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	handle, err := h.dues.ResetMember(ctx, caller, memberID)
	if err != nil {
		h.writeServiceError(ctx, w, "reset failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, handleResponse{Handle: handle.String()})
}

func (h *Handler) handleGetHandle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memberID, err := id.ParseMemberID(chi.URLParam(r, "member"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	handle, registered, err := h.dues.PaidThroughHandle(ctx, memberID)
	if err != nil {
		h.writeServiceError(ctx, w, "handle lookup failed", err)
		return
	}
	if !registered {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotRegistered, "member is not registered"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, handleResponse{Handle: handle.String()})
}

// writeServiceError logs internal failures and maps everything through the
// shared envelope. Coded errors pass through untouched so clients see the
// domain code; uncoded errors collapse to internal.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}

func decodeAttested(req paidThroughRequest) (fhe.AttestedCiphertext, error) {
	if req.Ciphertext == "" || req.Proof == "" {
		return fhe.AttestedCiphertext{}, dErrors.New(dErrors.CodeValidation, "ciphertext and proof are required")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		return fhe.AttestedCiphertext{}, dErrors.New(dErrors.CodeValidation, "ciphertext is not valid base64")
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		return fhe.AttestedCiphertext{}, dErrors.New(dErrors.CodeValidation, "proof is not valid base64")
	}
	return fhe.AttestedCiphertext{Ciphertext: ciphertext, Proof: proof}, nil
}
