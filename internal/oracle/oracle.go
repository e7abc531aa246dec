// Package oracle is the development-only decryption endpoint. It stands in
// for the out-of-band decryption service of a real deployment: callers
// present a handle tag and the oracle reveals the plaintext only when the
// access-control state allows it. The production build never mounts it.
package oracle

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"duesgate/internal/acl"
	"duesgate/internal/fhe"
	"duesgate/internal/platform/middleware"
	"duesgate/internal/transport/http/shared"
	id "duesgate/pkg/domain"
	dErrors "duesgate/pkg/domain-errors"
)

// Revealer is the simulator-side escape hatch the oracle decrypts through.
type Revealer interface {
	Reveal(ctx context.Context, handle fhe.HandleID) (uint64, fhe.Kind, error)
}

// Oracle resolves handle tags to plaintext under grant checks.
type Oracle struct {
	grants   *acl.Manager
	revealer Revealer
	logger   *slog.Logger
}

func New(grants *acl.Manager, revealer Revealer, logger *slog.Logger) *Oracle {
	return &Oracle{grants: grants, revealer: revealer, logger: logger}
}

// RevealPrivate decrypts a handle for a specific principal. The principal
// must hold a private grant on the handle (a public grant also suffices).
func (o *Oracle) RevealPrivate(ctx context.Context, handle fhe.HandleID, principal id.PrincipalID) (uint64, fhe.Kind, error) {
	allowed, err := o.grants.MayDecrypt(ctx, handle, principal)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "grant lookup failed")
	}
	if !allowed {
		return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "principal holds no decryption grant for this handle")
	}
	return o.reveal(ctx, handle)
}

// RevealPublic decrypts a handle that carries a public grant. No caller
// identity is required.
func (o *Oracle) RevealPublic(ctx context.Context, handle fhe.HandleID) (uint64, fhe.Kind, error) {
	public, err := o.grants.IsPublic(ctx, handle)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "grant lookup failed")
	}
	if !public {
		return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "handle is not publicly decryptable")
	}
	return o.reveal(ctx, handle)
}

func (o *Oracle) reveal(ctx context.Context, handle fhe.HandleID) (uint64, fhe.Kind, error) {
	value, kind, err := o.revealer.Reveal(ctx, handle)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeNotFound, "handle not found")
	}
	return value, kind, nil
}

// Register mounts the oracle routes. The private route sits behind the same
// bearer auth as the main API; the public route is open.
func (o *Oracle) Register(r chi.Router, validator middleware.TokenValidator) {
	oracleRouter := chi.NewRouter()
	oracleRouter.Use(middleware.Recovery(o.logger))
	oracleRouter.Use(middleware.RequestID)
	oracleRouter.Use(middleware.Logger(o.logger))

	oracleRouter.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, o.logger))
		r.Get("/oracle/{handle}/private", o.handleRevealPrivate)
	})
	oracleRouter.Get("/oracle/{handle}/public", o.handleRevealPublic)

	r.Mount("/dev", oracleRouter)
}

type revealResponse struct {
	Handle string `json:"handle"`
	Kind   string `json:"kind"`
	Value  uint64 `json:"value"`
}

func (o *Oracle) handleRevealPrivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle, ok := fhe.ParseHandleID(chi.URLParam(r, "handle"))
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed handle tag"))
		return
	}
	principal := middleware.GetPrincipal(ctx)
	value, kind, err := o.RevealPrivate(ctx, handle, principal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, revealResponse{Handle: handle.String(), Kind: kindName(kind), Value: value})
}

func (o *Oracle) handleRevealPublic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle, ok := fhe.ParseHandleID(chi.URLParam(r, "handle"))
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed handle tag"))
		return
	}
	value, kind, err := o.RevealPublic(ctx, handle)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, revealResponse{Handle: handle.String(), Kind: kindName(kind), Value: value})
}

func kindName(kind fhe.Kind) string {
	if kind == fhe.KindBool {
		return "bool"
	}
	return "uint32"
}
