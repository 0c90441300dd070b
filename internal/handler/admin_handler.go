package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/middleware"
	"github.com/hitoshi/reelmatch/internal/model"
)

// AdminServiceInterface は管理ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	ListUsers(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.User, error)
	ListBrands(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.BrandProfile, error)
	ListCreators(ctx context.Context, identity *authz.Identity, status model.VerificationStatus, limit, offset int) ([]*model.CreatorProfile, error)
	ApplyVerification(ctx context.Context, identity *authz.Identity, creatorProfileID string, action model.VerificationAction) (*model.CreatorProfile, error)
}

// AdminHandler は運営者向けのHTTPハンドラー。
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), middleware.IdentityFromContext(r.Context()), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(users))
}

// ListBrands GET /api/admin/brands
func (h *AdminHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	brands, err := h.service.ListBrands(r.Context(), middleware.IdentityFromContext(r.Context()), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBrandProfileResponses(brands))
}

// ListCreators は審査状態を問わずクリエイターを返す。
// GET /api/admin/creators?status=pending
func (h *AdminHandler) ListCreators(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := model.VerificationStatus(r.URL.Query().Get("status"))
	creators, err := h.service.ListCreators(r.Context(), middleware.IdentityFromContext(r.Context()), status, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreatorProfileResponses(creators))
}

// ApplyVerification はクリエイターの審査状態を変更する。
// POST /api/admin/creators/{id}/{action}
func (h *AdminHandler) ApplyVerification(w http.ResponseWriter, r *http.Request) {
	action := model.VerificationAction(chi.URLParam(r, "action"))
	profile, err := h.service.ApplyVerification(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), action)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreatorProfileResponse(profile))
}
