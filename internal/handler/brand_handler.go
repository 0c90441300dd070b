package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/brand"
	"github.com/hitoshi/reelmatch/internal/middleware"
	"github.com/hitoshi/reelmatch/internal/model"
)

// BrandServiceInterface はブランドハンドラーが必要とするサービスインターフェース。
type BrandServiceInterface interface {
	Create(ctx context.Context, identity *authz.Identity, in brand.CreateInput) (*model.BrandProfile, error)
	Get(ctx context.Context, identity *authz.Identity, id string) (*model.BrandProfile, error)
	GetMine(ctx context.Context, identity *authz.Identity) (*model.BrandProfile, error)
	UpdateMine(ctx context.Context, identity *authz.Identity, in brand.UpdateInput) (*model.BrandProfile, error)
	ListShortlist(ctx context.Context, identity *authz.Identity) ([]*model.ShortlistEntry, error)
	AddToShortlist(ctx context.Context, identity *authz.Identity, in brand.ShortlistInput) (*model.ShortlistEntry, error)
	RemoveFromShortlist(ctx context.Context, identity *authz.Identity, entryID string) error
}

// BrandHandler はブランドプロフィールと保存リストのHTTPハンドラー。
type BrandHandler struct {
	service BrandServiceInterface
}

// NewBrandHandler はBrandHandlerを生成する。
func NewBrandHandler(service BrandServiceInterface) *BrandHandler {
	return &BrandHandler{service: service}
}

type createBrandRequest struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
}

type updateBrandRequest struct {
	CompanyName *string `json:"company_name"`
	Website     *string `json:"website"`
	Industry    *string `json:"industry"`
}

type addShortlistRequest struct {
	CreatorProfileID string `json:"creator_profile_id"`
	Note             string `json:"note"`
}

// Create はブランドプロフィールを作成する。
// POST /api/brands
func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBrandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.Create(r.Context(), middleware.IdentityFromContext(r.Context()), brand.CreateInput{
		CompanyName: req.CompanyName,
		Website:     req.Website,
		Industry:    req.Industry,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBrandProfileResponse(profile))
}

// Get はブランドプロフィールを返す。
// GET /api/brands/{id}
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBrandProfileResponse(profile))
}

// GetMine は呼び出し元のブランドプロフィールを返す。
// GET /api/brands/me
func (h *BrandHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetMine(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBrandProfileResponse(profile))
}

// UpdateMine は呼び出し元のブランドプロフィールを更新する。
// PATCH /api/brands/me
func (h *BrandHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	var req updateBrandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateMine(r.Context(), middleware.IdentityFromContext(r.Context()), brand.UpdateInput{
		CompanyName: req.CompanyName,
		Website:     req.Website,
		Industry:    req.Industry,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBrandProfileResponse(profile))
}

// ListShortlist は呼び出し元の保存リストを返す。
// GET /api/shortlist
func (h *BrandHandler) ListShortlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListShortlist(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toShortlistEntryResponses(entries))
}

// AddToShortlist はクリエイターを保存リストに追加する。
// POST /api/shortlist
func (h *BrandHandler) AddToShortlist(w http.ResponseWriter, r *http.Request) {
	var req addShortlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.service.AddToShortlist(r.Context(), middleware.IdentityFromContext(r.Context()), brand.ShortlistInput{
		CreatorProfileID: req.CreatorProfileID,
		Note:             req.Note,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toShortlistEntryResponse(entry))
}

// RemoveFromShortlist は保存リストからエントリを削除する。
// DELETE /api/shortlist/{id}
func (h *BrandHandler) RemoveFromShortlist(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveFromShortlist(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
