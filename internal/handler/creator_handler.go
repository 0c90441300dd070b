package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/creator"
	"github.com/hitoshi/reelmatch/internal/middleware"
	"github.com/hitoshi/reelmatch/internal/model"
)

// CreatorServiceInterface はクリエイターハンドラーが必要とするサービスインターフェース。
type CreatorServiceInterface interface {
	Create(ctx context.Context, identity *authz.Identity, in creator.CreateInput) (*model.CreatorProfile, error)
	List(ctx context.Context, identity *authz.Identity, filter creator.ListFilter) ([]*model.CreatorProfile, error)
	Get(ctx context.Context, identity *authz.Identity, id string) (*model.CreatorProfile, error)
	GetMine(ctx context.Context, identity *authz.Identity) (*model.CreatorProfile, error)
	UpdateMine(ctx context.Context, identity *authz.Identity, in creator.UpdateInput) (*model.CreatorProfile, error)
	ListReels(ctx context.Context, identity *authz.Identity, creatorProfileID string) ([]*model.Reel, error)
	CreateReel(ctx context.Context, identity *authz.Identity, in creator.ReelInput) (*model.Reel, error)
	UpdateReel(ctx context.Context, identity *authz.Identity, reelID string, in creator.ReelUpdateInput) (*model.Reel, error)
	DeleteReel(ctx context.Context, identity *authz.Identity, reelID string) error
}

// CreatorHandler はクリエイタープロフィールとリールのHTTPハンドラー。
type CreatorHandler struct {
	service CreatorServiceInterface
}

// NewCreatorHandler はCreatorHandlerを生成する。
func NewCreatorHandler(service CreatorServiceInterface) *CreatorHandler {
	return &CreatorHandler{service: service}
}

type createCreatorRequest struct {
	Handle        string `json:"handle"`
	DisplayName   string `json:"display_name"`
	Bio           string `json:"bio"`
	Niche         string `json:"niche"`
	FollowerCount int    `json:"follower_count"`
}

type updateCreatorRequest struct {
	DisplayName   *string `json:"display_name"`
	Bio           *string `json:"bio"`
	Niche         *string `json:"niche"`
	FollowerCount *int    `json:"follower_count"`
}

type createReelRequest struct {
	CreatorProfileID string `json:"creator_profile_id"`
	URL              string `json:"url"`
	Title            string `json:"title"`
}

type updateReelRequest struct {
	URL   *string `json:"url"`
	Title *string `json:"title"`
}

// Create はクリエイタープロフィールを作成する。
// POST /api/creators
func (h *CreatorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCreatorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.Create(r.Context(), middleware.IdentityFromContext(r.Context()), creator.CreateInput{
		Handle:        req.Handle,
		DisplayName:   req.DisplayName,
		Bio:           req.Bio,
		Niche:         req.Niche,
		FollowerCount: req.FollowerCount,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCreatorProfileResponse(profile))
}

// List は公開一覧を返す。
// GET /api/creators?niche=xxx&limit=n&offset=n
func (h *CreatorHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	profiles, err := h.service.List(r.Context(), middleware.IdentityFromContext(r.Context()), creator.ListFilter{
		Niche:  r.URL.Query().Get("niche"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreatorProfileResponses(profiles))
}

// Get はクリエイタープロフィールを返す。
// GET /api/creators/{id}
func (h *CreatorHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreatorProfileResponse(profile))
}

// GetMine は呼び出し元のクリエイタープロフィールを返す。
// GET /api/creators/me
func (h *CreatorHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetMine(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreatorProfileResponse(profile))
}

// UpdateMine は呼び出し元のクリエイタープロフィールを更新する。
// PATCH /api/creators/me
func (h *CreatorHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	var req updateCreatorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateMine(r.Context(), middleware.IdentityFromContext(r.Context()), creator.UpdateInput{
		DisplayName:   req.DisplayName,
		Bio:           req.Bio,
		Niche:         req.Niche,
		FollowerCount: req.FollowerCount,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreatorProfileResponse(profile))
}

// ListReels はクリエイターのリール一覧を返す。
// GET /api/creators/{id}/reels
func (h *CreatorHandler) ListReels(w http.ResponseWriter, r *http.Request) {
	reels, err := h.service.ListReels(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReelResponses(reels))
}

// CreateReel はリールを追加する。
// POST /api/reels
func (h *CreatorHandler) CreateReel(w http.ResponseWriter, r *http.Request) {
	var req createReelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reel, err := h.service.CreateReel(r.Context(), middleware.IdentityFromContext(r.Context()), creator.ReelInput{
		CreatorProfileID: req.CreatorProfileID,
		URL:              req.URL,
		Title:            req.Title,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReelResponse(reel))
}

// UpdateReel はリールを更新する。
// PATCH /api/reels/{id}
func (h *CreatorHandler) UpdateReel(w http.ResponseWriter, r *http.Request) {
	var req updateReelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reel, err := h.service.UpdateReel(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), creator.ReelUpdateInput{
		URL:   req.URL,
		Title: req.Title,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReelResponse(reel))
}

// DeleteReel はリールを削除する。
// DELETE /api/reels/{id}
func (h *CreatorHandler) DeleteReel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteReel(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
