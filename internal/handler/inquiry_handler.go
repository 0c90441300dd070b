package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/inquiry"
	"github.com/hitoshi/reelmatch/internal/middleware"
	"github.com/hitoshi/reelmatch/internal/model"
)

// InquiryServiceInterface は問い合わせハンドラーが必要とするサービスインターフェース。
type InquiryServiceInterface interface {
	Create(ctx context.Context, identity *authz.Identity, in inquiry.CreateInput) (*model.InquiryWithParticipants, error)
	List(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.InquiryWithParticipants, error)
	Get(ctx context.Context, identity *authz.Identity, id string) (*model.InquiryWithParticipants, error)
	UpdateStatus(ctx context.Context, identity *authz.Identity, id string, status model.InquiryStatus) (*model.InquiryWithParticipants, error)
	ListMessages(ctx context.Context, identity *authz.Identity, inquiryID string) ([]*model.Message, error)
	PostMessage(ctx context.Context, identity *authz.Identity, inquiryID, content string) (*model.Message, error)
}

// InquiryHandler は問い合わせとメッセージのHTTPハンドラー。
type InquiryHandler struct {
	service InquiryServiceInterface
}

// NewInquiryHandler はInquiryHandlerを生成する。
func NewInquiryHandler(service InquiryServiceInterface) *InquiryHandler {
	return &InquiryHandler{service: service}
}

type createInquiryRequest struct {
	CreatorProfileID string `json:"creator_profile_id"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
}

type updateInquiryStatusRequest struct {
	Status string `json:"status"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// Create は問い合わせを作成する。
// POST /api/inquiries
func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inq, err := h.service.Create(r.Context(), middleware.IdentityFromContext(r.Context()), inquiry.CreateInput{
		CreatorProfileID: req.CreatorProfileID,
		Subject:          req.Subject,
		Body:             req.Body,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInquiryResponse(inq))
}

// List は呼び出し元が参加者である問い合わせを返す。
// GET /api/inquiries?limit=n&offset=n
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	inquiries, err := h.service.List(r.Context(), middleware.IdentityFromContext(r.Context()), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInquiryResponses(inquiries))
}

// Get は問い合わせを返す。
// GET /api/inquiries/{id}
func (h *InquiryHandler) Get(w http.ResponseWriter, r *http.Request) {
	inq, err := h.service.Get(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInquiryResponse(inq))
}

// UpdateStatus は問い合わせの状態を更新する。
// PATCH /api/inquiries/{id}
func (h *InquiryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateInquiryStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inq, err := h.service.UpdateStatus(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), model.InquiryStatus(req.Status))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInquiryResponse(inq))
}

// ListMessages は問い合わせのメッセージを古い順に返す。
// GET /api/inquiries/{id}/messages
func (h *InquiryHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListMessages(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// PostMessage は問い合わせにメッセージを投稿する。
// POST /api/inquiries/{id}/messages
func (h *InquiryHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.service.PostMessage(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(msg))
}
