package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/reelmatch/internal/admin"
	"github.com/hitoshi/reelmatch/internal/auth"
	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/brand"
	"github.com/hitoshi/reelmatch/internal/creator"
	"github.com/hitoshi/reelmatch/internal/inquiry"
	"github.com/hitoshi/reelmatch/internal/middleware"
	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/user"
)

// --- テストヘルパー ---

func newIdentity(id string, role model.Role) *authz.Identity {
	return &authz.Identity{ID: id, Email: id + "@example.com", Role: role, EmailVerified: true}
}

// newRequest はIdentityとURLパラメータを注入したリクエストを生成する。
func newRequest(method, target, body string, identity *authz.Identity, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	ctx := req.Context()
	if identity != nil {
		ctx = middleware.ContextWithIdentity(ctx, identity)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return v
}

// assertAPIError はステータスコードと統一エラーフォーマットのcodeを検証する。
func assertAPIError(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if w.Code != wantStatus {
		t.Fatalf("status = %d, want %d (body=%s)", w.Code, wantStatus, w.Body.String())
	}
	body := decodeResponse[middleware.ErrorResponseBody](t, w)
	if body.Code != wantCode {
		t.Errorf("code = %q, want %q", body.Code, wantCode)
	}
}

// --- モック定義 ---

type mockAuthService struct {
	signUpFn  func(ctx context.Context, email, password string, role model.Role) (*model.User, error)
	signInFn  func(ctx context.Context, email, password string) (*auth.Session, error)
	signOutFn func(ctx context.Context, accessToken string) error
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password, role)
	}
	return &model.User{ID: "user-1", Email: email, Role: role}, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, model.NewInvalidLoginError()
}

func (m *mockAuthService) SignOut(ctx context.Context, accessToken string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, accessToken)
	}
	return nil
}

type mockCreatorService struct {
	createFn     func(ctx context.Context, identity *authz.Identity, in creator.CreateInput) (*model.CreatorProfile, error)
	listFn       func(ctx context.Context, identity *authz.Identity, filter creator.ListFilter) ([]*model.CreatorProfile, error)
	getFn        func(ctx context.Context, identity *authz.Identity, id string) (*model.CreatorProfile, error)
	getMineFn    func(ctx context.Context, identity *authz.Identity) (*model.CreatorProfile, error)
	updateMineFn func(ctx context.Context, identity *authz.Identity, in creator.UpdateInput) (*model.CreatorProfile, error)
	listReelsFn  func(ctx context.Context, identity *authz.Identity, creatorProfileID string) ([]*model.Reel, error)
	createReelFn func(ctx context.Context, identity *authz.Identity, in creator.ReelInput) (*model.Reel, error)
	updateReelFn func(ctx context.Context, identity *authz.Identity, reelID string, in creator.ReelUpdateInput) (*model.Reel, error)
	deleteReelFn func(ctx context.Context, identity *authz.Identity, reelID string) error
}

func (m *mockCreatorService) Create(ctx context.Context, identity *authz.Identity, in creator.CreateInput) (*model.CreatorProfile, error) {
	if m.createFn != nil {
		return m.createFn(ctx, identity, in)
	}
	return nil, model.NewInternalError()
}

func (m *mockCreatorService) List(ctx context.Context, identity *authz.Identity, filter creator.ListFilter) ([]*model.CreatorProfile, error) {
	if m.listFn != nil {
		return m.listFn(ctx, identity, filter)
	}
	return nil, nil
}

func (m *mockCreatorService) Get(ctx context.Context, identity *authz.Identity, id string) (*model.CreatorProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, identity, id)
	}
	return nil, model.NewNotFoundError("クリエイター", id)
}

func (m *mockCreatorService) GetMine(ctx context.Context, identity *authz.Identity) (*model.CreatorProfile, error) {
	if m.getMineFn != nil {
		return m.getMineFn(ctx, identity)
	}
	return nil, model.NewUnauthenticatedError()
}

func (m *mockCreatorService) UpdateMine(ctx context.Context, identity *authz.Identity, in creator.UpdateInput) (*model.CreatorProfile, error) {
	if m.updateMineFn != nil {
		return m.updateMineFn(ctx, identity, in)
	}
	return nil, model.NewUnauthenticatedError()
}

func (m *mockCreatorService) ListReels(ctx context.Context, identity *authz.Identity, creatorProfileID string) ([]*model.Reel, error) {
	if m.listReelsFn != nil {
		return m.listReelsFn(ctx, identity, creatorProfileID)
	}
	return nil, nil
}

func (m *mockCreatorService) CreateReel(ctx context.Context, identity *authz.Identity, in creator.ReelInput) (*model.Reel, error) {
	if m.createReelFn != nil {
		return m.createReelFn(ctx, identity, in)
	}
	return nil, model.NewUnauthenticatedError()
}

func (m *mockCreatorService) UpdateReel(ctx context.Context, identity *authz.Identity, reelID string, in creator.ReelUpdateInput) (*model.Reel, error) {
	if m.updateReelFn != nil {
		return m.updateReelFn(ctx, identity, reelID, in)
	}
	return nil, model.NewUnauthenticatedError()
}

func (m *mockCreatorService) DeleteReel(ctx context.Context, identity *authz.Identity, reelID string) error {
	if m.deleteReelFn != nil {
		return m.deleteReelFn(ctx, identity, reelID)
	}
	return nil
}

type mockBrandService struct {
	createFn        func(ctx context.Context, identity *authz.Identity, in brand.CreateInput) (*model.BrandProfile, error)
	getFn           func(ctx context.Context, identity *authz.Identity, id string) (*model.BrandProfile, error)
	getMineFn       func(ctx context.Context, identity *authz.Identity) (*model.BrandProfile, error)
	updateMineFn    func(ctx context.Context, identity *authz.Identity, in brand.UpdateInput) (*model.BrandProfile, error)
	listShortlistFn func(ctx context.Context, identity *authz.Identity) ([]*model.ShortlistEntry, error)
	addFn           func(ctx context.Context, identity *authz.Identity, in brand.ShortlistInput) (*model.ShortlistEntry, error)
	removeFn        func(ctx context.Context, identity *authz.Identity, entryID string) error
}

func (m *mockBrandService) Create(ctx context.Context, identity *authz.Identity, in brand.CreateInput) (*model.BrandProfile, error) {
	if m.createFn != nil {
		return m.createFn(ctx, identity, in)
	}
	return nil, model.NewInternalError()
}

func (m *mockBrandService) Get(ctx context.Context, identity *authz.Identity, id string) (*model.BrandProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, identity, id)
	}
	return nil, model.NewNotFoundError("ブランド", id)
}

func (m *mockBrandService) GetMine(ctx context.Context, identity *authz.Identity) (*model.BrandProfile, error) {
	if m.getMineFn != nil {
		return m.getMineFn(ctx, identity)
	}
	return nil, model.NewUnauthenticatedError()
}

func (m *mockBrandService) UpdateMine(ctx context.Context, identity *authz.Identity, in brand.UpdateInput) (*model.BrandProfile, error) {
	if m.updateMineFn != nil {
		return m.updateMineFn(ctx, identity, in)
	}
	return nil, model.NewUnauthenticatedError()
}

func (m *mockBrandService) ListShortlist(ctx context.Context, identity *authz.Identity) ([]*model.ShortlistEntry, error) {
	if m.listShortlistFn != nil {
		return m.listShortlistFn(ctx, identity)
	}
	return nil, nil
}

func (m *mockBrandService) AddToShortlist(ctx context.Context, identity *authz.Identity, in brand.ShortlistInput) (*model.ShortlistEntry, error) {
	if m.addFn != nil {
		return m.addFn(ctx, identity, in)
	}
	return nil, model.NewUnauthenticatedError()
}

func (m *mockBrandService) RemoveFromShortlist(ctx context.Context, identity *authz.Identity, entryID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, identity, entryID)
	}
	return nil
}

type mockInquiryService struct {
	createFn       func(ctx context.Context, identity *authz.Identity, in inquiry.CreateInput) (*model.InquiryWithParticipants, error)
	listFn         func(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.InquiryWithParticipants, error)
	getFn          func(ctx context.Context, identity *authz.Identity, id string) (*model.InquiryWithParticipants, error)
	updateStatusFn func(ctx context.Context, identity *authz.Identity, id string, status model.InquiryStatus) (*model.InquiryWithParticipants, error)
	listMessagesFn func(ctx context.Context, identity *authz.Identity, inquiryID string) ([]*model.Message, error)
	postMessageFn  func(ctx context.Context, identity *authz.Identity, inquiryID, content string) (*model.Message, error)
}

func (m *mockInquiryService) Create(ctx context.Context, identity *authz.Identity, in inquiry.CreateInput) (*model.InquiryWithParticipants, error) {
	if m.createFn != nil {
		return m.createFn(ctx, identity, in)
	}
	return nil, model.NewInternalError()
}

func (m *mockInquiryService) List(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.InquiryWithParticipants, error) {
	if m.listFn != nil {
		return m.listFn(ctx, identity, limit, offset)
	}
	return nil, nil
}

func (m *mockInquiryService) Get(ctx context.Context, identity *authz.Identity, id string) (*model.InquiryWithParticipants, error) {
	if m.getFn != nil {
		return m.getFn(ctx, identity, id)
	}
	return nil, model.NewNotFoundError("問い合わせ", id)
}

func (m *mockInquiryService) UpdateStatus(ctx context.Context, identity *authz.Identity, id string, status model.InquiryStatus) (*model.InquiryWithParticipants, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, identity, id, status)
	}
	return nil, model.NewNotFoundError("問い合わせ", id)
}

func (m *mockInquiryService) ListMessages(ctx context.Context, identity *authz.Identity, inquiryID string) ([]*model.Message, error) {
	if m.listMessagesFn != nil {
		return m.listMessagesFn(ctx, identity, inquiryID)
	}
	return nil, nil
}

func (m *mockInquiryService) PostMessage(ctx context.Context, identity *authz.Identity, inquiryID, content string) (*model.Message, error) {
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, identity, inquiryID, content)
	}
	return &model.Message{ID: "msg-1", InquiryID: inquiryID, Content: content}, nil
}

type mockUserService struct {
	getFn      func(ctx context.Context, identity *authz.Identity, id string) (*model.User, error)
	withdrawFn func(ctx context.Context, identity *authz.Identity) error
}

func (m *mockUserService) Get(ctx context.Context, identity *authz.Identity, id string) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, identity, id)
	}
	return nil, model.NewNotFoundError("ユーザー", id)
}

func (m *mockUserService) Withdraw(ctx context.Context, identity *authz.Identity) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, identity)
	}
	return nil
}

type mockAdminService struct {
	listUsersFn    func(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.User, error)
	listBrandsFn   func(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.BrandProfile, error)
	listCreatorsFn func(ctx context.Context, identity *authz.Identity, status model.VerificationStatus, limit, offset int) ([]*model.CreatorProfile, error)
	applyFn        func(ctx context.Context, identity *authz.Identity, creatorProfileID string, action model.VerificationAction) (*model.CreatorProfile, error)
}

func (m *mockAdminService) ListUsers(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, identity, limit, offset)
	}
	return nil, nil
}

func (m *mockAdminService) ListBrands(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.BrandProfile, error) {
	if m.listBrandsFn != nil {
		return m.listBrandsFn(ctx, identity, limit, offset)
	}
	return nil, nil
}

func (m *mockAdminService) ListCreators(ctx context.Context, identity *authz.Identity, status model.VerificationStatus, limit, offset int) ([]*model.CreatorProfile, error) {
	if m.listCreatorsFn != nil {
		return m.listCreatorsFn(ctx, identity, status, limit, offset)
	}
	return nil, nil
}

func (m *mockAdminService) ApplyVerification(ctx context.Context, identity *authz.Identity, creatorProfileID string, action model.VerificationAction) (*model.CreatorProfile, error) {
	if m.applyFn != nil {
		return m.applyFn(ctx, identity, creatorProfileID, action)
	}
	return nil, model.NewNotFoundError("クリエイター", creatorProfileID)
}

// コンパイル時にインターフェースの実装を確認する
var (
	_ AuthServiceInterface    = (*mockAuthService)(nil)
	_ CreatorServiceInterface = (*mockCreatorService)(nil)
	_ BrandServiceInterface   = (*mockBrandService)(nil)
	_ InquiryServiceInterface = (*mockInquiryService)(nil)
	_ UserServiceInterface    = (*mockUserService)(nil)
	_ AdminServiceInterface   = (*mockAdminService)(nil)

	_ CreatorServiceInterface = (*creator.Service)(nil)
	_ BrandServiceInterface   = (*brand.Service)(nil)
	_ InquiryServiceInterface = (*inquiry.Service)(nil)
	_ AuthServiceInterface    = (*auth.Service)(nil)
	_ UserServiceInterface    = (*user.Service)(nil)
	_ AdminServiceInterface   = (*admin.Service)(nil)
)
