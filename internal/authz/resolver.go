package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/reelmatch/internal/model"
)

// SessionCookieName はアクセストークンを保持するHTTP Only Cookieの名前。
const SessionCookieName = "session_token"

// CredentialValidator は外部認証プロバイダーによる資格情報の検証インターフェース。
// 検証に成功した場合はユーザーIDを返す。
type CredentialValidator interface {
	ValidateCredential(ctx context.Context, token string) (string, error)
}

// UserFinder はidentity構築に必要なユーザー検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Resolver はリクエストの資格情報からIdentityを解決する。
type Resolver struct {
	validator CredentialValidator
	users     UserFinder
	logger    *slog.Logger
}

// NewResolver はResolverを生成する。
func NewResolver(validator CredentialValidator, users UserFinder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{validator: validator, users: users, logger: logger}
}

// Resolve はリクエストからIdentityを解決する。
// 資格情報がない、検証に失敗した、ユーザーが存在しない場合はnilを返す。
// 外部コラボレーターの障害もnil（未認証）として扱い、呼び出し元には伝播させない。
func (r *Resolver) Resolve(req *http.Request) *Identity {
	token := CredentialFromRequest(req)
	if token == "" {
		return nil
	}

	ctx := req.Context()

	userID, err := r.validator.ValidateCredential(ctx, token)
	if err != nil {
		r.logger.Warn("credential validation failed", slog.String("error", err.Error()))
		return nil
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to load user for session",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if user == nil {
		return nil
	}
	if !user.Role.Valid() {
		r.logger.Warn("user has unknown role",
			slog.String("user_id", user.ID),
			slog.String("role", string(user.Role)),
		)
		return nil
	}

	return &Identity{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}
}

// CredentialFromRequest はリクエストからアクセストークンを取り出す。
// Authorization: Bearer ヘッダーを優先し、なければセッションCookieを読む。
func CredentialFromRequest(req *http.Request) string {
	if header := req.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := req.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
