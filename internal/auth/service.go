// Package auth はホスト型認証プロバイダーとの連携とアクセストークンの検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/repository"
)

// minPasswordLength はサインアップ時に受け付けるパスワードの最小長。
const minPasswordLength = 8

// IdentityProvider はホスト型認証プロバイダーのインターフェース。
type IdentityProvider interface {
	// SignUp はアカウントを作成する。
	SignUp(ctx context.Context, email, password string) (*HostedUser, error)
	// SignIn はアクセストークンを取得する。
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	// SignOut はアクセストークンを無効化する。
	SignOut(ctx context.Context, accessToken string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // プロバイダーが有効期限を返さない場合のセッション有効期間（秒）
}

// Session はサインインで発行されたアクセストークンとユーザー。
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	provider IdentityProvider
	userRepo repository.UserRepository
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(provider IdentityProvider, userRepo repository.UserRepository, config ServiceConfig) *Service {
	return &Service{
		provider: provider,
		userRepo: userRepo,
		config:   config,
	}
}

// SignUp はプロバイダーにアカウントを作成し、選択されたロールでusersレコードを作成する。
// adminロールは自己申告できない。
func (s *Service) SignUp(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if !role.SelfAssignable() {
		return nil, model.NewValidationError("roleはcreatorまたはbrandを指定してください")
	}

	hosted, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Rejected() {
			return nil, model.NewValidationError(pe.Message)
		}
		return nil, fmt.Errorf("failed to sign up with provider: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:            hosted.ID,
		Email:         hosted.Email,
		Role:          role,
		EmailVerified: hosted.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if user.Email == "" {
		user.Email = email
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAccountExistsError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// SignIn はプロバイダーでパスワード認証し、アクセストークンを発行する。
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("メールアドレスとパスワードは必須です")
	}

	result, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Rejected() {
			return nil, model.NewInvalidLoginError()
		}
		return nil, fmt.Errorf("failed to sign in with provider: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, result.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// プロバイダー側にのみ存在するアカウント
		slog.Warn("signed in account has no user record", slog.String("user_id", result.User.ID))
		return nil, model.NewInvalidLoginError()
	}

	maxAge := result.ExpiresIn
	if maxAge <= 0 {
		maxAge = s.config.SessionMaxAge
	}

	slog.Info("user signed in", slog.String("user_id", user.ID))
	return &Session{
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(maxAge) * time.Second),
		User:        user,
	}, nil
}

// SignOut はプロバイダー側のセッションを破棄する。トークンが空の場合は何もしない。
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func validateCredentials(email, password string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	if len(password) < minPasswordLength {
		return model.NewValidationError(fmt.Sprintf("パスワードは%d文字以上にしてください", minPasswordLength))
	}
	return nil
}
