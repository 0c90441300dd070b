// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/repository"
)

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo   repository.UserRepository
	authorizer *authz.Authorizer
	logger     *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。loggerがnilの場合はslog.Defaultを使う。
func NewService(userRepo repository.UserRepository, authorizer *authz.Authorizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:   userRepo,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Get は指定IDのユーザーを返す。本人とadminのみ読み取れる。
func (s *Service) Get(ctx context.Context, identity *authz.Identity, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("ユーザー", id)
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceUser, authz.OpRead, authz.Target{OwnerID: user.ID}); err != nil {
		return nil, err
	}
	return user, nil
}

// Withdraw は呼び出し元の退会処理を実行する。
// プロフィール、リール、保存リスト、問い合わせ、メッセージは外部キーのCASCADEで削除される。
// 認証プロバイダー側のアカウントは削除しない。
func (s *Service) Withdraw(ctx context.Context, identity *authz.Identity) error {
	if identity == nil {
		return s.authorizer.Authorize(nil, authz.ResourceUser, authz.OpDelete, authz.Target{})
	}

	user, err := s.userRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewNotFoundError("ユーザー", identity.ID)
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceUser, authz.OpDelete, authz.Target{OwnerID: user.ID}); err != nil {
		return err
	}

	s.logger.Info("退会処理を開始します",
		slog.String("user_id", user.ID),
	)

	if err := s.userRepo.DeleteByID(ctx, user.ID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	s.logger.Info("退会処理が完了しました",
		slog.String("user_id", user.ID),
	)

	return nil
}
