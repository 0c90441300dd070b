// Package admin は運営者向けの一覧取得とクリエイター審査のドメインロジックを提供する。
// すべての操作はadminロールを無条件に要求し、対象の存在確認より先に判定する。
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/repository"
)

// allStatuses は審査状態で絞り込まない場合の対象。
var allStatuses = []model.VerificationStatus{
	model.VerificationPending,
	model.VerificationVerified,
	model.VerificationRejected,
}

// Service は運営者向けのサービス層。
type Service struct {
	users      repository.UserRepository
	brands     repository.BrandProfileRepository
	creators   repository.CreatorProfileRepository
	authorizer *authz.Authorizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	users repository.UserRepository,
	brands repository.BrandProfileRepository,
	creators repository.CreatorProfileRepository,
	authorizer *authz.Authorizer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:      users,
		brands:     brands,
		creators:   creators,
		authorizer: authorizer,
		logger:     logger,
		now:        time.Now,
	}
}

// ListUsers は全ユーザーを返す。
func (s *Service) ListUsers(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.User, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceUser, authz.OpList, authz.Target{}); err != nil {
		return nil, err
	}

	limit, offset = model.NormalizePage(limit, offset)
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// ListBrands は全ブランドプロフィールを返す。
func (s *Service) ListBrands(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.BrandProfile, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceBrandProfile, authz.OpList, authz.Target{}); err != nil {
		return nil, err
	}

	limit, offset = model.NormalizePage(limit, offset)
	brands, err := s.brands.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ブランド一覧の取得に失敗しました: %w", err)
	}
	return brands, nil
}

// ListCreators は審査状態に関わらずクリエイタープロフィールを返す。
// statusが空でなければその審査状態のみに絞り込む。
func (s *Service) ListCreators(ctx context.Context, identity *authz.Identity, status model.VerificationStatus, limit, offset int) ([]*model.CreatorProfile, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceAdmin, authz.OpList, authz.Target{}); err != nil {
		return nil, err
	}

	statuses := allStatuses
	if status != "" {
		if !status.Valid() {
			return nil, model.NewValidationError("審査状態は pending, verified, rejected のいずれかで指定してください")
		}
		statuses = []model.VerificationStatus{status}
	}

	limit, offset = model.NormalizePage(limit, offset)
	creators, err := s.creators.ListByStatuses(ctx, statuses, "", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("クリエイター一覧の取得に失敗しました: %w", err)
	}
	return creators, nil
}

// ApplyVerification はクリエイタープロフィールに審査操作を適用する。
// 審査状態を変更できるのはこの操作だけであり、許可されない遷移はCONFLICTを返す。
func (s *Service) ApplyVerification(ctx context.Context, identity *authz.Identity, creatorProfileID string, action model.VerificationAction) (*model.CreatorProfile, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceAdmin, authz.OpUpdate, authz.Target{}); err != nil {
		return nil, err
	}

	profile, err := s.creators.FindByID(ctx, creatorProfileID)
	if err != nil {
		return nil, fmt.Errorf("クリエイタープロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("クリエイタープロフィール", creatorProfileID)
	}

	next, err := action.Apply(profile.VerificationStatus)
	if err != nil {
		return nil, err
	}

	if err := s.creators.UpdateVerificationStatus(ctx, profile.ID, next); err != nil {
		return nil, fmt.Errorf("審査状態の更新に失敗しました: %w", err)
	}

	s.logger.Info("creator verification status changed",
		slog.String("creator_profile_id", profile.ID),
		slog.String("action", string(action)),
		slog.String("from", string(profile.VerificationStatus)),
		slog.String("to", string(next)),
		slog.String("admin_id", identity.ID),
	)

	profile.VerificationStatus = next
	profile.UpdatedAt = s.now()
	return profile, nil
}
