// Package creator はクリエイタープロフィールとリールのドメインロジックを提供する。
package creator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/repository"
	"github.com/hitoshi/reelmatch/internal/security"
)

const (
	maxDisplayNameLength = 100
	maxBioLength         = 1000
	maxNicheLength       = 50
	maxReelTitleLength   = 200
)

// handlePattern はハンドルの形式。英小文字、数字、アンダースコアの3〜30文字。
var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// listedStatuses は公開一覧に掲載する審査状態。
var listedStatuses = []model.VerificationStatus{model.VerificationVerified, model.VerificationPending}

// CreateInput はプロフィール作成の入力。
type CreateInput struct {
	Handle        string
	DisplayName   string
	Bio           string
	Niche         string
	FollowerCount int
}

// UpdateInput はプロフィール更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	DisplayName   *string
	Bio           *string
	Niche         *string
	FollowerCount *int
}

// ListFilter は公開一覧の絞り込み条件。
type ListFilter struct {
	Niche  string
	Limit  int
	Offset int
}

// ReelInput はリール作成の入力。
// CreatorProfileIDが空の場合は呼び出し元のプロフィールに追加する。
type ReelInput struct {
	CreatorProfileID string
	URL              string
	Title            string
}

// ReelUpdateInput はリール更新の入力。nilのフィールドは変更しない。
type ReelUpdateInput struct {
	URL   *string
	Title *string
}

// Service はクリエイタープロフィールとリールのサービス層。
// 単一リソースの操作では、存在確認（NOT_FOUND）を認可判定より先に行う。
type Service struct {
	profiles   repository.CreatorProfileRepository
	reels      repository.ReelRepository
	authorizer *authz.Authorizer
	sanitizer  security.TextSanitizer
	urls       security.URLValidator
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	profiles repository.CreatorProfileRepository,
	reels repository.ReelRepository,
	authorizer *authz.Authorizer,
	sanitizer security.TextSanitizer,
	urls security.URLValidator,
) *Service {
	return &Service{
		profiles:   profiles,
		reels:      reels,
		authorizer: authorizer,
		sanitizer:  sanitizer,
		urls:       urls,
		now:        time.Now,
	}
}

// Create は呼び出し元を所有者とするクリエイタープロフィールを作成する。
//
// 既存プロフィールの有無とハンドルの重複を書き込み前に確認するが、これは事前チェックに過ぎない。
// 同時作成で事前チェックをすり抜けた場合は、ストレージの一意制約違反を同じCONFLICTに変換する。
func (s *Service) Create(ctx context.Context, identity *authz.Identity, in CreateInput) (*model.CreatorProfile, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceCreatorProfile, authz.OpCreate, authz.Target{}); err != nil {
		return nil, err
	}

	handle := strings.ToLower(strings.TrimSpace(in.Handle))
	if !handlePattern.MatchString(handle) {
		return nil, model.NewValidationError("ハンドルは英小文字、数字、アンダースコアの3〜30文字で指定してください")
	}
	displayName := s.sanitizer.Sanitize(in.DisplayName)
	bio := s.sanitizer.Sanitize(in.Bio)
	niche := strings.ToLower(s.sanitizer.Sanitize(in.Niche))
	if err := validateProfileFields(displayName, bio, niche, in.FollowerCount); err != nil {
		return nil, err
	}

	existing, err := s.profiles.FindByOwnerID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewProfileExistsError()
	}

	taken, err := s.profiles.FindByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("ハンドルの確認に失敗しました: %w", err)
	}
	if taken != nil {
		return nil, model.NewHandleTakenError(handle)
	}

	now := s.now()
	profile := &model.CreatorProfile{
		ID:                 uuid.New().String(),
		OwnerID:            identity.ID,
		Handle:             handle,
		DisplayName:        displayName,
		Bio:                bio,
		Niche:              niche,
		FollowerCount:      in.FollowerCount,
		VerificationStatus: model.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if conflict := conflictFromDuplicate(err, handle); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("プロフィールの作成に失敗しました: %w", err)
	}

	return profile, nil
}

// conflictFromDuplicate は一意制約違反を対応するCONFLICTエラーに変換する。
// 一意制約違反でなければnilを返す。
func conflictFromDuplicate(err error, handle string) error {
	constraint, ok := repository.DuplicateConstraint(err)
	if !ok {
		return nil
	}
	if constraint == repository.ConstraintCreatorHandleUnique {
		return model.NewHandleTakenError(handle)
	}
	return model.NewProfileExistsError()
}

// List は公開一覧を返す。審査済みと審査待ちのプロフィールのみを含む。
func (s *Service) List(ctx context.Context, identity *authz.Identity, filter ListFilter) ([]*model.CreatorProfile, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceCreatorProfile, authz.OpList, authz.Target{}); err != nil {
		return nil, err
	}

	limit, offset := model.NormalizePage(filter.Limit, filter.Offset)
	niche := strings.ToLower(strings.TrimSpace(filter.Niche))

	profiles, err := s.profiles.ListByStatuses(ctx, listedStatuses, niche, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("プロフィール一覧の取得に失敗しました: %w", err)
	}
	return profiles, nil
}

// Get は指定IDのプロフィールを返す。
// 公開一覧に掲載中であれば誰でも読み取れ、それ以外は所有者とadminのみ読み取れる。
func (s *Service) Get(ctx context.Context, identity *authz.Identity, id string) (*model.CreatorProfile, error) {
	profile, err := s.findProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	target := authz.Target{OwnerID: profile.OwnerID, Listed: profile.VerificationStatus.Listed()}
	if err := s.authorizer.Authorize(identity, authz.ResourceCreatorProfile, authz.OpRead, target); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetMine は呼び出し元自身のプロフィールを返す。掲載状態に関わらず非公開の読み取りとして判定する。
func (s *Service) GetMine(ctx context.Context, identity *authz.Identity) (*model.CreatorProfile, error) {
	profile, err := s.findOwnProfile(ctx, identity, authz.ResourceCreatorProfile, authz.OpRead)
	if err != nil {
		return nil, err
	}

	target := authz.Target{OwnerID: profile.OwnerID}
	if err := s.authorizer.Authorize(identity, authz.ResourceCreatorProfile, authz.OpRead, target); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateMine は呼び出し元自身のプロフィールを更新する。
// ハンドル、所有者、審査状態は変更できない。
func (s *Service) UpdateMine(ctx context.Context, identity *authz.Identity, in UpdateInput) (*model.CreatorProfile, error) {
	profile, err := s.findOwnProfile(ctx, identity, authz.ResourceCreatorProfile, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	target := authz.Target{OwnerID: profile.OwnerID}
	if err := s.authorizer.Authorize(identity, authz.ResourceCreatorProfile, authz.OpUpdate, target); err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		profile.DisplayName = s.sanitizer.Sanitize(*in.DisplayName)
	}
	if in.Bio != nil {
		profile.Bio = s.sanitizer.Sanitize(*in.Bio)
	}
	if in.Niche != nil {
		profile.Niche = strings.ToLower(s.sanitizer.Sanitize(*in.Niche))
	}
	if in.FollowerCount != nil {
		profile.FollowerCount = *in.FollowerCount
	}
	if err := validateProfileFields(profile.DisplayName, profile.Bio, profile.Niche, profile.FollowerCount); err != nil {
		return nil, err
	}
	profile.UpdatedAt = s.now()

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	return profile, nil
}

// ListReels は指定プロフィールのリール一覧を返す。
// 公開範囲は親プロフィールの掲載状態に従う。
func (s *Service) ListReels(ctx context.Context, identity *authz.Identity, creatorProfileID string) ([]*model.Reel, error) {
	profile, err := s.findProfile(ctx, creatorProfileID)
	if err != nil {
		return nil, err
	}

	target := authz.Target{OwnerID: profile.OwnerID, Listed: profile.VerificationStatus.Listed()}
	if err := s.authorizer.Authorize(identity, authz.ResourceReel, authz.OpList, target); err != nil {
		return nil, err
	}

	reels, err := s.reels.ListByCreatorProfileID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("リール一覧の取得に失敗しました: %w", err)
	}
	return reels, nil
}

// CreateReel はリールを作成する。所有者の判定は親プロフィールの所有者で行う。
func (s *Service) CreateReel(ctx context.Context, identity *authz.Identity, in ReelInput) (*model.Reel, error) {
	var profile *model.CreatorProfile
	var err error
	if in.CreatorProfileID != "" {
		profile, err = s.findProfile(ctx, in.CreatorProfileID)
	} else {
		profile, err = s.findOwnProfile(ctx, identity, authz.ResourceReel, authz.OpCreate)
	}
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceReel, authz.OpCreate, authz.Target{OwnerID: profile.OwnerID}); err != nil {
		return nil, err
	}

	url := strings.TrimSpace(in.URL)
	title := s.sanitizer.Sanitize(in.Title)
	if err := s.validateReel(url, title); err != nil {
		return nil, err
	}

	now := s.now()
	reel := &model.Reel{
		ID:               uuid.New().String(),
		CreatorProfileID: profile.ID,
		URL:              url,
		Title:            title,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.reels.Create(ctx, reel); err != nil {
		return nil, fmt.Errorf("リールの作成に失敗しました: %w", err)
	}
	return reel, nil
}

// UpdateReel はリールを更新する。リール自身のフィールドではなく親プロフィールの所有者で判定する。
func (s *Service) UpdateReel(ctx context.Context, identity *authz.Identity, reelID string, in ReelUpdateInput) (*model.Reel, error) {
	reel, parent, err := s.findReelWithParent(ctx, reelID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceReel, authz.OpUpdate, authz.Target{OwnerID: parent.OwnerID}); err != nil {
		return nil, err
	}

	if in.URL != nil {
		reel.URL = strings.TrimSpace(*in.URL)
	}
	if in.Title != nil {
		reel.Title = s.sanitizer.Sanitize(*in.Title)
	}
	if err := s.validateReel(reel.URL, reel.Title); err != nil {
		return nil, err
	}
	reel.UpdatedAt = s.now()

	if err := s.reels.Update(ctx, reel); err != nil {
		return nil, fmt.Errorf("リールの更新に失敗しました: %w", err)
	}
	return reel, nil
}

// DeleteReel はリールを削除する。親プロフィールの所有者で判定する。
func (s *Service) DeleteReel(ctx context.Context, identity *authz.Identity, reelID string) error {
	reel, parent, err := s.findReelWithParent(ctx, reelID)
	if err != nil {
		return err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceReel, authz.OpDelete, authz.Target{OwnerID: parent.OwnerID}); err != nil {
		return err
	}

	if err := s.reels.Delete(ctx, reel.ID); err != nil {
		return fmt.Errorf("リールの削除に失敗しました: %w", err)
	}
	return nil
}

// findProfile はIDでプロフィールを取得する。存在しない場合はNOT_FOUNDを返す。
func (s *Service) findProfile(ctx context.Context, id string) (*model.CreatorProfile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("クリエイタープロフィール", id)
	}
	return profile, nil
}

// findOwnProfile は呼び出し元が所有するプロフィールを取得する。
// 未認証の場合は所有者が特定できないため、空の対象で認可判定した結果を返す。
func (s *Service) findOwnProfile(ctx context.Context, identity *authz.Identity, resource authz.Resource, op authz.Operation) (*model.CreatorProfile, error) {
	if identity == nil {
		return nil, s.authorizer.Authorize(nil, resource, op, authz.Target{})
	}
	profile, err := s.profiles.FindByOwnerID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("クリエイタープロフィール", "me")
	}
	return profile, nil
}

// findReelWithParent はリールと親プロフィールを取得する。
func (s *Service) findReelWithParent(ctx context.Context, reelID string) (*model.Reel, *model.CreatorProfile, error) {
	reel, err := s.reels.FindByID(ctx, reelID)
	if err != nil {
		return nil, nil, fmt.Errorf("リールの取得に失敗しました: %w", err)
	}
	if reel == nil {
		return nil, nil, model.NewNotFoundError("リール", reelID)
	}

	parent, err := s.profiles.FindByID(ctx, reel.CreatorProfileID)
	if err != nil {
		return nil, nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if parent == nil {
		// 外部キーのCASCADEにより通常は発生しない
		return nil, nil, fmt.Errorf("リール %s の親プロフィール %s が存在しません", reel.ID, reel.CreatorProfileID)
	}
	return reel, parent, nil
}

func (s *Service) validateReel(url, title string) error {
	if err := s.urls.ValidateURL(url); err != nil {
		return model.NewValidationError("リールのURLが不正です")
	}
	if utf8.RuneCountInString(title) > maxReelTitleLength {
		return model.NewValidationError(fmt.Sprintf("タイトルは%d文字以内で指定してください", maxReelTitleLength))
	}
	return nil
}

func validateProfileFields(displayName, bio, niche string, followerCount int) error {
	if displayName == "" {
		return model.NewValidationError("表示名は必須です")
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLength {
		return model.NewValidationError(fmt.Sprintf("表示名は%d文字以内で指定してください", maxDisplayNameLength))
	}
	if utf8.RuneCountInString(bio) > maxBioLength {
		return model.NewValidationError(fmt.Sprintf("自己紹介は%d文字以内で指定してください", maxBioLength))
	}
	if utf8.RuneCountInString(niche) > maxNicheLength {
		return model.NewValidationError(fmt.Sprintf("ジャンルは%d文字以内で指定してください", maxNicheLength))
	}
	if followerCount < 0 {
		return model.NewValidationError("フォロワー数は0以上で指定してください")
	}
	return nil
}
