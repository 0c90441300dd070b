// Package brand はブランドプロフィールと保存リストのドメインロジックを提供する。
package brand

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/repository"
	"github.com/hitoshi/reelmatch/internal/security"
)

// DefaultTrialPeriod はブランドプロフィール作成時に付与する無料トライアル期間。
const DefaultTrialPeriod = 7 * 24 * time.Hour

const (
	maxCompanyNameLength = 200
	maxIndustryLength    = 100
	maxNoteLength        = 500
)

// CreateInput はブランドプロフィール作成の入力。
type CreateInput struct {
	CompanyName string
	Website     string
	Industry    string
}

// UpdateInput はブランドプロフィール更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	CompanyName *string
	Website     *string
	Industry    *string
}

// ShortlistInput は保存リストへの追加の入力。
type ShortlistInput struct {
	CreatorProfileID string
	Note             string
}

// Service はブランドプロフィールと保存リストのサービス層。
type Service struct {
	brands      repository.BrandProfileRepository
	creators    repository.CreatorProfileRepository
	shortlist   repository.ShortlistRepository
	authorizer  *authz.Authorizer
	sanitizer   security.TextSanitizer
	urls        security.URLValidator
	trialPeriod time.Duration
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// trialPeriodが0以下の場合はDefaultTrialPeriodを使用する。
func NewService(
	brands repository.BrandProfileRepository,
	creators repository.CreatorProfileRepository,
	shortlist repository.ShortlistRepository,
	authorizer *authz.Authorizer,
	sanitizer security.TextSanitizer,
	urls security.URLValidator,
	trialPeriod time.Duration,
) *Service {
	if trialPeriod <= 0 {
		trialPeriod = DefaultTrialPeriod
	}
	return &Service{
		brands:      brands,
		creators:    creators,
		shortlist:   shortlist,
		authorizer:  authorizer,
		sanitizer:   sanitizer,
		urls:        urls,
		trialPeriod: trialPeriod,
		now:         time.Now,
	}
}

// Create は呼び出し元を所有者とするブランドプロフィールを作成し、作成時刻からトライアル期間を設定する。
// 既存プロフィールの確認は事前チェックであり、一意制約違反も同じCONFLICTとして返す。
func (s *Service) Create(ctx context.Context, identity *authz.Identity, in CreateInput) (*model.BrandProfile, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceBrandProfile, authz.OpCreate, authz.Target{}); err != nil {
		return nil, err
	}

	profile := &model.BrandProfile{
		CompanyName: s.sanitizer.Sanitize(in.CompanyName),
		Website:     strings.TrimSpace(in.Website),
		Industry:    s.sanitizer.Sanitize(in.Industry),
	}
	if err := s.validate(profile); err != nil {
		return nil, err
	}

	existing, err := s.brands.FindByOwnerID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("ブランドプロフィールの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewProfileExistsError()
	}

	now := s.now()
	trialEndsAt := now.Add(s.trialPeriod)
	profile.ID = uuid.New().String()
	profile.OwnerID = identity.ID
	profile.SubscriptionStatus = model.SubscriptionTrialing
	profile.TrialEndsAt = &trialEndsAt
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := s.brands.Create(ctx, profile); err != nil {
		if _, dup := repository.DuplicateConstraint(err); dup {
			return nil, model.NewProfileExistsError()
		}
		return nil, fmt.Errorf("ブランドプロフィールの作成に失敗しました: %w", err)
	}

	return profile, nil
}

// Get は指定IDのブランドプロフィールを返す。所有者とadminのみ読み取れる。
func (s *Service) Get(ctx context.Context, identity *authz.Identity, id string) (*model.BrandProfile, error) {
	profile, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ブランドプロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("ブランドプロフィール", id)
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceBrandProfile, authz.OpRead, authz.Target{OwnerID: profile.OwnerID}); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetMine は呼び出し元自身のブランドプロフィールを返す。
func (s *Service) GetMine(ctx context.Context, identity *authz.Identity) (*model.BrandProfile, error) {
	profile, err := s.findOwnProfile(ctx, identity, authz.ResourceBrandProfile, authz.OpRead)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceBrandProfile, authz.OpRead, authz.Target{OwnerID: profile.OwnerID}); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateMine は呼び出し元自身のブランドプロフィールを更新する。
// 契約状態とトライアル期限は変更できない。
func (s *Service) UpdateMine(ctx context.Context, identity *authz.Identity, in UpdateInput) (*model.BrandProfile, error) {
	profile, err := s.findOwnProfile(ctx, identity, authz.ResourceBrandProfile, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceBrandProfile, authz.OpUpdate, authz.Target{OwnerID: profile.OwnerID}); err != nil {
		return nil, err
	}

	if in.CompanyName != nil {
		profile.CompanyName = s.sanitizer.Sanitize(*in.CompanyName)
	}
	if in.Website != nil {
		profile.Website = strings.TrimSpace(*in.Website)
	}
	if in.Industry != nil {
		profile.Industry = s.sanitizer.Sanitize(*in.Industry)
	}
	if err := s.validate(profile); err != nil {
		return nil, err
	}
	profile.UpdatedAt = s.now()

	if err := s.brands.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("ブランドプロフィールの更新に失敗しました: %w", err)
	}
	return profile, nil
}

// ListShortlist は呼び出し元のブランドの保存リストを返す。
func (s *Service) ListShortlist(ctx context.Context, identity *authz.Identity) ([]*model.ShortlistEntry, error) {
	profile, err := s.findOwnProfile(ctx, identity, authz.ResourceShortlist, authz.OpList)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceShortlist, authz.OpList, authz.Target{OwnerID: profile.OwnerID}); err != nil {
		return nil, err
	}

	entries, err := s.shortlist.ListByBrandProfileID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("保存リストの取得に失敗しました: %w", err)
	}
	return entries, nil
}

// AddToShortlist は公開一覧に掲載中のクリエイターを呼び出し元のブランドの保存リストに追加する。
func (s *Service) AddToShortlist(ctx context.Context, identity *authz.Identity, in ShortlistInput) (*model.ShortlistEntry, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceShortlist, authz.OpCreate, authz.Target{}); err != nil {
		return nil, err
	}

	profile, err := s.findOwnProfile(ctx, identity, authz.ResourceShortlist, authz.OpCreate)
	if err != nil {
		return nil, err
	}

	creator, err := s.creators.FindByID(ctx, in.CreatorProfileID)
	if err != nil {
		return nil, fmt.Errorf("クリエイタープロフィールの取得に失敗しました: %w", err)
	}
	if creator == nil || !creator.VerificationStatus.Listed() {
		return nil, model.NewNotFoundError("クリエイタープロフィール", in.CreatorProfileID)
	}

	note := s.sanitizer.Sanitize(in.Note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, model.NewValidationError(fmt.Sprintf("メモは%d文字以内で指定してください", maxNoteLength))
	}

	entry := &model.ShortlistEntry{
		ID:               uuid.New().String(),
		BrandProfileID:   profile.ID,
		CreatorProfileID: creator.ID,
		Note:             note,
		CreatedAt:        s.now(),
	}
	if err := s.shortlist.Create(ctx, entry); err != nil {
		if _, dup := repository.DuplicateConstraint(err); dup {
			return nil, model.NewDuplicateShortlistError()
		}
		return nil, fmt.Errorf("保存リストへの追加に失敗しました: %w", err)
	}
	return entry, nil
}

// RemoveFromShortlist は保存リストのエントリを削除する。親のブランドプロフィールの所有者で判定する。
func (s *Service) RemoveFromShortlist(ctx context.Context, identity *authz.Identity, entryID string) error {
	entry, err := s.shortlist.FindByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("保存リストの取得に失敗しました: %w", err)
	}
	if entry == nil {
		return model.NewNotFoundError("保存リストのエントリ", entryID)
	}

	parent, err := s.brands.FindByID(ctx, entry.BrandProfileID)
	if err != nil {
		return fmt.Errorf("ブランドプロフィールの取得に失敗しました: %w", err)
	}
	if parent == nil {
		return fmt.Errorf("エントリ %s の親プロフィール %s が存在しません", entry.ID, entry.BrandProfileID)
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceShortlist, authz.OpDelete, authz.Target{OwnerID: parent.OwnerID}); err != nil {
		return err
	}

	if err := s.shortlist.Delete(ctx, entry.ID); err != nil {
		return fmt.Errorf("保存リストからの削除に失敗しました: %w", err)
	}
	return nil
}

// findOwnProfile は呼び出し元が所有するブランドプロフィールを取得する。
func (s *Service) findOwnProfile(ctx context.Context, identity *authz.Identity, resource authz.Resource, op authz.Operation) (*model.BrandProfile, error) {
	if identity == nil {
		return nil, s.authorizer.Authorize(nil, resource, op, authz.Target{})
	}
	profile, err := s.brands.FindByOwnerID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("ブランドプロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError("ブランドプロフィール", "me")
	}
	return profile, nil
}

func (s *Service) validate(p *model.BrandProfile) error {
	if p.CompanyName == "" {
		return model.NewValidationError("会社名は必須です")
	}
	if utf8.RuneCountInString(p.CompanyName) > maxCompanyNameLength {
		return model.NewValidationError(fmt.Sprintf("会社名は%d文字以内で指定してください", maxCompanyNameLength))
	}
	if utf8.RuneCountInString(p.Industry) > maxIndustryLength {
		return model.NewValidationError(fmt.Sprintf("業種は%d文字以内で指定してください", maxIndustryLength))
	}
	if p.Website != "" {
		if err := s.urls.ValidateURL(p.Website); err != nil {
			return model.NewValidationError("WebサイトのURLが不正です")
		}
	}
	return nil
}
