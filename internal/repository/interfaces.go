// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/reelmatch/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。IDの重複はDuplicateErrorを返す。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーを作成日時順で返す。
	List(ctx context.Context, limit, offset int) ([]*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するプロフィール、リール、保存リスト、問い合わせ、メッセージはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// CreatorProfileRepository はクリエイタープロフィールの永続化インターフェース。
// owner_id と handle にはそれぞれ一意制約がある。
type CreatorProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.CreatorProfile, error)

	// FindByOwnerID は所有者IDでプロフィールを取得する。見つからない場合はnilを返す。
	FindByOwnerID(ctx context.Context, ownerID string) (*model.CreatorProfile, error)

	// FindByHandle はハンドルでプロフィールを取得する。見つからない場合はnilを返す。
	FindByHandle(ctx context.Context, handle string) (*model.CreatorProfile, error)

	// Create はプロフィールを作成する。一意制約違反はDuplicateErrorを返す。
	Create(ctx context.Context, profile *model.CreatorProfile) error

	// Update は表示名、自己紹介、ジャンル、フォロワー数を更新する。
	// owner_id、handle、verification_statusは更新しない。
	Update(ctx context.Context, profile *model.CreatorProfile) error

	// UpdateVerificationStatus は審査状態を更新する。
	UpdateVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error

	// ListByStatuses は指定した審査状態のプロフィールを返す。
	// nicheが空でない場合はジャンルで絞り込む。
	ListByStatuses(ctx context.Context, statuses []model.VerificationStatus, niche string, limit, offset int) ([]*model.CreatorProfile, error)
}

// BrandProfileRepository はブランドプロフィールの永続化インターフェース。
// owner_id には一意制約がある。
type BrandProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.BrandProfile, error)

	// FindByOwnerID は所有者IDでプロフィールを取得する。見つからない場合はnilを返す。
	FindByOwnerID(ctx context.Context, ownerID string) (*model.BrandProfile, error)

	// Create はプロフィールを作成する。一意制約違反はDuplicateErrorを返す。
	Create(ctx context.Context, profile *model.BrandProfile) error

	// Update は会社名、Webサイト、業種を更新する。
	Update(ctx context.Context, profile *model.BrandProfile) error

	// List は全ブランドプロフィールを返す。
	List(ctx context.Context, limit, offset int) ([]*model.BrandProfile, error)
}

// ReelRepository はリールの永続化インターフェース。
type ReelRepository interface {
	// FindByID は指定IDのリールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Reel, error)

	// ListByCreatorProfileID はクリエイタープロフィールのリール一覧を返す。
	ListByCreatorProfileID(ctx context.Context, creatorProfileID string) ([]*model.Reel, error)

	// Create はリールを作成する。
	Create(ctx context.Context, reel *model.Reel) error

	// Update はURLとタイトルを更新する。
	Update(ctx context.Context, reel *model.Reel) error

	// Delete は指定IDのリールを削除する。
	Delete(ctx context.Context, id string) error
}

// ShortlistRepository は保存リストの永続化インターフェース。
// (brand_profile_id, creator_profile_id) には一意制約がある。
type ShortlistRepository interface {
	// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ShortlistEntry, error)

	// ListByBrandProfileID はブランドの保存リストを返す。
	ListByBrandProfileID(ctx context.Context, brandProfileID string) ([]*model.ShortlistEntry, error)

	// Create はエントリを作成する。一意制約違反はDuplicateErrorを返す。
	Create(ctx context.Context, entry *model.ShortlistEntry) error

	// Delete は指定IDのエントリを削除する。
	Delete(ctx context.Context, id string) error
}

// InquiryRepository は問い合わせの永続化インターフェース。
type InquiryRepository interface {
	// FindByID は指定IDの問い合わせを参加者情報付きで取得する。見つからない場合はnilを返す。
	// 参加者は両プロフィールの owner_id をJOINして求める。
	FindByID(ctx context.Context, id string) (*model.InquiryWithParticipants, error)

	// ListByParticipant は指定ユーザーが参加者である問い合わせを新しい順に返す。
	ListByParticipant(ctx context.Context, userID string) ([]*model.InquiryWithParticipants, error)

	// ListAll は全問い合わせを新しい順に返す。
	ListAll(ctx context.Context, limit, offset int) ([]*model.InquiryWithParticipants, error)

	// Create は問い合わせを作成する。
	Create(ctx context.Context, inquiry *model.Inquiry) error

	// UpdateStatus は問い合わせの状態を更新する。
	UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) error
}

// MessageRepository はメッセージの永続化インターフェース。
type MessageRepository interface {
	// ListByInquiryID は問い合わせ内のメッセージを古い順に返す。
	ListByInquiryID(ctx context.Context, inquiryID string) ([]*model.Message, error)

	// Create はメッセージを作成する。
	Create(ctx context.Context, message *model.Message) error
}
