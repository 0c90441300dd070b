// Package inquiry はブランドからクリエイターへの問い合わせとメッセージのドメインロジックを提供する。
//
// 問い合わせとメッセージへのアクセスは参加者（ブランドプロフィールの所有者と
// クリエイタープロフィールの所有者）とadminに限られる。問い合わせの作成者や
// メッセージの送信者は判定に使わない。
package inquiry

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/repository"
	"github.com/hitoshi/reelmatch/internal/security"
)

const (
	maxSubjectLength = 200
	maxBodyLength    = 5000
	maxMessageLength = 5000
)

// CreateInput は問い合わせ作成の入力。
type CreateInput struct {
	CreatorProfileID string
	Subject          string
	Body             string
}

// Service は問い合わせとメッセージのサービス層。
type Service struct {
	inquiries  repository.InquiryRepository
	messages   repository.MessageRepository
	brands     repository.BrandProfileRepository
	creators   repository.CreatorProfileRepository
	authorizer *authz.Authorizer
	sanitizer  security.TextSanitizer
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	inquiries repository.InquiryRepository,
	messages repository.MessageRepository,
	brands repository.BrandProfileRepository,
	creators repository.CreatorProfileRepository,
	authorizer *authz.Authorizer,
	sanitizer security.TextSanitizer,
) *Service {
	return &Service{
		inquiries:  inquiries,
		messages:   messages,
		brands:     brands,
		creators:   creators,
		authorizer: authorizer,
		sanitizer:  sanitizer,
		now:        time.Now,
	}
}

// Create は呼び出し元のブランドプロフィールから、公開一覧に掲載中のクリエイターへの問い合わせを作成する。
func (s *Service) Create(ctx context.Context, identity *authz.Identity, in CreateInput) (*model.InquiryWithParticipants, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceInquiry, authz.OpCreate, authz.Target{}); err != nil {
		return nil, err
	}

	brand, err := s.brands.FindByOwnerID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("ブランドプロフィールの取得に失敗しました: %w", err)
	}
	if brand == nil {
		return nil, model.NewNotFoundError("ブランドプロフィール", "me")
	}

	creator, err := s.creators.FindByID(ctx, in.CreatorProfileID)
	if err != nil {
		return nil, fmt.Errorf("クリエイタープロフィールの取得に失敗しました: %w", err)
	}
	if creator == nil || !creator.VerificationStatus.Listed() {
		return nil, model.NewNotFoundError("クリエイタープロフィール", in.CreatorProfileID)
	}

	subject := s.sanitizer.Sanitize(in.Subject)
	body := s.sanitizer.Sanitize(in.Body)
	if subject == "" {
		return nil, model.NewValidationError("件名は必須です")
	}
	if utf8.RuneCountInString(subject) > maxSubjectLength {
		return nil, model.NewValidationError(fmt.Sprintf("件名は%d文字以内で指定してください", maxSubjectLength))
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		return nil, model.NewValidationError(fmt.Sprintf("本文は%d文字以内で指定してください", maxBodyLength))
	}

	now := s.now()
	inquiry := &model.Inquiry{
		ID:               uuid.New().String(),
		BrandProfileID:   brand.ID,
		CreatorProfileID: creator.ID,
		CreatedBy:        identity.ID,
		Subject:          subject,
		Body:             body,
		Status:           model.InquiryOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("問い合わせの作成に失敗しました: %w", err)
	}

	return &model.InquiryWithParticipants{
		Inquiry:        *inquiry,
		BrandOwnerID:   brand.OwnerID,
		CreatorOwnerID: creator.OwnerID,
	}, nil
}

// List は呼び出し元が参加者である問い合わせを返す。adminには全件をページ単位で返す。
func (s *Service) List(ctx context.Context, identity *authz.Identity, limit, offset int) ([]*model.InquiryWithParticipants, error) {
	if err := s.authorizer.Authorize(identity, authz.ResourceInquiry, authz.OpList, authz.Target{}); err != nil {
		return nil, err
	}

	var (
		inquiries []*model.InquiryWithParticipants
		err       error
	)
	if identity.IsAdmin() {
		limit, offset = model.NormalizePage(limit, offset)
		inquiries, err = s.inquiries.ListAll(ctx, limit, offset)
	} else {
		inquiries, err = s.inquiries.ListByParticipant(ctx, identity.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("問い合わせ一覧の取得に失敗しました: %w", err)
	}
	return inquiries, nil
}

// Get は指定IDの問い合わせを返す。
func (s *Service) Get(ctx context.Context, identity *authz.Identity, id string) (*model.InquiryWithParticipants, error) {
	inquiry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceInquiry, authz.OpRead, targetOf(inquiry)); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// UpdateStatus は問い合わせの状態を変更する。どちらの参加者も変更できる。
func (s *Service) UpdateStatus(ctx context.Context, identity *authz.Identity, id string, status model.InquiryStatus) (*model.InquiryWithParticipants, error) {
	inquiry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceInquiry, authz.OpUpdate, targetOf(inquiry)); err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, model.NewValidationError("状態は open, accepted, declined, closed のいずれかで指定してください")
	}

	if err := s.inquiries.UpdateStatus(ctx, inquiry.ID, status); err != nil {
		return nil, fmt.Errorf("問い合わせの更新に失敗しました: %w", err)
	}
	inquiry.Status = status
	inquiry.UpdatedAt = s.now()
	return inquiry, nil
}

// ListMessages は問い合わせ内のメッセージを古い順に返す。
// 参加者は送信者に関わらずスレッド内の全メッセージを読み取れる。
func (s *Service) ListMessages(ctx context.Context, identity *authz.Identity, inquiryID string) ([]*model.Message, error) {
	inquiry, err := s.find(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceMessage, authz.OpList, targetOf(inquiry)); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByInquiryID(ctx, inquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("メッセージの取得に失敗しました: %w", err)
	}
	return messages, nil
}

// PostMessage は問い合わせにメッセージを投稿する。
// 判定は親の問い合わせの参加者で行い、空白を除いた本文が空の場合はVALIDATION_ERRORを返す。
func (s *Service) PostMessage(ctx context.Context, identity *authz.Identity, inquiryID, content string) (*model.Message, error) {
	inquiry, err := s.find(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(identity, authz.ResourceMessage, authz.OpCreate, targetOf(inquiry)); err != nil {
		return nil, err
	}

	content = s.sanitizer.Sanitize(content)
	if content == "" {
		return nil, model.NewEmptyMessageError()
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, model.NewValidationError(fmt.Sprintf("メッセージは%d文字以内で指定してください", maxMessageLength))
	}

	message := &model.Message{
		ID:        uuid.New().String(),
		InquiryID: inquiry.ID,
		SenderID:  identity.ID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("メッセージの投稿に失敗しました: %w", err)
	}
	return message, nil
}

// find は問い合わせを参加者情報付きで取得する。存在しない場合はNOT_FOUNDを返す。
func (s *Service) find(ctx context.Context, id string) (*model.InquiryWithParticipants, error) {
	inquiry, err := s.inquiries.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("問い合わせの取得に失敗しました: %w", err)
	}
	if inquiry == nil {
		return nil, model.NewNotFoundError("問い合わせ", id)
	}
	return inquiry, nil
}

func targetOf(inquiry *model.InquiryWithParticipants) authz.Target {
	return authz.Target{
		Participants: authz.Participants{
			BrandOwnerID:   inquiry.BrandOwnerID,
			CreatorOwnerID: inquiry.CreatorOwnerID,
		},
	}
}
