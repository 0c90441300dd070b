package handler

import (
	"time"

	"github.com/hitoshi/reelmatch/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toUserResponses(users []*model.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// creatorProfileResponse はクリエイタープロフィールのAPIレスポンス。
type creatorProfileResponse struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"owner_id"`
	Handle             string    `json:"handle"`
	DisplayName        string    `json:"display_name"`
	Bio                string    `json:"bio"`
	Niche              string    `json:"niche"`
	FollowerCount      int       `json:"follower_count"`
	VerificationStatus string    `json:"verification_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toCreatorProfileResponse(p *model.CreatorProfile) creatorProfileResponse {
	return creatorProfileResponse{
		ID:                 p.ID,
		OwnerID:            p.OwnerID,
		Handle:             p.Handle,
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		Niche:              p.Niche,
		FollowerCount:      p.FollowerCount,
		VerificationStatus: string(p.VerificationStatus),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toCreatorProfileResponses(profiles []*model.CreatorProfile) []creatorProfileResponse {
	out := make([]creatorProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toCreatorProfileResponse(p))
	}
	return out
}

// brandProfileResponse はブランドプロフィールのAPIレスポンス。
type brandProfileResponse struct {
	ID                 string     `json:"id"`
	OwnerID            string     `json:"owner_id"`
	CompanyName        string     `json:"company_name"`
	Website            string     `json:"website"`
	Industry           string     `json:"industry"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toBrandProfileResponse(p *model.BrandProfile) brandProfileResponse {
	return brandProfileResponse{
		ID:                 p.ID,
		OwnerID:            p.OwnerID,
		CompanyName:        p.CompanyName,
		Website:            p.Website,
		Industry:           p.Industry,
		SubscriptionStatus: string(p.SubscriptionStatus),
		TrialEndsAt:        p.TrialEndsAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toBrandProfileResponses(profiles []*model.BrandProfile) []brandProfileResponse {
	out := make([]brandProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toBrandProfileResponse(p))
	}
	return out
}

// reelResponse はリールのAPIレスポンス。
type reelResponse struct {
	ID               string    `json:"id"`
	CreatorProfileID string    `json:"creator_profile_id"`
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toReelResponse(r *model.Reel) reelResponse {
	return reelResponse{
		ID:               r.ID,
		CreatorProfileID: r.CreatorProfileID,
		URL:              r.URL,
		Title:            r.Title,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toReelResponses(reels []*model.Reel) []reelResponse {
	out := make([]reelResponse, 0, len(reels))
	for _, r := range reels {
		out = append(out, toReelResponse(r))
	}
	return out
}

// shortlistEntryResponse は保存リストのエントリのAPIレスポンス。
type shortlistEntryResponse struct {
	ID               string    `json:"id"`
	BrandProfileID   string    `json:"brand_profile_id"`
	CreatorProfileID string    `json:"creator_profile_id"`
	Note             string    `json:"note"`
	CreatedAt        time.Time `json:"created_at"`
}

func toShortlistEntryResponse(e *model.ShortlistEntry) shortlistEntryResponse {
	return shortlistEntryResponse{
		ID:               e.ID,
		BrandProfileID:   e.BrandProfileID,
		CreatorProfileID: e.CreatorProfileID,
		Note:             e.Note,
		CreatedAt:        e.CreatedAt,
	}
}

func toShortlistEntryResponses(entries []*model.ShortlistEntry) []shortlistEntryResponse {
	out := make([]shortlistEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toShortlistEntryResponse(e))
	}
	return out
}

// inquiryResponse は問い合わせのAPIレスポンス。
type inquiryResponse struct {
	ID               string    `json:"id"`
	BrandProfileID   string    `json:"brand_profile_id"`
	CreatorProfileID string    `json:"creator_profile_id"`
	CreatedBy        string    `json:"created_by"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toInquiryResponse(i *model.InquiryWithParticipants) inquiryResponse {
	return inquiryResponse{
		ID:               i.ID,
		BrandProfileID:   i.BrandProfileID,
		CreatorProfileID: i.CreatorProfileID,
		CreatedBy:        i.CreatedBy,
		Subject:          i.Subject,
		Body:             i.Body,
		Status:           string(i.Status),
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

func toInquiryResponses(inquiries []*model.InquiryWithParticipants) []inquiryResponse {
	out := make([]inquiryResponse, 0, len(inquiries))
	for _, i := range inquiries {
		out = append(out, toInquiryResponse(i))
	}
	return out
}

// messageResponse はメッセージのAPIレスポンス。
type messageResponse struct {
	ID        string    `json:"id"`
	InquiryID string    `json:"inquiry_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageResponse(m *model.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		InquiryID: m.InquiryID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageResponses(messages []*model.Message) []messageResponse {
	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	return out
}
