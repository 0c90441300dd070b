package model

import "time"

// InquiryStatus は問い合わせの状態を表す。
type InquiryStatus string

const (
	InquiryOpen     InquiryStatus = "open"
	InquiryAccepted InquiryStatus = "accepted"
	InquiryDeclined InquiryStatus = "declined"
	InquiryClosed   InquiryStatus = "closed"
)

// Valid は問い合わせ状態が定義済みの値かどうかを返す。
func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryOpen, InquiryAccepted, InquiryDeclined, InquiryClosed:
		return true
	default:
		return false
	}
}

// Inquiry はブランドからクリエイターへの問い合わせスレッド。
// 参加者はブランドプロフィールとクリエイタープロフィールそれぞれの所有者であり、
// CreatedByは参加者の判定に使わない。
type Inquiry struct {
	ID               string
	BrandProfileID   string
	CreatorProfileID string
	CreatedBy        string
	Subject          string
	Body             string
	Status           InquiryStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InquiryWithParticipants は問い合わせと、参加者判定に必要な両プロフィールの所有者IDを結合したもの。
type InquiryWithParticipants struct {
	Inquiry
	BrandOwnerID   string
	CreatorOwnerID string
}

// Message は問い合わせスレッド内のメッセージ。
// 認可は親の問い合わせの参加者で判定し、SenderIDは使わない。
type Message struct {
	ID        string
	InquiryID string
	SenderID  string
	Content   string
	CreatedAt time.Time
}
