package model

import "time"

// VerificationStatus はクリエイタープロフィールの審査状態を表す。
type VerificationStatus string

const (
	// VerificationPending は審査待ち。
	VerificationPending VerificationStatus = "pending"
	// VerificationVerified は審査済み。
	VerificationVerified VerificationStatus = "verified"
	// VerificationRejected は却下または停止中。
	VerificationRejected VerificationStatus = "rejected"
)

// Valid は審査状態が定義済みの値かどうかを返す。
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// Listed は公開一覧に掲載される状態かどうかを返す。
func (s VerificationStatus) Listed() bool {
	return s == VerificationVerified || s == VerificationPending
}

// CanTransitionTo は審査状態の遷移が許可されているかを返す。
//
//	pending  -> verified | rejected
//	verified -> rejected
//	rejected -> verified
//
// 同一状態への遷移や pending への戻りは許可しない。
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	switch s {
	case VerificationPending:
		return next == VerificationVerified || next == VerificationRejected
	case VerificationVerified:
		return next == VerificationRejected
	case VerificationRejected:
		return next == VerificationVerified
	default:
		return false
	}
}

// VerificationAction は管理者による審査操作を表す。
type VerificationAction string

const (
	ActionVerify     VerificationAction = "verify"
	ActionReject     VerificationAction = "reject"
	ActionSuspend    VerificationAction = "suspend"
	ActionReactivate VerificationAction = "reactivate"
)

// Apply は現在の状態に審査操作を適用した遷移先を返す。
// 操作が現在の状態に適用できない場合はInvalidTransitionエラーを返す。
// suspend/reactivateは独立したフラグではなく verified と rejected の付け替えとして扱う。
func (a VerificationAction) Apply(current VerificationStatus) (VerificationStatus, error) {
	var next VerificationStatus
	var allowedFrom []VerificationStatus

	switch a {
	case ActionVerify:
		next = VerificationVerified
		allowedFrom = []VerificationStatus{VerificationPending, VerificationRejected}
	case ActionReject:
		next = VerificationRejected
		allowedFrom = []VerificationStatus{VerificationPending}
	case ActionSuspend:
		next = VerificationRejected
		allowedFrom = []VerificationStatus{VerificationVerified}
	case ActionReactivate:
		next = VerificationVerified
		allowedFrom = []VerificationStatus{VerificationRejected}
	default:
		return "", NewValidationError("不明な審査操作です: " + string(a))
	}

	for _, from := range allowedFrom {
		if current == from && current.CanTransitionTo(next) {
			return next, nil
		}
	}
	return "", NewInvalidTransitionError(current, next)
}

// CreatorProfile はクリエイターの公開プロフィールを表す。
// OwnerIDは作成後に変更されない。
type CreatorProfile struct {
	ID                 string
	OwnerID            string
	Handle             string
	DisplayName        string
	Bio                string
	Niche              string
	FollowerCount      int
	VerificationStatus VerificationStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SubscriptionStatus はブランドの契約状態を表す。
type SubscriptionStatus string

const (
	// SubscriptionTrialing は無料トライアル期間中。
	SubscriptionTrialing SubscriptionStatus = "trialing"
	// SubscriptionActive は有料契約中。
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionExpired はトライアル期間終了。
	SubscriptionExpired SubscriptionStatus = "expired"
)

// BrandProfile はブランド（企業）のプロフィールを表す。
// OwnerIDは作成後に変更されない。
type BrandProfile struct {
	ID                 string
	OwnerID            string
	CompanyName        string
	Website            string
	Industry           string
	SubscriptionStatus SubscriptionStatus
	TrialEndsAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Reel はクリエイターが掲載する外部動画への参照。
// 認可は親のクリエイタープロフィールの所有者で判定する。
type Reel struct {
	ID               string
	CreatorProfileID string
	URL              string
	Title            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ShortlistEntry はブランドが気になるクリエイターを保存したエントリ。
// 認可は親のブランドプロフィールの所有者で判定する。
type ShortlistEntry struct {
	ID               string
	BrandProfileID   string
	CreatorProfileID string
	Note             string
	CreatedAt        time.Time
}
