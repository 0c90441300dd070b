package authz

// Participants は2者間リソース（問い合わせ）の参加者。
// 問い合わせが参照するブランドプロフィールとクリエイタープロフィールそれぞれの所有者IDであり、
// 問い合わせの作成者IDではない。
type Participants struct {
	BrandOwnerID   string
	CreatorOwnerID string
}

// Contains は指定ユーザーIDが参加者に含まれるかを返す。
func (p Participants) Contains(userID string) bool {
	if userID == "" {
		return false
	}
	return userID == p.BrandOwnerID || userID == p.CreatorOwnerID
}

// AuthorizeParticipant は参加者のみがアクセスできるリソースへの操作を判定する。
// 問い合わせ内のメッセージも、送信者ではなく親の問い合わせの参加者で判定する。
func AuthorizeParticipant(identity *Identity, participants Participants, op Operation) Decision {
	if identity == nil {
		return Deny(ReasonUnauthenticated)
	}
	if identity.IsAdmin() {
		return Allow(identity)
	}
	if participants.Contains(identity.ID) {
		return Allow(identity)
	}
	return Deny(ReasonForbidden)
}
