package authz

// Operation はリソースに対する操作を表す。
type Operation string

const (
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// IsRead は読み取り操作かどうかを返す。
func (o Operation) IsRead() bool {
	return o == OpRead || o == OpList
}

// Visibility はリソースの読み取り公開範囲を表す。
type Visibility int

const (
	// Private は所有者とadminのみ読み取れる。
	Private Visibility = iota
	// Public は誰でも読み取れる。
	Public
	// PublicWhenListed は公開一覧に掲載中の場合のみ誰でも読み取れ、それ以外はPrivate。
	PublicWhenListed
)

// AuthorizeOwned は単一の所有者を持つリソースへの操作を判定する。
//
// 公開リソースの読み取りはidentityに関係なく許可する。
// それ以外は identity.ID == ownerID または admin の場合のみ許可する。
// 所有者の判定はownerIDのみで行い、メールアドレス等の他の属性は使わない。
func AuthorizeOwned(identity *Identity, ownerID string, op Operation, visibility Visibility) Decision {
	if op.IsRead() && visibility == Public {
		return Allow(identity)
	}
	if identity == nil {
		return Deny(ReasonUnauthenticated)
	}
	if identity.IsAdmin() {
		return Allow(identity)
	}
	if ownerID != "" && identity.ID == ownerID {
		return Allow(identity)
	}
	return Deny(ReasonForbidden)
}
