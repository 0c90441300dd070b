package authz

import "github.com/hitoshi/reelmatch/internal/model"

// RequireIdentity は認証済みであることだけを要求する。
func RequireIdentity(identity *Identity) Decision {
	if identity == nil {
		return Deny(ReasonUnauthenticated)
	}
	return Allow(identity)
}

// RequireRole は指定ロールを要求する。adminは任意の単一ロール要求を満たす。
func RequireRole(identity *Identity, role model.Role) Decision {
	if identity == nil {
		return Deny(ReasonUnauthenticated)
	}
	if !satisfies(identity.Role, role) {
		return Deny(ReasonForbidden)
	}
	return Allow(identity)
}

// RequireAdmin は管理者のみを許可する。
func RequireAdmin(identity *Identity) Decision {
	return RequireRole(identity, model.RoleAdmin)
}

// satisfies はロールhaveが要求ロールwantを満たすかを返す。
// 未定義のロールはいかなる要求も満たさない。
func satisfies(have, want model.Role) bool {
	switch have {
	case model.RoleAdmin:
		return true
	case model.RoleCreator, model.RoleBrand:
		return have == want
	default:
		return false
	}
}
