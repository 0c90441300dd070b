package authz

import (
	"testing"

	"github.com/hitoshi/reelmatch/internal/model"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		role     model.Role
		want     Reason
	}{
		{"未認証は拒否", nil, model.RoleCreator, ReasonUnauthenticated},
		{"一致するロールは許可", &Identity{ID: "u1", Role: model.RoleCreator}, model.RoleCreator, ReasonNone},
		{"異なるロールは拒否", &Identity{ID: "u1", Role: model.RoleBrand}, model.RoleCreator, ReasonForbidden},
		{"adminはcreator要求を満たす", &Identity{ID: "a1", Role: model.RoleAdmin}, model.RoleCreator, ReasonNone},
		{"adminはbrand要求を満たす", &Identity{ID: "a1", Role: model.RoleAdmin}, model.RoleBrand, ReasonNone},
		{"creatorはadmin要求を満たさない", &Identity{ID: "u1", Role: model.RoleCreator}, model.RoleAdmin, ReasonForbidden},
		{"未定義ロールは拒否", &Identity{ID: "u1", Role: model.Role("owner")}, model.RoleCreator, ReasonForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RequireRole(tt.identity, tt.role)
			if d.Reason != tt.want {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.want)
			}
			if d.Allowed() && d.Identity != tt.identity {
				t.Error("許可時は呼び出し元のidentityを返すべき")
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if d := RequireAdmin(nil); d.Reason != ReasonUnauthenticated {
		t.Errorf("nil identity: Reason = %q, want UNAUTHENTICATED", d.Reason)
	}
	if d := RequireAdmin(&Identity{ID: "b1", Role: model.RoleBrand}); d.Reason != ReasonForbidden {
		t.Errorf("brand: Reason = %q, want FORBIDDEN", d.Reason)
	}
	if d := RequireAdmin(&Identity{ID: "a1", Role: model.RoleAdmin}); !d.Allowed() {
		t.Errorf("admin: Reason = %q, want allow", d.Reason)
	}
}

func TestDecision_Err(t *testing.T) {
	if err := Allow(nil).Err(); err != nil {
		t.Errorf("Allow.Err() = %v, want nil", err)
	}

	err := Deny(ReasonUnauthenticated).Err()
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeUnauthenticated {
		t.Errorf("Deny(UNAUTHENTICATED).Err() = %v, want UNAUTHENTICATED APIError", err)
	}

	err = Deny(ReasonForbidden).Err()
	apiErr, ok = err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("Deny(FORBIDDEN).Err() = %v, want FORBIDDEN APIError", err)
	}
}
