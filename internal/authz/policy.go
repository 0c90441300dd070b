package authz

import (
	"log/slog"

	"github.com/hitoshi/reelmatch/internal/model"
)

// Resource は認可対象のリソース種別を表す。
type Resource string

const (
	ResourceUser           Resource = "user"
	ResourceCreatorProfile Resource = "creator_profile"
	ResourceBrandProfile   Resource = "brand_profile"
	ResourceReel           Resource = "reel"
	ResourceShortlist      Resource = "shortlist_entry"
	ResourceInquiry        Resource = "inquiry"
	ResourceMessage        Resource = "message"
	ResourceAdmin          Resource = "admin"
)

// RuleKind は判定に使うプリミティブの種類。
type RuleKind int

const (
	// RulePublic は常に許可する。
	RulePublic RuleKind = iota + 1
	// RuleAuthenticated は認証済みであれば許可する。
	RuleAuthenticated
	// RuleRole はロールゲートで判定する。
	RuleRole
	// RuleOwner は所有者判定で判定する。
	RuleOwner
	// RuleParticipant は参加者判定で判定する。
	RuleParticipant
	// RuleAdmin は管理者のみ許可する。
	RuleAdmin
)

// Rule は (リソース, 操作) に対する認可ルール。
type Rule struct {
	Kind       RuleKind
	Role       model.Role // RuleRoleのみ
	Visibility Visibility // RuleOwnerのみ
}

// Target は判定対象リソースの所有者情報。
// 従属リソース（リール、保存リスト、メッセージ）では親リソースの値を設定する。
type Target struct {
	OwnerID      string
	Participants Participants
	// Listed はPublicWhenListedのリソースが公開一覧に掲載中かどうか。
	Listed bool
}

type policyKey struct {
	resource  Resource
	operation Operation
}

// policyTable はリソースごとの認可ルール表。
// 認可の全体像はこの表だけで監査できるようにし、ハンドラーに個別の条件分岐を書かない。
var policyTable = map[policyKey]Rule{
	{ResourceUser, OpRead}:   {Kind: RuleOwner, Visibility: Private},
	{ResourceUser, OpDelete}: {Kind: RuleOwner, Visibility: Private},
	{ResourceUser, OpList}:   {Kind: RuleAdmin},

	{ResourceCreatorProfile, OpCreate}: {Kind: RuleRole, Role: model.RoleCreator},
	{ResourceCreatorProfile, OpRead}:   {Kind: RuleOwner, Visibility: PublicWhenListed},
	{ResourceCreatorProfile, OpList}:   {Kind: RulePublic},
	{ResourceCreatorProfile, OpUpdate}: {Kind: RuleOwner, Visibility: Private},

	{ResourceBrandProfile, OpCreate}: {Kind: RuleRole, Role: model.RoleBrand},
	{ResourceBrandProfile, OpRead}:   {Kind: RuleOwner, Visibility: Private},
	{ResourceBrandProfile, OpUpdate}: {Kind: RuleOwner, Visibility: Private},
	{ResourceBrandProfile, OpList}:   {Kind: RuleAdmin},

	// リールの所有者は親のクリエイタープロフィールの所有者
	{ResourceReel, OpList}:   {Kind: RuleOwner, Visibility: PublicWhenListed},
	{ResourceReel, OpCreate}: {Kind: RuleOwner, Visibility: Private},
	{ResourceReel, OpUpdate}: {Kind: RuleOwner, Visibility: Private},
	{ResourceReel, OpDelete}: {Kind: RuleOwner, Visibility: Private},

	// 保存リストの所有者は親のブランドプロフィールの所有者
	{ResourceShortlist, OpCreate}: {Kind: RuleRole, Role: model.RoleBrand},
	{ResourceShortlist, OpList}:   {Kind: RuleOwner, Visibility: Private},
	{ResourceShortlist, OpDelete}: {Kind: RuleOwner, Visibility: Private},

	{ResourceInquiry, OpCreate}: {Kind: RuleRole, Role: model.RoleBrand},
	{ResourceInquiry, OpList}:   {Kind: RuleAuthenticated},
	{ResourceInquiry, OpRead}:   {Kind: RuleParticipant},
	{ResourceInquiry, OpUpdate}: {Kind: RuleParticipant},

	// メッセージは親の問い合わせの参加者で判定する
	{ResourceMessage, OpList}:   {Kind: RuleParticipant},
	{ResourceMessage, OpCreate}: {Kind: RuleParticipant},

	{ResourceAdmin, OpRead}:   {Kind: RuleAdmin},
	{ResourceAdmin, OpList}:   {Kind: RuleAdmin},
	{ResourceAdmin, OpUpdate}: {Kind: RuleAdmin},
}

// Policy は (リソース, 操作) に対応するルールを返す。
// 表に存在しない組み合わせはfalseを返す。
func Policy(resource Resource, op Operation) (Rule, bool) {
	rule, ok := policyTable[policyKey{resource: resource, operation: op}]
	return rule, ok
}

// Evaluate はルール表に従って認可を判定する。
// 表にない組み合わせはFORBIDDENとして拒否する。
func Evaluate(identity *Identity, resource Resource, op Operation, target Target) Decision {
	rule, ok := Policy(resource, op)
	if !ok {
		return Deny(ReasonForbidden)
	}

	switch rule.Kind {
	case RulePublic:
		return Allow(identity)
	case RuleAuthenticated:
		return RequireIdentity(identity)
	case RuleRole:
		return RequireRole(identity, rule.Role)
	case RuleAdmin:
		return RequireAdmin(identity)
	case RuleOwner:
		return AuthorizeOwned(identity, target.OwnerID, op, effectiveVisibility(rule.Visibility, target))
	case RuleParticipant:
		return AuthorizeParticipant(identity, target.Participants, op)
	default:
		return Deny(ReasonForbidden)
	}
}

func effectiveVisibility(v Visibility, target Target) Visibility {
	if v == PublicWhenListed {
		if target.Listed {
			return Public
		}
		return Private
	}
	return v
}

// Recorder は認可判定の記録先。
type Recorder interface {
	RecordDecision(resource, operation, outcome string)
}

// Authorizer はルール表による判定に、メトリクス記録と拒否ログを加えたもの。
type Authorizer struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewAuthorizer はAuthorizerを生成する。recorderとloggerはnilでもよい。
func NewAuthorizer(recorder Recorder, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{recorder: recorder, logger: logger}
}

// Check は認可を判定し、結果を記録して返す。
func (a *Authorizer) Check(identity *Identity, resource Resource, op Operation, target Target) Decision {
	d := Evaluate(identity, resource, op, target)

	if a.recorder != nil {
		a.recorder.RecordDecision(string(resource), string(op), d.Outcome())
	}

	if !d.Allowed() {
		attrs := []any{
			slog.String("resource", string(resource)),
			slog.String("operation", string(op)),
			slog.String("reason", string(d.Reason)),
		}
		if identity != nil {
			attrs = append(attrs, slog.String("user_id", identity.ID))
		}
		a.logger.Info("authorization denied", attrs...)
	}

	return d
}

// Authorize はCheckの結果をエラーとして返す。
func (a *Authorizer) Authorize(identity *Identity, resource Resource, op Operation, target Target) error {
	return a.Check(identity, resource, op, target).Err()
}
