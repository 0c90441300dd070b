package inquiry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/security"
)

// --- モック ---

type mockInquiryRepo struct {
	inquiries         map[string]*model.InquiryWithParticipants
	created           *model.Inquiry
	updatedStatus     model.InquiryStatus
	listParticipantID string
	listAllCalled     bool
}

func (m *mockInquiryRepo) FindByID(ctx context.Context, id string) (*model.InquiryWithParticipants, error) {
	if i, ok := m.inquiries[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, nil
}

func (m *mockInquiryRepo) ListByParticipant(ctx context.Context, userID string) ([]*model.InquiryWithParticipants, error) {
	m.listParticipantID = userID
	var result []*model.InquiryWithParticipants
	for _, i := range m.inquiries {
		if i.BrandOwnerID == userID || i.CreatorOwnerID == userID {
			result = append(result, i)
		}
	}
	return result, nil
}

func (m *mockInquiryRepo) ListAll(ctx context.Context, limit, offset int) ([]*model.InquiryWithParticipants, error) {
	m.listAllCalled = true
	var result []*model.InquiryWithParticipants
	for _, i := range m.inquiries {
		result = append(result, i)
	}
	return result, nil
}

func (m *mockInquiryRepo) Create(ctx context.Context, inquiry *model.Inquiry) error {
	m.created = inquiry
	return nil
}

func (m *mockInquiryRepo) UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) error {
	m.updatedStatus = status
	return nil
}

type mockMessageRepo struct {
	messages []*model.Message
	created  *model.Message
}

func (m *mockMessageRepo) ListByInquiryID(ctx context.Context, inquiryID string) ([]*model.Message, error) {
	var result []*model.Message
	for _, msg := range m.messages {
		if msg.InquiryID == inquiryID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (m *mockMessageRepo) Create(ctx context.Context, message *model.Message) error {
	m.created = message
	return nil
}

type mockBrandRepo struct {
	byOwner map[string]*model.BrandProfile
}

func (m *mockBrandRepo) FindByID(ctx context.Context, id string) (*model.BrandProfile, error) {
	return nil, nil
}
func (m *mockBrandRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.BrandProfile, error) {
	return m.byOwner[ownerID], nil
}
func (m *mockBrandRepo) Create(ctx context.Context, profile *model.BrandProfile) error { return nil }
func (m *mockBrandRepo) Update(ctx context.Context, profile *model.BrandProfile) error { return nil }
func (m *mockBrandRepo) List(ctx context.Context, limit, offset int) ([]*model.BrandProfile, error) {
	return nil, nil
}

type mockCreatorRepo struct {
	byID map[string]*model.CreatorProfile
}

func (m *mockCreatorRepo) FindByID(ctx context.Context, id string) (*model.CreatorProfile, error) {
	return m.byID[id], nil
}
func (m *mockCreatorRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.CreatorProfile, error) {
	return nil, nil
}
func (m *mockCreatorRepo) FindByHandle(ctx context.Context, handle string) (*model.CreatorProfile, error) {
	return nil, nil
}
func (m *mockCreatorRepo) Create(ctx context.Context, profile *model.CreatorProfile) error {
	return nil
}
func (m *mockCreatorRepo) Update(ctx context.Context, profile *model.CreatorProfile) error {
	return nil
}
func (m *mockCreatorRepo) UpdateVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error {
	return nil
}
func (m *mockCreatorRepo) ListByStatuses(ctx context.Context, statuses []model.VerificationStatus, niche string, limit, offset int) ([]*model.CreatorProfile, error) {
	return nil, nil
}

// --- ヘルパー ---

var (
	brandB1   = &authz.Identity{ID: "B1", Role: model.RoleBrand}
	creatorC1 = &authz.Identity{ID: "C1", Role: model.RoleCreator}
	outsider  = &authz.Identity{ID: "U3", Role: model.RoleBrand}
	creatorX  = &authz.Identity{ID: "X", Role: model.RoleCreator}
	adminA1   = &authz.Identity{ID: "A1", Role: model.RoleAdmin}
)

type fixture struct {
	inquiries *mockInquiryRepo
	messages  *mockMessageRepo
	svc       *Service
}

// newFixture は B1 のブランドと C1 のクリエイター間の問い合わせ I1 を用意する。
// I1 の作成者は参加者ではない X とする。
func newFixture() *fixture {
	f := &fixture{
		inquiries: &mockInquiryRepo{inquiries: map[string]*model.InquiryWithParticipants{
			"I1": {
				Inquiry: model.Inquiry{
					ID: "I1", BrandProfileID: "P1", CreatorProfileID: "CP1",
					CreatedBy: "X", Subject: "Campaign", Status: model.InquiryOpen,
				},
				BrandOwnerID:   "B1",
				CreatorOwnerID: "C1",
			},
		}},
		messages: &mockMessageRepo{messages: []*model.Message{
			{ID: "m1", InquiryID: "I1", SenderID: "B1", Content: "hello"},
			{ID: "m2", InquiryID: "I1", SenderID: "C1", Content: "hi"},
		}},
	}
	brands := &mockBrandRepo{byOwner: map[string]*model.BrandProfile{
		"B1": {ID: "P1", OwnerID: "B1"},
	}}
	creators := &mockCreatorRepo{byID: map[string]*model.CreatorProfile{
		"CP1":    {ID: "CP1", OwnerID: "C1", VerificationStatus: model.VerificationVerified},
		"CP-rej": {ID: "CP-rej", OwnerID: "C2", VerificationStatus: model.VerificationRejected},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(f.inquiries, f.messages, brands, creators, authz.NewAuthorizer(nil, logger), security.NewTextSanitizer())
	return f
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
}

// --- メッセージ ---

func TestPostMessage_ParticipantScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.PostMessage(ctx, outsider, "I1", "let me in")
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
	if f.messages.created != nil {
		t.Fatal("message must not be stored for a non-participant")
	}

	msg, err := f.svc.PostMessage(ctx, brandB1, "I1", "  Looking forward to working with you  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Content != "Looking forward to working with you" {
		t.Errorf("Content = %q", msg.Content)
	}
	if msg.SenderID != "B1" || msg.InquiryID != "I1" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestPostMessage_Authorization(t *testing.T) {
	tests := []struct {
		name      string
		identity  *authz.Identity
		inquiryID string
		wantCode  string
	}{
		{"brand participant", brandB1, "I1", ""},
		{"creator participant", creatorC1, "I1", ""},
		{"admin", adminA1, "I1", ""},
		{"inquiry creator who is not a participant", creatorX, "I1", model.ErrCodeForbidden},
		{"outsider", outsider, "I1", model.ErrCodeForbidden},
		{"anonymous", nil, "I1", model.ErrCodeUnauthenticated},
		{"missing inquiry", brandB1, "nope", model.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.PostMessage(context.Background(), tt.identity, tt.inquiryID, "hello")
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			assertAPIErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestPostMessage_EmptyContent(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t", "<b></b>"} {
		f := newFixture()
		_, err := f.svc.PostMessage(context.Background(), creatorC1, "I1", content)
		assertAPIErrorCode(t, err, model.ErrCodeValidation)
		if f.messages.created != nil {
			t.Errorf("content %q: message must not be stored", content)
		}
	}
}

func TestPostMessage_AuthorizationPrecedesValidation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PostMessage(context.Background(), outsider, "I1", "   ")
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)
}

func TestListMessages_ParticipantsSeeWholeThread(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	msgs, err := f.svc.ListMessages(ctx, creatorC1, "I1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("len(messages) = %d, want 2 (own and counterpart's)", len(msgs))
	}

	_, err = f.svc.ListMessages(ctx, outsider, "I1")
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)

	_, err = f.svc.ListMessages(ctx, nil, "I1")
	assertAPIErrorCode(t, err, model.ErrCodeUnauthenticated)
}

// --- 問い合わせ ---

func TestGet_Participants(t *testing.T) {
	tests := []struct {
		name     string
		identity *authz.Identity
		wantCode string
	}{
		{"brand owner", brandB1, ""},
		{"creator owner", creatorC1, ""},
		{"admin", adminA1, ""},
		{"creator of record only", creatorX, model.ErrCodeForbidden},
		{"anonymous", nil, model.ErrCodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Get(context.Background(), tt.identity, "I1")
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			assertAPIErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestGet_NotFoundBeforeAuthorization(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), nil, "missing")
	assertAPIErrorCode(t, err, model.ErrCodeNotFound)
}

func TestCreate(t *testing.T) {
	f := newFixture()

	inquiry, err := f.svc.Create(context.Background(), brandB1, CreateInput{
		CreatorProfileID: "CP1",
		Subject:          "Spring campaign",
		Body:             "<p>Details inside</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inquiry.BrandOwnerID != "B1" || inquiry.CreatorOwnerID != "C1" {
		t.Errorf("participants = (%q, %q), want (B1, C1)", inquiry.BrandOwnerID, inquiry.CreatorOwnerID)
	}
	if inquiry.Status != model.InquiryOpen {
		t.Errorf("Status = %q, want open", inquiry.Status)
	}
	if inquiry.Body != "Details inside" {
		t.Errorf("Body = %q", inquiry.Body)
	}
	if f.inquiries.created == nil || f.inquiries.created.CreatedBy != "B1" {
		t.Errorf("created = %+v", f.inquiries.created)
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		identity *authz.Identity
		input    CreateInput
		wantCode string
	}{
		{"anonymous", nil, CreateInput{CreatorProfileID: "CP1", Subject: "s"}, model.ErrCodeUnauthenticated},
		{"creator role", creatorC1, CreateInput{CreatorProfileID: "CP1", Subject: "s"}, model.ErrCodeForbidden},
		{"brand without profile", outsider, CreateInput{CreatorProfileID: "CP1", Subject: "s"}, model.ErrCodeNotFound},
		{"unknown creator", brandB1, CreateInput{CreatorProfileID: "nope", Subject: "s"}, model.ErrCodeNotFound},
		{"unlisted creator", brandB1, CreateInput{CreatorProfileID: "CP-rej", Subject: "s"}, model.ErrCodeNotFound},
		{"empty subject", brandB1, CreateInput{CreatorProfileID: "CP1", Subject: " "}, model.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Create(context.Background(), tt.identity, tt.input)
			assertAPIErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inquiries, err := f.svc.List(ctx, creatorC1, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inquiries) != 1 || f.inquiries.listParticipantID != "C1" {
		t.Errorf("inquiries = %d, participant = %q", len(inquiries), f.inquiries.listParticipantID)
	}

	inquiries, err = f.svc.List(ctx, outsider, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inquiries) != 0 {
		t.Errorf("outsider sees %d inquiries, want 0", len(inquiries))
	}

	if _, err := f.svc.List(ctx, adminA1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.inquiries.listAllCalled {
		t.Error("admin listing should use ListAll")
	}

	_, err = f.svc.List(ctx, nil, 0, 0)
	assertAPIErrorCode(t, err, model.ErrCodeUnauthenticated)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inquiry, err := f.svc.UpdateStatus(ctx, creatorC1, "I1", model.InquiryAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inquiry.Status != model.InquiryAccepted || f.inquiries.updatedStatus != model.InquiryAccepted {
		t.Errorf("status = %q, stored = %q", inquiry.Status, f.inquiries.updatedStatus)
	}

	_, err = f.svc.UpdateStatus(ctx, outsider, "I1", model.InquiryClosed)
	assertAPIErrorCode(t, err, model.ErrCodeForbidden)

	_, err = f.svc.UpdateStatus(ctx, brandB1, "I1", model.InquiryStatus("archived"))
	assertAPIErrorCode(t, err, model.ErrCodeValidation)
}
