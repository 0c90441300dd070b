package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/reelmatch/internal/model"
)

// inquirySelect は問い合わせと両参加者の owner_id を取得するSELECT句。
const inquirySelect = `SELECT i.id, i.brand_profile_id, i.creator_profile_id, i.created_by,
	i.subject, i.body, i.status, i.created_at, i.updated_at,
	b.owner_id, c.owner_id
	FROM inquiries i
	INNER JOIN brand_profiles b ON b.id = i.brand_profile_id
	INNER JOIN creator_profiles c ON c.id = i.creator_profile_id`

// PostgresInquiryRepo はPostgreSQLを使用した問い合わせリポジトリ。
type PostgresInquiryRepo struct {
	db *sql.DB
}

// NewPostgresInquiryRepo はPostgresInquiryRepoを生成する。
func NewPostgresInquiryRepo(db *sql.DB) *PostgresInquiryRepo {
	return &PostgresInquiryRepo{db: db}
}

func scanInquiry(s rowScanner) (*model.InquiryWithParticipants, error) {
	i := &model.InquiryWithParticipants{}
	err := s.Scan(&i.ID, &i.BrandProfileID, &i.CreatorProfileID, &i.CreatedBy,
		&i.Subject, &i.Body, &i.Status, &i.CreatedAt, &i.UpdatedAt,
		&i.BrandOwnerID, &i.CreatorOwnerID)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// FindByID は指定IDの問い合わせを参加者情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresInquiryRepo) FindByID(ctx context.Context, id string) (*model.InquiryWithParticipants, error) {
	if !isValidID(id) {
		return nil, nil
	}
	i, err := scanInquiry(r.db.QueryRowContext(ctx, inquirySelect+` WHERE i.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find inquiry by ID: %w", err)
	}
	return i, nil
}

// ListByParticipant は指定ユーザーが参加者である問い合わせを新しい順に返す。
func (r *PostgresInquiryRepo) ListByParticipant(ctx context.Context, userID string) ([]*model.InquiryWithParticipants, error) {
	return r.query(ctx,
		inquirySelect+` WHERE b.owner_id = $1 OR c.owner_id = $1 ORDER BY i.created_at DESC`,
		userID,
	)
}

// ListAll は全問い合わせを新しい順に返す。
func (r *PostgresInquiryRepo) ListAll(ctx context.Context, limit, offset int) ([]*model.InquiryWithParticipants, error) {
	return r.query(ctx,
		inquirySelect+` ORDER BY i.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
}

func (r *PostgresInquiryRepo) query(ctx context.Context, query string, args ...any) ([]*model.InquiryWithParticipants, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []*model.InquiryWithParticipants
	for rows.Next() {
		i, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inquiry row: %w", err)
		}
		inquiries = append(inquiries, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inquiries: %w", err)
	}
	return inquiries, nil
}

// Create は問い合わせを作成する。
func (r *PostgresInquiryRepo) Create(ctx context.Context, i *model.Inquiry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO inquiries (id, brand_profile_id, creator_profile_id, created_by, subject, body, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		i.ID, i.BrandProfileID, i.CreatorProfileID, i.CreatedBy, i.Subject, i.Body, i.Status, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inquiry: %w", translateError(err))
	}
	return nil
}

// UpdateStatus は問い合わせの状態を更新する。
func (r *PostgresInquiryRepo) UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) error {
	if !isValidID(id) {
		return fmt.Errorf("inquiry %s: %w", id, ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE inquiries SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update inquiry status: %w", err)
	}
	return expectOneRow(result, "inquiry", id)
}

// compile-time interface check
var _ InquiryRepository = (*PostgresInquiryRepo)(nil)
