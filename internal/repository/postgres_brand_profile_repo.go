package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/reelmatch/internal/model"
)

const brandProfileColumns = `id, owner_id, company_name, website, industry,
	subscription_status, trial_ends_at, created_at, updated_at`

// PostgresBrandProfileRepo はPostgreSQLを使用したブランドプロフィールリポジトリ。
type PostgresBrandProfileRepo struct {
	db *sql.DB
}

// NewPostgresBrandProfileRepo はPostgresBrandProfileRepoを生成する。
func NewPostgresBrandProfileRepo(db *sql.DB) *PostgresBrandProfileRepo {
	return &PostgresBrandProfileRepo{db: db}
}

func scanBrandProfile(s rowScanner) (*model.BrandProfile, error) {
	p := &model.BrandProfile{}
	var trialEndsAt sql.NullTime
	err := s.Scan(&p.ID, &p.OwnerID, &p.CompanyName, &p.Website, &p.Industry,
		&p.SubscriptionStatus, &trialEndsAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if trialEndsAt.Valid {
		t := trialEndsAt.Time
		p.TrialEndsAt = &t
	}
	return p, nil
}

func (r *PostgresBrandProfileRepo) findOne(ctx context.Context, where string, arg any) (*model.BrandProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+brandProfileColumns+` FROM brand_profiles WHERE `+where+` = $1`,
		arg,
	)
	p, err := scanBrandProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find brand profile by %s: %w", where, err)
	}
	return p, nil
}

// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresBrandProfileRepo) FindByID(ctx context.Context, id string) (*model.BrandProfile, error) {
	if !isValidID(id) {
		return nil, nil
	}
	return r.findOne(ctx, "id", id)
}

// FindByOwnerID は所有者IDでプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresBrandProfileRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.BrandProfile, error) {
	return r.findOne(ctx, "owner_id", ownerID)
}

// Create はプロフィールを作成する。
func (r *PostgresBrandProfileRepo) Create(ctx context.Context, p *model.BrandProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO brand_profiles (`+brandProfileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.OwnerID, p.CompanyName, p.Website, p.Industry,
		p.SubscriptionStatus, p.TrialEndsAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert brand profile: %w", translateError(err))
	}
	return nil
}

// Update は会社名、Webサイト、業種を更新する。
func (r *PostgresBrandProfileRepo) Update(ctx context.Context, p *model.BrandProfile) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE brand_profiles SET company_name = $1, website = $2, industry = $3, updated_at = $4
		 WHERE id = $5`,
		p.CompanyName, p.Website, p.Industry, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update brand profile: %w", err)
	}
	return expectOneRow(result, "brand profile", p.ID)
}

// List は全ブランドプロフィールを作成日時順で返す。
func (r *PostgresBrandProfileRepo) List(ctx context.Context, limit, offset int) ([]*model.BrandProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+brandProfileColumns+` FROM brand_profiles ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.BrandProfile
	for rows.Next() {
		p, err := scanBrandProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate brand profiles: %w", err)
	}
	return profiles, nil
}

// compile-time interface check
var _ BrandProfileRepository = (*PostgresBrandProfileRepo)(nil)
