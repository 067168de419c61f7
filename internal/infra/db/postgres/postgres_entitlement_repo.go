package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.EntitlementStore = (*entitlementRepo)(nil)

type entitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *entitlementRepo {
	return &entitlementRepo{pool: pool}
}

func (r *entitlementRepo) Get(ctx context.Context, subjectID string) (*model.Entitlement, error) {
	const q = `
SELECT subject_id, is_active, activated_at, is_permanent
  FROM vip_entitlements
 WHERE subject_id = $1;
`
	ex, err := getExecutor(r.pool, nil)
	if err != nil {
		return nil, err
	}

	var (
		e  model.Entitlement
		at *time.Time
	)
	if err := ex.QueryRow(ctx, q, subjectID).Scan(&e.SubjectID, &e.IsActive, &at, &e.IsPermanent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if at != nil {
		t := at.UTC()
		e.ActivatedAt = &t
	}
	return &e, nil
}

// Set upserts the whole record; the controller always writes complete entitlements.
func (r *entitlementRepo) Set(ctx context.Context, subjectID string, e *model.Entitlement) error {
	if e == nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO vip_entitlements (subject_id, is_active, activated_at, is_permanent, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (subject_id) DO UPDATE SET
  is_active    = EXCLUDED.is_active,
  activated_at = EXCLUDED.activated_at,
  is_permanent = EXCLUDED.is_permanent,
  updated_at   = NOW();
`
	ex, err := getExecutor(r.pool, nil)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, subjectID, e.IsActive, e.ActivatedAt, e.IsPermanent)
	return err
}
