package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/samber/lo"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AccessCodeRepository = (*accessCodeRepo)(nil)

type accessCodeRepo struct {
	pool *pgxpool.Pool
}

func NewAccessCodeRepo(pool *pgxpool.Pool) *accessCodeRepo {
	return &accessCodeRepo{pool: pool}
}

func (r *accessCodeRepo) ListCodes(ctx context.Context, tx repository.Tx) ([]string, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT code FROM access_codes ORDER BY code;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveCodes normalizes and inserts codes, skipping ones already present.
func (r *accessCodeRepo) SaveCodes(ctx context.Context, tx repository.Tx, codes []string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	clean := lo.Uniq(lo.Compact(lo.Map(codes, func(c string, _ int) string { return model.NormalizeCode(c) })))

	inserted := 0
	for _, c := range clean {
		tag, err := ex.Exec(ctx, `INSERT INTO access_codes (code) VALUES ($1) ON CONFLICT (code) DO NOTHING;`, c)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
