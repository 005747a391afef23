package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository agrega las intenciones en el servidor; los NUMERIC se
// escanean a decimal.Decimal gracias al codec registrado en NewPool.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository construye el repositorio.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const ledgerSQL = `
SELECT data->>'type' AS type,
       count(*) AS total,
       count(*) FILTER (WHERE data->>'price' ~ '^[-+]?[0-9]+(\.[0-9]+)?$') AS priced,
       COALESCE(sum((data->>'price')::numeric) FILTER (WHERE data->>'price' ~ '^[-+]?[0-9]+(\.[0-9]+)?$'), 0) AS price_total
FROM documents
WHERE collection = $1 AND data->>'type' IN ('buyer', 'seller')
GROUP BY 1`

func (r *LedgerRepository) Summary(ctx context.Context) ([]entity.SubmissionTotals, error) {
	totals := map[entity.SubmissionType]*entity.SubmissionTotals{
		entity.SubmissionBuyer:  {Type: entity.SubmissionBuyer, PriceTotal: decimal.Zero},
		entity.SubmissionSeller: {Type: entity.SubmissionSeller, PriceTotal: decimal.Zero},
	}
	rows, err := r.pool.Query(ctx, ledgerSQL, repository.CollectionSubmissions)
	if err != nil {
		return nil, fmt.Errorf("ledger summary: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ           string
			count, priced int
			total         decimal.Decimal
		)
		if err := rows.Scan(&typ, &count, &priced, &total); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		t := totals[entity.SubmissionType(typ)]
		t.Count, t.Priced, t.PriceTotal = count, priced, total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger summary: %w", err)
	}
	return []entity.SubmissionTotals{*totals[entity.SubmissionBuyer], *totals[entity.SubmissionSeller]}, nil
}
