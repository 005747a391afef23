package documents

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository agrega las intenciones recorriendo la colección por páginas.
// Se usa con los drivers que no pueden agregar en el servidor.
type LedgerRepository struct {
	submissions *SubmissionRepository
	pageSize    int
}

// NewLedgerRepository construye el agregador con el tamaño de página dado.
func NewLedgerRepository(store repository.DocumentStore, pageSize int) *LedgerRepository {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &LedgerRepository{submissions: NewSubmissionRepository(store), pageSize: pageSize}
}

func (r *LedgerRepository) Summary(ctx context.Context) ([]entity.SubmissionTotals, error) {
	totals := map[entity.SubmissionType]*entity.SubmissionTotals{
		entity.SubmissionBuyer:  {Type: entity.SubmissionBuyer, PriceTotal: decimal.Zero},
		entity.SubmissionSeller: {Type: entity.SubmissionSeller, PriceTotal: decimal.Zero},
	}
	after := ""
	for {
		page, err := r.submissions.Page(ctx, after, r.pageSize)
		if err != nil {
			return nil, err
		}
		for _, s := range page {
			t, ok := totals[s.Type]
			if !ok {
				continue
			}
			t.Count++
			if price, err := decimal.NewFromString(s.Price); err == nil {
				t.Priced++
				t.PriceTotal = t.PriceTotal.Add(price)
			}
		}
		if len(page) < r.pageSize {
			break
		}
		after = page[len(page)-1].ID
	}
	return []entity.SubmissionTotals{*totals[entity.SubmissionBuyer], *totals[entity.SubmissionSeller]}, nil
}
