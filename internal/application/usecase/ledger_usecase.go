package usecase

import (
	"context"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// LedgerUseCase agregados de intenciones para el panel.
type LedgerUseCase struct {
	repo repository.LedgerRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(repo repository.LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{repo: repo}
}

// Summary devuelve el número de intenciones y la suma de precios por tipo.
func (uc *LedgerUseCase) Summary(ctx context.Context) (*dto.LedgerSummaryResponse, error) {
	totals, err := uc.repo.Summary(ctx)
	if err != nil {
		return nil, domain.Read(err)
	}
	return &dto.LedgerSummaryResponse{Totals: totals}, nil
}
