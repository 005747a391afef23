package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/application/session"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// DiagnosticsUseCase chequeo de conectividad con el almacén.
type DiagnosticsUseCase struct {
	diagnostics repository.DiagnosticRepository
	submissions repository.SubmissionRepository
	boot        *session.Bootstrapper
	now         func() time.Time
}

// NewDiagnosticsUseCase construye el caso de uso.
func NewDiagnosticsUseCase(diagnostics repository.DiagnosticRepository, submissions repository.SubmissionRepository, boot *session.Bootstrapper) *DiagnosticsUseCase {
	return &DiagnosticsUseCase{diagnostics: diagnostics, submissions: submissions, boot: boot, now: time.Now}
}

// Run escribe un documento de diagnóstico y mide una lectura de submissions.
func (uc *DiagnosticsUseCase) Run(ctx context.Context) (*dto.DiagnosticResponse, error) {
	ctx, res, err := uc.boot.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	start := uc.now()
	d := &entity.Diagnostic{
		ID:       uuid.NewString(),
		TestTime: entity.FormatTimestamp(start),
		Platform: entity.DiagnosticPlatform,
		Status:   "HEALTHY",
		RunBy:    res.Identity.UID,
	}
	if err := uc.diagnostics.Create(ctx, d); err != nil {
		return nil, domain.Write(err)
	}
	d.LatencyMS = time.Since(start).Milliseconds()

	readStart := time.Now()
	if _, err := uc.submissions.ListRecent(ctx, 1); err != nil {
		return nil, domain.Read(err)
	}
	return &dto.DiagnosticResponse{
		Diagnostic:  *d,
		ReadLatency: time.Since(readStart).Milliseconds(),
		Status:      "HEALTHY",
	}, nil
}
