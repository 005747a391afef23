package documents_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/documents"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUserRepository_UIDDesdeElDocumento(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, repository.CollectionUsers, "abc", json.RawMessage(`{"email":"legacy@example.com"}`)))

	repo := documents.NewUserRepository(store)
	u, err := repo.GetByUID(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "abc", u.UID, "un documento sin uid toma el ID del documento")

	missing, err := repo.GetByUID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_PaginaYBorradoMasivo(t *testing.T) {
	store := memory.NewStore()
	repo := documents.NewUserRepository(store)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, &entity.User{UID: fmt.Sprintf("u%d", i), Email: "x@example.com"}))
	}
	assert.Error(t, repo.Save(ctx, &entity.User{}), "uid obligatorio")

	page, err := repo.Page(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "u2", page[0].UID)

	require.NoError(t, repo.DeleteMany(ctx, []string{"u0", "u1"}))
	require.NoError(t, repo.DeleteMany(ctx, nil))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// ──────────────────────────────────────────────────────────────────────────────
// Intenciones y ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmissionRepository_RecientesYEstado(t *testing.T) {
	store := memory.NewStore()
	repo := documents.NewSubmissionRepository(store)
	ctx := context.Background()

	for i, ts := range []string{"2026-01-01T00:00:00.000Z", "2026-03-01T00:00:00.000Z", "2026-02-01T00:00:00.000Z"} {
		require.NoError(t, repo.Create(ctx, &entity.TradeSubmission{
			ID: fmt.Sprintf("s%d", i), Type: entity.SubmissionBuyer, Timestamp: ts, Status: entity.StatusPending,
		}))
	}
	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "s1", recent[0].ID)
	assert.Equal(t, "s2", recent[1].ID)

	require.NoError(t, repo.UpdateStatus(ctx, "s0", entity.StatusVerified))
	got, err := repo.Get(ctx, "s0")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusVerified, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "zz", entity.StatusVerified), domain.ErrNotFound)
}

func TestLedgerRepository_TotalesPorTipo(t *testing.T) {
	store := memory.NewStore()
	subs := documents.NewSubmissionRepository(store)
	ctx := context.Background()
	rows := []entity.TradeSubmission{
		{ID: "a", Type: entity.SubmissionBuyer, Price: "100.50"},
		{ID: "b", Type: entity.SubmissionBuyer, Price: "a convenir"},
		{ID: "c", Type: entity.SubmissionSeller, Price: "200"},
		{ID: "d", Type: entity.SubmissionSeller, Price: ""},
		{ID: "e", Type: entity.SubmissionBuyer, Price: "0.50"},
	}
	for i := range rows {
		require.NoError(t, subs.Create(ctx, &rows[i]))
	}

	totals, err := documents.NewLedgerRepository(store, 2).Summary(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	buyer, seller := totals[0], totals[1]
	assert.Equal(t, entity.SubmissionBuyer, buyer.Type)
	assert.Equal(t, 3, buyer.Count)
	assert.Equal(t, 2, buyer.Priced)
	assert.Equal(t, "101", buyer.PriceTotal.String())
	assert.Equal(t, 2, seller.Count)
	assert.Equal(t, 1, seller.Priced)
	assert.Equal(t, "200", seller.PriceTotal.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Settings
// ──────────────────────────────────────────────────────────────────────────────

func TestSettingsRepository_PublicarConTombstones(t *testing.T) {
	store := memory.NewStore()
	repo := documents.NewSettingsRepository(store)
	ctx := context.Background()

	cfg, err := repo.GetAppConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	initial := entity.DefaultAppConfig()
	require.NoError(t, repo.Publish(ctx, initial, nil))
	assert.Equal(t, 3, store.Count(repository.CollectionHeroSlides))

	next := initial.Clone()
	next.HeroSlides = next.HeroSlides[1:]
	require.NoError(t, repo.Publish(ctx, next, []string{"1"}))

	slides, err := repo.ListSlides(ctx)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "2", slides[0].ID)

	stored, err := repo.GetAppConfig(ctx)
	require.NoError(t, err)
	assert.Len(t, stored.HeroSlides, 2)
}

func TestDiagnosticRepository_Pagina(t *testing.T) {
	store := memory.NewStore()
	repo := documents.NewDiagnosticRepository(store)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.Diagnostic{ID: fmt.Sprintf("d%d", i), Status: "ok"}))
	}
	page, err := repo.Page(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	require.NoError(t, repo.DeleteMany(ctx, []string{"d0", "d1", "d2"}))
	assert.Equal(t, 0, store.Count(repository.CollectionDiagnostics))
}
