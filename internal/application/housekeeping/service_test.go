package housekeeping_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/application/housekeeping"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/documents"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/memory"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// batchCounter cuenta los batches y su tamaño máximo.
type batchCounter struct {
	*memory.Store
	batches int
	maxOps  int
}

func (b *batchCounter) Batch(ctx context.Context, ops []repository.WriteOp) error {
	b.batches++
	b.maxOps = max(b.maxOps, len(ops))
	return b.Store.Batch(ctx, ops)
}

type fixture struct {
	svc   *housekeeping.Service
	store *batchCounter
	blobs *memory.BlobStore
	users *documents.UserRepository
	subs  *documents.SubmissionRepository
	diags *documents.DiagnosticRepository
}

func newFixture(t *testing.T, pageSize, batchLimit int) *fixture {
	t.Helper()
	store := &batchCounter{Store: memory.NewStore()}
	blobs := memory.NewBlobStore("")
	users := documents.NewUserRepository(store)
	subs := documents.NewSubmissionRepository(store)
	diags := documents.NewDiagnosticRepository(store)
	svc := housekeeping.NewService(users, subs, diags, blobs, entity.NewAccessPolicy("info@jdmorgan.ca"), nil, zerolog.Nop(),
		housekeeping.Options{UnverifiedTTL: time.Hour, PageSize: pageSize, BatchLimit: batchLimit, Now: func() time.Time { return now }})
	return &fixture{svc: svc, store: store, blobs: blobs, users: users, subs: subs, diags: diags}
}

func (f *fixture) addUser(t *testing.T, uid string, age time.Duration, approved bool) {
	t.Helper()
	created := now.Add(-age)
	require.NoError(t, f.users.Save(context.Background(), &entity.User{
		UID: uid, Email: uid + "@example.com", Role: entity.RoleClient, IsApproved: approved, CreatedAt: &created,
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuentas no verificadas
// ──────────────────────────────────────────────────────────────────────────────

func TestPurgeUnverified_SoloLasExpiradas(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.addUser(t, "old", 2*time.Hour, false)
	f.addUser(t, "new", 10*time.Minute, false)

	var log []string
	res, err := f.svc.PurgeUnverified(context.Background(), false, func(m string) { log = append(log, m) })
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 2, res.Scanned)

	old, _ := f.users.GetByUID(context.Background(), "old")
	assert.Nil(t, old)
	fresh, _ := f.users.GetByUID(context.Background(), "new")
	assert.NotNil(t, fresh)
	require.NotEmpty(t, log)
	assert.Contains(t, log[len(log)-1], "[SUCCESS] 1")
}

func TestPurgeUnverified_Umbral(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.addUser(t, "exacto", time.Hour, false)
	f.addUser(t, "pasado", time.Hour+time.Second, false)
	f.addUser(t, "aprobado", 48*time.Hour, true)
	require.NoError(t, f.users.Save(context.Background(), &entity.User{UID: "legacy"}))

	res, err := f.svc.PurgeUnverified(context.Background(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted, "pasado y la cuenta sin fecha")

	u, _ := f.users.GetByUID(context.Background(), "exacto")
	assert.NotNil(t, u, "debe superar el umbral, no igualarlo")
}

func TestPurgeUnverified_PerfilSinIndicadorDeAprobacion(t *testing.T) {
	f := newFixture(t, 0, 0)
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, repository.CollectionUsers, "legacy",
		[]byte(`{"uid":"legacy","email":"legacy@example.com","createdAt":"2020-01-01T00:00:00Z"}`)))
	f.addUser(t, "pendiente", 3*time.Hour, false)

	res, err := f.svc.PurgeUnverified(ctx, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted, "solo isApproved=false explícito se purga")
	legacy, err := f.users.GetByUID(ctx, "legacy")
	require.NoError(t, err)
	assert.NotNil(t, legacy)
}

func TestPurgeUnverified_ForzadoIgnoraElUmbral(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.addUser(t, "a", time.Minute, false)
	f.addUser(t, "b", 0, false)
	created := now
	require.NoError(t, f.users.Save(context.Background(), &entity.User{
		UID: "root", Email: "INFO@jdmorgan.ca", CreatedAt: &created,
	}))

	res, err := f.svc.PurgeUnverified(context.Background(), true, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	root, _ := f.users.GetByUID(context.Background(), "root")
	assert.NotNil(t, root, "la cuenta privilegiada nunca se purga")
}

func TestPurgeUnverified_PaginaYLotesAcotados(t *testing.T) {
	f := newFixture(t, 3, 2)
	for i := 0; i < 7; i++ {
		f.addUser(t, fmt.Sprintf("u%02d", i), 3*time.Hour, false)
	}
	f.store.batches = 0

	res, err := f.svc.PurgeUnverified(context.Background(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Scanned)
	assert.Equal(t, 7, res.Deleted)
	assert.Equal(t, 4, f.store.batches)
	assert.LessOrEqual(t, f.store.maxOps, 2)
	assert.Equal(t, 0, f.store.Count(repository.CollectionUsers))
}

func TestPurgeUnverified_FalloDeLectura(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.store.SetFailure(errors.New("sin red"))
	var log []string
	_, err := f.svc.PurgeUnverified(context.Background(), false, func(m string) { log = append(log, m) })
	assert.Equal(t, domain.KindRead, domain.KindOf(err))
	assert.Contains(t, log[len(log)-1], "[ERROR]")
}

// ──────────────────────────────────────────────────────────────────────────────
// Intenciones, diagnósticos y miembros
// ──────────────────────────────────────────────────────────────────────────────

func TestPurgeAllSubmissions_BorraAdjuntos(t *testing.T) {
	f := newFixture(t, 0, 0)
	ctx := context.Background()
	_, err := f.blobs.Upload(ctx, "submissions/u/1_a.pdf", bytes.NewReader([]byte("a")), 1, "application/pdf", nil)
	require.NoError(t, err)
	require.NoError(t, f.subs.Create(ctx, &entity.TradeSubmission{ID: "s1", FilePath: "submissions/u/1_a.pdf"}))
	require.NoError(t, f.subs.Create(ctx, &entity.TradeSubmission{ID: "s2"}))

	var log []string
	res, err := f.svc.PurgeAllSubmissions(ctx, func(m string) { log = append(log, m) })
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.False(t, f.blobs.Has("submissions/u/1_a.pdf"))
	require.Len(t, log, 4)
	assert.Equal(t, "[PURGE] Encontradas 2 intenciones, eliminando", log[1], "el total se informa antes de borrar")
	assert.Contains(t, log[2], "Lote de 2")

	log = nil
	res, err = f.svc.PurgeAllSubmissions(ctx, func(m string) { log = append(log, m) })
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)
	assert.Contains(t, log[len(log)-1], "[INFO]")
}

func TestPurgeDiagnostics(t *testing.T) {
	f := newFixture(t, 0, 0)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.diags.Create(context.Background(), &entity.Diagnostic{ID: fmt.Sprintf("d%d", i)}))
	}
	res, err := f.svc.PurgeDiagnostics(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Deleted)
}

func TestPurgeNonAdminUsers_ConservaAdministradores(t *testing.T) {
	f := newFixture(t, 0, 0)
	ctx := context.Background()
	f.addUser(t, "client", time.Hour, true)
	require.NoError(t, f.users.Save(ctx, &entity.User{UID: "ops", Role: entity.RoleAdmin}))
	require.NoError(t, f.users.Save(ctx, &entity.User{UID: "root", Username: "info@jdmorgan.ca"}))

	res, err := f.svc.PurgeNonAdminUsers(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 2, f.store.Count(repository.CollectionUsers))
}
