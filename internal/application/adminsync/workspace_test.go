package adminsync_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/application/adminsync"
	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/application/housekeeping"
	"github.com/jdmorgan/trading-portal/internal/application/usecase"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/documents"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/memory"
)

type wsFixture struct {
	ws       *adminsync.Workspace
	store    *memory.Store
	blobs    *memory.BlobStore
	settings *documents.SettingsRepository
	users    *documents.UserRepository
	subs     *documents.SubmissionRepository
}

func newDeps(store *memory.Store, blobs *memory.BlobStore) adminsync.Deps {
	settings := documents.NewSettingsRepository(store)
	users := documents.NewUserRepository(store)
	subs := documents.NewSubmissionRepository(store)
	return adminsync.Deps{
		Config:      usecase.NewSettingsUseCase(settings, zerolog.Nop()),
		Settings:    settings,
		Members:     usecase.NewMemberUseCase(users, entity.NewAccessPolicy("info@jdmorgan.ca")),
		Submissions: usecase.NewSubmissionUseCase(subs, blobs, zerolog.Nop()),
		Blobs:       blobs,
		Log:         zerolog.Nop(),
	}
}

func newWorkspace(t *testing.T) *wsFixture {
	t.Helper()
	store := memory.NewStore()
	blobs := memory.NewBlobStore("http://localhost:8080")
	seq := 0
	ws := adminsync.NewWorkspace("admin-1", newDeps(store, blobs), adminsync.Options{
		Now:   func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string { seq++; return string(rune('a' + seq - 1)) },
	})
	require.NoError(t, ws.Activate(context.Background(), adminsync.TabVisual))
	return &wsFixture{
		ws: ws, store: store, blobs: blobs,
		settings: documents.NewSettingsRepository(store),
		users:    documents.NewUserRepository(store),
		subs:     documents.NewSubmissionRepository(store),
	}
}

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Pestaña visual: edición y publicación
// ──────────────────────────────────────────────────────────────────────────────

func TestWorkspace_PublicaEnUnBatch(t *testing.T) {
	f := newWorkspace(t)
	ctx := context.Background()

	require.NoError(t, f.ws.UpdateBrand(dto.BrandRequest{LogoText: strPtr("JDM GLOBAL")}))
	require.NoError(t, f.ws.RemoveSlide("1", true))
	added, err := f.ws.AddSlide(dto.SlideRequest{Img: strPtr("http://img/new.png"), Title: strPtr("NEW")})
	require.NoError(t, err)
	assert.Equal(t, 3, added.Order)
	assert.True(t, f.ws.CanPublish())

	state, err := f.ws.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, adminsync.StateClean, state)

	cfg, err := f.settings.GetAppConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "JDM GLOBAL", cfg.LogoText)
	slides, err := f.settings.ListSlides(ctx)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	assert.Equal(t, -1, entity.AppConfig{HeroSlides: slides}.SlideIndex("1"), "el slide retirado tiene tombstone")

	_, err = f.ws.Publish(ctx)
	assert.ErrorIs(t, err, domain.ErrNothingToPublish)
	assert.NotEmpty(t, f.ws.Snapshot().Notices)
}

func TestWorkspace_PublicacionFallidaConservaBorrador(t *testing.T) {
	f := newWorkspace(t)
	require.NoError(t, f.ws.UpdateBrand(dto.BrandRequest{LogoText: strPtr("Tecleado por el admin")}))
	f.store.SetFailure(errors.New("red cortada"))

	state, err := f.ws.Publish(context.Background())
	assert.Equal(t, adminsync.StatePublishFailed, state)
	assert.Equal(t, domain.KindWrite, domain.KindOf(err))

	snap := f.ws.Snapshot()
	assert.Equal(t, "Tecleado por el admin", snap.Visual.Draft.LogoText)
	assert.True(t, snap.Visual.CanPublish)
	assert.Equal(t, 0, f.store.Count(repository.CollectionSettings), "no hay escritura parcial")
}

func TestWorkspace_BorradorSucioIgnoraCambiosRemotos(t *testing.T) {
	f := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, f.ws.UpdateBrand(dto.BrandRequest{LogoText: strPtr("local")}))

	remote := entity.DefaultAppConfig()
	remote.LogoText = "remoto"
	require.NoError(t, f.settings.Publish(ctx, remote, nil))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.ws.Activate(ctx, adminsync.TabVisual))
	}
	assert.Equal(t, "local", f.ws.Snapshot().Visual.Draft.LogoText)

	require.NoError(t, f.ws.Refresh(ctx, adminsync.TabVisual))
	snap := f.ws.Snapshot()
	assert.Equal(t, "remoto", snap.Visual.Draft.LogoText)
	assert.Equal(t, adminsync.StateClean, snap.Visual.State)
}

func TestWorkspace_UltimoSlideBloqueadoSinRed(t *testing.T) {
	f := newWorkspace(t)
	require.NoError(t, f.ws.RemoveSlide("1", true))
	require.NoError(t, f.ws.RemoveSlide("2", true))
	opsBefore := f.store.Ops()

	err := f.ws.RemoveSlide("3", false)
	assert.ErrorIs(t, err, domain.ErrLastSlide, "se bloquea antes de pedir confirmación")
	assert.ErrorIs(t, f.ws.RemoveSlide("3", true), domain.ErrLastSlide)
	assert.Len(t, f.ws.Snapshot().Visual.Draft.HeroSlides, 1)
	assert.Equal(t, opsBefore, f.store.Ops())
}

func TestWorkspace_QuitarSlideRequiereConfirmacion(t *testing.T) {
	f := newWorkspace(t)
	assert.ErrorIs(t, f.ws.RemoveSlide("2", false), domain.ErrConfirmationRequired)
	assert.Len(t, f.ws.Snapshot().Visual.Draft.HeroSlides, 3)
	assert.Equal(t, adminsync.StateClean, f.ws.Snapshot().Visual.State)
}

func TestWorkspace_SlideNuevoConValoresDeRelleno(t *testing.T) {
	f := newWorkspace(t)
	s, err := f.ws.AddSlide(dto.SlideRequest{Title: strPtr("Urea CIF")})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Img, "sin imagen se usa la de relleno")
	assert.Equal(t, "Urea CIF", s.Title)
	assert.NotEmpty(t, s.Subtitle)
	assert.Equal(t, len(f.ws.Snapshot().Visual.Draft.HeroSlides), s.Order)

	_, err = f.ws.AddSlide(dto.SlideRequest{Img: strPtr("  ")})
	assert.Equal(t, "img", domain.FieldOf(err), "una imagen vacía explícita se rechaza")
}

func TestWorkspace_ListasConIDs(t *testing.T) {
	f := newWorkspace(t)
	require.NoError(t, f.ws.SetAnnouncements([]entity.Announcement{{Title: "Nuevo"}, {ID: "ann_x", Title: "Existente"}}))
	require.NoError(t, f.ws.SetQuotes([]entity.MarketQuote{{Symbol: "XAU"}}))
	require.NoError(t, f.ws.SetIndustryNews([]entity.IndustryNews{{Title: "Cobre"}}))

	draft := f.ws.Snapshot().Visual.Draft
	assert.Equal(t, "ann_a", draft.Announcements[0].ID)
	assert.Equal(t, "ann_x", draft.Announcements[1].ID)
	assert.Equal(t, "q_b", draft.Quotes[0].ID)
	assert.Equal(t, "news_c", draft.IndustryNews[0].ID)
}

func TestWorkspace_SubirImagenDeSlide(t *testing.T) {
	f := newWorkspace(t)
	ctx := context.Background()

	url, err := f.ws.UploadSlideImage(ctx, "hero gold.png", 4, "image/png", bytes.NewReader([]byte("png!")))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/hero_slides/a_hero_gold.png", url)

	_, err = f.ws.UploadSlideImage(ctx, "doc.pdf", 4, "application/pdf", bytes.NewReader([]byte("pdf!")))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.ws.UploadSlideImage(ctx, "big.png", adminsync.DefaultSlideImageMaxBytes+1, "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pestañas de miembros e intenciones
// ──────────────────────────────────────────────────────────────────────────────

func TestWorkspace_PollSoloEnPestanasDeListado(t *testing.T) {
	f := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, f.users.Save(ctx, &entity.User{UID: "u1", Email: "a@example.com"}))

	applied, err := f.ws.PollOnce(ctx)
	require.NoError(t, err)
	assert.False(t, applied, "la pestaña visual no se refresca por temporizador")

	require.NoError(t, f.ws.Activate(ctx, adminsync.TabMembers))
	assert.Len(t, f.ws.Snapshot().Members.Draft, 1)

	require.NoError(t, f.users.Save(ctx, &entity.User{UID: "u2", Email: "b@example.com"}))
	applied, err = f.ws.PollOnce(ctx)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, f.ws.Snapshot().Members.Draft, 2)

	assert.Equal(t, domain.KindValidation, domain.KindOf(f.ws.Activate(ctx, "finanzas")))
}

func TestWorkspace_RefrescoManualDeListados(t *testing.T) {
	f := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, f.ws.Activate(ctx, adminsync.TabMembers))
	require.NoError(t, f.ws.Activate(ctx, adminsync.TabData))
	before := f.ws.Snapshot()

	require.NoError(t, f.users.Save(ctx, &entity.User{UID: "u1", Email: "a@example.com"}))
	require.NoError(t, f.subs.Create(ctx, &entity.TradeSubmission{ID: "s1", Type: entity.SubmissionBuyer, Timestamp: "2026-05-01T00:00:00.000Z"}))

	require.NoError(t, f.ws.Refresh(ctx, adminsync.TabMembers))
	require.NoError(t, f.ws.Refresh(ctx, adminsync.TabData))
	snap := f.ws.Snapshot()
	assert.Len(t, snap.Members.Draft, 1)
	assert.Len(t, snap.Data.Draft, 1)
	assert.Equal(t, adminsync.StateClean, snap.Members.State)
	assert.Greater(t, snap.Data.Version, before.Data.Version, "el refresco avanza la versión")

	f.store.SetFailure(errors.New("sin red"))
	assert.Error(t, f.ws.Refresh(ctx, adminsync.TabMembers), "el error de lectura se devuelve")
}

func TestWorkspace_GestionDeMiembros(t *testing.T) {
	f := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, f.users.Save(ctx, &entity.User{UID: "u1", Email: "a@example.com", MemberType: entity.MemberRegular}))
	require.NoError(t, f.ws.Activate(ctx, adminsync.TabMembers))

	u, err := f.ws.SetMemberApproval(ctx, "u1", true)
	require.NoError(t, err)
	assert.True(t, u.IsApproved)

	u, err = f.ws.SetMemberType(ctx, "u1", entity.MemberAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.Equal(t, entity.RoleAdmin, f.ws.Snapshot().Members.Draft[0].Role)

	assert.ErrorIs(t, f.ws.DeleteMember(ctx, "u1", false), domain.ErrConfirmationRequired)
	assert.ErrorIs(t, f.ws.DeleteMember(ctx, "admin-1", true), domain.ErrForbidden)
	require.NoError(t, f.ws.DeleteMember(ctx, "u1", true))
	assert.Empty(t, f.ws.Snapshot().Members.Draft)

	stored, err := f.users.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestWorkspace_BorrarIntencionConAdjunto(t *testing.T) {
	f := newWorkspace(t)
	ctx := context.Background()
	_, err := f.blobs.Upload(ctx, "submissions/u1/1_loi.pdf", bytes.NewReader([]byte("x")), 1, "application/pdf", nil)
	require.NoError(t, err)
	require.NoError(t, f.subs.Create(ctx, &entity.TradeSubmission{
		ID: "s1", Type: entity.SubmissionBuyer, Timestamp: "2026-01-01T00:00:00.000Z", FilePath: "submissions/u1/1_loi.pdf",
	}))
	require.NoError(t, f.ws.Activate(ctx, adminsync.TabData))
	assert.Len(t, f.ws.Snapshot().Data.Draft, 1)

	assert.ErrorIs(t, f.ws.DeleteSubmission(ctx, "s1", false), domain.ErrConfirmationRequired)
	require.NoError(t, f.ws.DeleteSubmission(ctx, "s1", true))
	assert.Empty(t, f.ws.Snapshot().Data.Draft)
	assert.False(t, f.blobs.Has("submissions/u1/1_loi.pdf"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de workspaces
// ──────────────────────────────────────────────────────────────────────────────

type countingPurger struct{ calls chan bool }

func (p *countingPurger) PurgeUnverified(_ context.Context, forceAll bool, _ housekeeping.ProgressFunc) (housekeeping.Result, error) {
	p.calls <- forceAll
	return housekeeping.Result{}, nil
}

func TestRegistry_AbreUnoPorAdminYPurga(t *testing.T) {
	store := memory.NewStore()
	purger := &countingPurger{calls: make(chan bool, 1)}
	reg := adminsync.NewRegistry(newDeps(store, memory.NewBlobStore("")), adminsync.Options{}, time.Hour, purger)
	ctx := context.Background()

	w1, err := reg.Open(ctx, "admin-1")
	require.NoError(t, err)
	w2, err := reg.Open(ctx, "admin-1")
	require.NoError(t, err)
	assert.Same(t, w1, w2)

	select {
	case forceAll := <-purger.calls:
		assert.False(t, forceAll, "la purga automática respeta el umbral")
	case <-time.After(2 * time.Second):
		t.Fatal("la purga automática no se lanzó")
	}

	_, ok := reg.Get("admin-1")
	assert.True(t, ok)
	require.NoError(t, reg.Close("admin-1"))
	_, ok = reg.Get("admin-1")
	assert.False(t, ok)
	require.NoError(t, reg.CloseAll())
}

// gatedConfig bloquea Load hasta que se cierre release.
type gatedConfig struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedConfig) Load(ctx context.Context) (entity.AppConfig, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return entity.AppConfig{}, ctx.Err()
	}
	return entity.DefaultAppConfig(), nil
}

func TestRegistry_LecturaLentaNoBloqueaOtrosAdmins(t *testing.T) {
	deps := newDeps(memory.NewStore(), memory.NewBlobStore(""))
	gate := &gatedConfig{entered: make(chan struct{}, 2), release: make(chan struct{})}
	deps.Config = gate
	reg := adminsync.NewRegistry(deps, adminsync.Options{}, time.Hour, nil)
	t.Cleanup(func() { _ = reg.CloseAll() })

	type opened struct {
		w   *adminsync.Workspace
		err error
	}
	results := make(chan opened, 2)
	for i := 0; i < 2; i++ {
		go func() {
			w, err := reg.Open(context.Background(), "admin-A")
			results <- opened{w, err}
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-gate.entered:
		case <-time.After(2 * time.Second):
			t.Fatal("Open no llegó a leer la configuración")
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ok := reg.Get("admin-B")
		assert.False(t, ok)
		assert.NoError(t, reg.Close("admin-B"))
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Get/Close de otro administrador quedó bloqueado por la lectura remota")
	}

	close(gate.release)
	first, second := <-results, <-results
	require.NoError(t, first.err)
	require.NoError(t, second.err)
	assert.Same(t, first.w, second.w, "las aperturas concurrentes comparten workspace")

	w, ok := reg.Get("admin-A")
	require.True(t, ok)
	assert.Same(t, first.w, w)
}
