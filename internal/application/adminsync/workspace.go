package adminsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/application/ports"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// Tab pestaña del panel.
type Tab string

const (
	TabVisual  Tab = "visual"
	TabMembers Tab = "members"
	TabData    Tab = "data"
)

// Valid indica si la pestaña existe.
func (t Tab) Valid() bool { return t == TabVisual || t == TabMembers || t == TabData }

// polled indica si la pestaña se refresca con el temporizador.
func (t Tab) polled() bool { return t == TabMembers || t == TabData }

// DefaultSlideImageMaxBytes tope de las imágenes de slides (2 MB).
const DefaultSlideImageMaxBytes int64 = 2 * 1024 * 1024

const maxNotices = 20

// ConfigSource carga la configuración del sitio mezclada con los valores por defecto.
type ConfigSource interface {
	Load(ctx context.Context) (entity.AppConfig, error)
}

// MemberService operaciones de miembros ya persistidas en remoto.
type MemberService interface {
	List(ctx context.Context) ([]*entity.User, error)
	SetApproval(ctx context.Context, uid string, approved bool) (*entity.User, error)
	SetMemberType(ctx context.Context, uid string, mt entity.MemberType) (*entity.User, error)
	Delete(ctx context.Context, uid string) error
}

// MemberCreator alta rápida de miembros pre-aprobados.
type MemberCreator interface {
	QuickAddMember(ctx context.Context, in dto.QuickAddMemberRequest) (*entity.User, error)
}

// SubmissionService operaciones sobre intenciones.
type SubmissionService interface {
	ListRecent(ctx context.Context, limit int) ([]*entity.TradeSubmission, error)
	Delete(ctx context.Context, id string) error
}

// Deps colaboradores del workspace.
type Deps struct {
	Config      ConfigSource
	Settings    repository.SettingsRepository
	Members     MemberService
	Creator     MemberCreator
	Submissions SubmissionService
	Blobs       repository.BlobStore
	Metrics     ports.Metrics
	Log         zerolog.Logger
}

// Options parámetros del workspace.
type Options struct {
	SubmissionLimit    int
	SlideImageMaxBytes int64
	Now                func() time.Time
	NewID              func() string
}

// Notice mensaje no bloqueante tras una mutación exitosa.
type Notice struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Snapshot estado completo del panel.
type Snapshot struct {
	AdminUID      string                               `json:"adminUid"`
	ActiveTab     Tab                                  `json:"activeTab"`
	Visual        TrackerView[entity.AppConfig]        `json:"visual"`
	Members       TrackerView[[]entity.User]           `json:"members"`
	Data          TrackerView[[]entity.TradeSubmission] `json:"data"`
	LastRefreshed time.Time                            `json:"lastRefreshed"`
	Notices       []Notice                             `json:"notices"`
}

// Workspace panel de un administrador: tres drafts, pestaña activa y poller.
type Workspace struct {
	adminUID string
	deps     Deps
	opts     Options

	visual  *Tracker[entity.AppConfig]
	members *Tracker[[]entity.User]
	data    *Tracker[[]entity.TradeSubmission]

	mu            sync.Mutex
	active        Tab
	lastRefreshed time.Time
	notices       []Notice

	t       tomb.Tomb
	started bool
}

// NewWorkspace crea un workspace con los valores por defecto como draft inicial.
func NewWorkspace(adminUID string, deps Deps, opts Options) *Workspace {
	if opts.SubmissionLimit <= 0 {
		opts.SubmissionLimit = 20
	}
	if opts.SlideImageMaxBytes <= 0 {
		opts.SlideImageMaxBytes = DefaultSlideImageMaxBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString()[:8] }
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}
	return &Workspace{
		adminUID: adminUID,
		deps:     deps,
		opts:     opts,
		visual:   NewTracker(entity.DefaultAppConfig(), entity.AppConfig.Clone),
		members:  NewTracker([]entity.User{}, cloneSlice[entity.User]),
		data:     NewTracker([]entity.TradeSubmission{}, cloneSlice[entity.TradeSubmission]),
		active:   TabVisual,
	}
}

func cloneSlice[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}

// AdminUID administrador dueño del workspace.
func (w *Workspace) AdminUID() string { return w.adminUID }

// Snapshot devuelve una copia consistente por pestaña.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	active, last := w.active, w.lastRefreshed
	notices := append([]Notice(nil), w.notices...)
	w.mu.Unlock()
	return Snapshot{
		AdminUID:      w.adminUID,
		ActiveTab:     active,
		Visual:        w.visual.View(),
		Members:       w.members.View(),
		Data:          w.data.View(),
		LastRefreshed: last,
		Notices:       notices,
	}
}

// ActiveTab pestaña activa.
func (w *Workspace) ActiveTab() Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Activate cambia de pestaña y la refresca si su draft está Clean.
func (w *Workspace) Activate(ctx context.Context, tab Tab) error {
	if !tab.Valid() {
		return domain.Validation("tab", "pestaña desconocida")
	}
	w.mu.Lock()
	w.active = tab
	w.mu.Unlock()
	_, err := w.syncTab(ctx, tab)
	return err
}

// PollOnce un tick del temporizador: refresca la pestaña activa si es de
// listado y su draft está Clean. Devuelve si se aplicaron datos remotos.
func (w *Workspace) PollOnce(ctx context.Context) (bool, error) {
	tab := w.ActiveTab()
	if !tab.polled() {
		return false, nil
	}
	return w.syncTab(ctx, tab)
}

// Refresh refresco manual: descarta ediciones locales y recarga la pestaña.
func (w *Workspace) Refresh(ctx context.Context, tab Tab) error {
	switch tab {
	case TabVisual:
		cfg, err := w.deps.Config.Load(ctx)
		if err != nil {
			return err
		}
		if err := w.visual.Reset(cfg); err != nil {
			return err
		}
	case TabMembers:
		users, err := w.fetchMembers(ctx)
		if err != nil {
			return err
		}
		if err := w.members.Reset(users); err != nil {
			return err
		}
	case TabData:
		subs, err := w.fetchSubmissions(ctx)
		if err != nil {
			return err
		}
		if err := w.data.Reset(subs); err != nil {
			return err
		}
	default:
		return domain.Validation("tab", "pestaña desconocida")
	}
	w.touch()
	return nil
}

func (w *Workspace) syncTab(ctx context.Context, tab Tab) (bool, error) {
	var applied bool
	switch tab {
	case TabVisual:
		state, seen := w.visual.Observe()
		if state != StateClean {
			return false, nil
		}
		cfg, err := w.deps.Config.Load(ctx)
		if err != nil {
			return false, err
		}
		applied = w.visual.ApplyRemote(cfg, seen)
	case TabMembers:
		state, seen := w.members.Observe()
		if state != StateClean {
			return false, nil
		}
		users, err := w.fetchMembers(ctx)
		if err != nil {
			return false, err
		}
		applied = w.members.ApplyRemote(users, seen)
	case TabData:
		state, seen := w.data.Observe()
		if state != StateClean {
			return false, nil
		}
		subs, err := w.fetchSubmissions(ctx)
		if err != nil {
			return false, err
		}
		applied = w.data.ApplyRemote(subs, seen)
	}
	if applied {
		w.touch()
	}
	return applied, nil
}

func (w *Workspace) fetchMembers(ctx context.Context) ([]entity.User, error) {
	list, err := w.deps.Members.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.User, 0, len(list))
	for _, u := range list {
		out = append(out, *u)
	}
	return out, nil
}

func (w *Workspace) fetchSubmissions(ctx context.Context) ([]entity.TradeSubmission, error) {
	list, err := w.deps.Submissions.ListRecent(ctx, w.opts.SubmissionLimit)
	if err != nil {
		return nil, err
	}
	out := make([]entity.TradeSubmission, 0, len(list))
	for _, s := range list {
		out = append(out, *s)
	}
	return out, nil
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastRefreshed = w.opts.Now()
	w.mu.Unlock()
}

func (w *Workspace) notify(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notices = append(w.notices, Notice{At: w.opts.Now(), Message: msg})
	if len(w.notices) > maxNotices {
		w.notices = w.notices[len(w.notices)-maxNotices:]
	}
}

// ── Edición de la configuración visual ──────────────────────────────────────

// UpdateBrand edita texto e icono del logo.
func (w *Workspace) UpdateBrand(in dto.BrandRequest) error {
	return w.visual.Edit(func(c *entity.AppConfig) error {
		if in.LogoText != nil {
			c.LogoText = *in.LogoText
		}
		if in.LogoIcon != nil {
			c.LogoIcon = *in.LogoIcon
		}
		return nil
	})
}

// SetAnnouncements reemplaza los avisos; asigna ID a los que no lo tienen.
func (w *Workspace) SetAnnouncements(items []entity.Announcement) error {
	return w.visual.Edit(func(c *entity.AppConfig) error {
		c.Announcements = append([]entity.Announcement{}, items...)
		for i := range c.Announcements {
			if c.Announcements[i].ID == "" {
				c.Announcements[i].ID = "ann_" + w.opts.NewID()
			}
		}
		return nil
	})
}

// SetQuotes reemplaza las cotizaciones.
func (w *Workspace) SetQuotes(items []entity.MarketQuote) error {
	return w.visual.Edit(func(c *entity.AppConfig) error {
		c.Quotes = append([]entity.MarketQuote{}, items...)
		for i := range c.Quotes {
			if c.Quotes[i].ID == "" {
				c.Quotes[i].ID = "q_" + w.opts.NewID()
			}
		}
		return nil
	})
}

// SetIndustryNews reemplaza las noticias.
func (w *Workspace) SetIndustryNews(items []entity.IndustryNews) error {
	return w.visual.Edit(func(c *entity.AppConfig) error {
		c.IndustryNews = append([]entity.IndustryNews{}, items...)
		for i := range c.IndustryNews {
			if c.IndustryNews[i].ID == "" {
				c.IndustryNews[i].ID = "news_" + w.opts.NewID()
			}
		}
		return nil
	})
}

// Valores de un slide nuevo cuando la petición no los trae.
const (
	placeholderSlideImg      = "https://images.unsplash.com/photo-1639762681485-074b7f938ba0?q=80&w=2070&auto=format&fit=crop"
	placeholderSlideTitle    = "New trade headline"
	placeholderSlideSubtitle = "New trade subtitle"
)

// AddSlide agrega un slide al final. Los campos omitidos toman valores de
// relleno; una imagen explícitamente vacía se rechaza.
func (w *Workspace) AddSlide(in dto.SlideRequest) (entity.HeroSlide, error) {
	var added entity.HeroSlide
	err := w.visual.Edit(func(c *entity.AppConfig) error {
		s := entity.HeroSlide{
			ID:       "slide_" + w.opts.NewID(),
			Img:      placeholderSlideImg,
			Title:    placeholderSlideTitle,
			Subtitle: placeholderSlideSubtitle,
			Order:    len(c.HeroSlides) + 1,
		}
		applySlide(&s, in)
		if strings.TrimSpace(s.Img) == "" {
			return domain.Validation("img", "el slide requiere una imagen")
		}
		c.HeroSlides = append(c.HeroSlides, s)
		added = s
		return nil
	})
	return added, err
}

// UpdateSlide edita un slide existente.
func (w *Workspace) UpdateSlide(id string, in dto.SlideRequest) error {
	return w.visual.Edit(func(c *entity.AppConfig) error {
		i := c.SlideIndex(id)
		if i < 0 {
			return domain.NotFound(domain.ErrNotFound)
		}
		applySlide(&c.HeroSlides[i], in)
		if in.Order != nil {
			c.SortSlides()
		}
		return nil
	})
}

// RemoveSlide quita un slide del draft. Quitar el último se bloquea antes de
// pedir confirmación; sin confirmación no se modifica nada.
func (w *Workspace) RemoveSlide(id string, confirmed bool) error {
	err := w.visual.Edit(func(c *entity.AppConfig) error {
		i := c.SlideIndex(id)
		if i < 0 {
			return domain.NotFound(domain.ErrNotFound)
		}
		if len(c.HeroSlides) <= 1 {
			return domain.ErrLastSlide
		}
		if !confirmed {
			return domain.ErrConfirmationRequired
		}
		c.HeroSlides = append(c.HeroSlides[:i], c.HeroSlides[i+1:]...)
		for j := range c.HeroSlides {
			c.HeroSlides[j].Order = j + 1
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.notify("Slide eliminado del borrador")
	return nil
}

// UploadSlideImage sube una imagen para un slide y devuelve su URL.
func (w *Workspace) UploadSlideImage(ctx context.Context, name string, size int64, contentType string, r io.Reader) (string, error) {
	if size > w.opts.SlideImageMaxBytes {
		return "", domain.ValidationErr("img", domain.ErrFileTooLarge)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.Validation("img", "el archivo debe ser una imagen")
	}
	path := fmt.Sprintf("hero_slides/%s_%s", w.opts.NewID(), strings.ReplaceAll(name, " ", "_"))
	url, err := w.deps.Blobs.Upload(ctx, path, r, size, contentType, nil)
	if err != nil {
		return "", domain.Upload(err)
	}
	w.deps.Metrics.UploadedBytes(size)
	return url, nil
}

func applySlide(s *entity.HeroSlide, in dto.SlideRequest) {
	if in.Img != nil {
		s.Img = *in.Img
	}
	if in.Title != nil {
		s.Title = *in.Title
	}
	if in.Subtitle != nil {
		s.Subtitle = *in.Subtitle
	}
	if in.Order != nil {
		s.Order = *in.Order
	}
}

// CanPublish indica si el botón de publicar está habilitado.
func (w *Workspace) CanPublish() bool { return w.visual.CanPublish() }

// Publish escribe el draft visual completo en un único batch: documento base,
// cada slide como subdocumento y tombstones de los slides retirados.
func (w *Workspace) Publish(ctx context.Context) (State, error) {
	cfg, baseline, version, err := w.visual.BeginPublish()
	if err != nil {
		return w.visual.View().State, err
	}
	removed := removedSlides(baseline, cfg)
	if err := w.deps.Settings.Publish(ctx, cfg, removed); err != nil {
		werr := domain.Write(err)
		state := w.visual.FinishPublish(version, cfg, werr)
		w.deps.Metrics.PublishFinished(false)
		w.deps.Log.Error().Err(err).Str("admin", w.adminUID).Msg("publicación fallida; el borrador se conserva")
		return state, werr
	}
	state := w.visual.FinishPublish(version, cfg, nil)
	w.deps.Metrics.PublishFinished(true)
	w.deps.Log.Info().
		Str("admin", w.adminUID).
		Int("slides", len(cfg.HeroSlides)).
		Int("removed", len(removed)).
		Msg("configuración publicada")
	w.notify("Configuración publicada")
	return state, nil
}

func removedSlides(baseline, draft entity.AppConfig) []string {
	var out []string
	for _, s := range baseline.HeroSlides {
		if draft.SlideIndex(s.ID) < 0 {
			out = append(out, s.ID)
		}
	}
	return out
}

// ── Miembros e intenciones ──────────────────────────────────────────────────

// DeleteMember borra un miembro tras confirmación explícita.
func (w *Workspace) DeleteMember(ctx context.Context, uid string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if uid == w.adminUID {
		return fmt.Errorf("borrar la propia cuenta: %w", domain.ErrForbidden)
	}
	if err := w.deps.Members.Delete(ctx, uid); err != nil {
		return err
	}
	w.members.Patch(func(list *[]entity.User) {
		*list = removeWhere(*list, func(u entity.User) bool { return u.UID == uid })
	})
	w.notify("Miembro eliminado")
	return nil
}

// SetMemberApproval fija la aprobación de un miembro.
func (w *Workspace) SetMemberApproval(ctx context.Context, uid string, approved bool) (*entity.User, error) {
	u, err := w.deps.Members.SetApproval(ctx, uid, approved)
	if err != nil {
		return nil, err
	}
	w.patchMember(u)
	if approved {
		w.notify("Miembro aprobado")
	} else {
		w.notify("Aprobación revocada")
	}
	return u, nil
}

// SetMemberType cambia el nivel de un miembro.
func (w *Workspace) SetMemberType(ctx context.Context, uid string, mt entity.MemberType) (*entity.User, error) {
	u, err := w.deps.Members.SetMemberType(ctx, uid, mt)
	if err != nil {
		return nil, err
	}
	w.patchMember(u)
	w.notify("Nivel de membresía actualizado")
	return u, nil
}

// QuickAddMember da de alta un miembro pre-aprobado.
func (w *Workspace) QuickAddMember(ctx context.Context, in dto.QuickAddMemberRequest) (*entity.User, error) {
	if w.deps.Creator == nil {
		return nil, errors.New("alta rápida no disponible")
	}
	u, err := w.deps.Creator.QuickAddMember(ctx, in)
	if err != nil {
		return nil, err
	}
	w.patchMember(u)
	w.notify("Miembro creado")
	return u, nil
}

func (w *Workspace) patchMember(u *entity.User) {
	w.members.Patch(func(list *[]entity.User) {
		for i := range *list {
			if (*list)[i].UID == u.UID {
				(*list)[i] = *u
				return
			}
		}
		*list = append([]entity.User{*u}, *list...)
	})
}

// DeleteSubmission borra una intención tras confirmación explícita.
func (w *Workspace) DeleteSubmission(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := w.deps.Submissions.Delete(ctx, id); err != nil {
		return err
	}
	w.data.Patch(func(list *[]entity.TradeSubmission) {
		*list = removeWhere(*list, func(s entity.TradeSubmission) bool { return s.ID == id })
	})
	w.notify("Intención eliminada")
	return nil
}

func removeWhere[T any](list []T, pred func(T) bool) []T {
	out := list[:0]
	for _, v := range list {
		if !pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// ── Ciclo de vida del poller ────────────────────────────────────────────────

// Start lanza el poller de pestañas de listado con el intervalo dado.
// Debe llamarse una sola vez y antes de Go.
func (w *Workspace) Start(interval time.Duration) {
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	w.t.Go(func() error {
		<-w.t.Dying()
		cancel()
		return nil
	})
	w.t.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.t.Dying():
				return nil
			case <-ticker.C:
				if _, err := w.PollOnce(ctx); err != nil && ctx.Err() == nil {
					w.deps.Log.Warn().Err(err).Str("admin", w.adminUID).Msg("refresco periódico fallido")
				}
			}
		}
	})
}

// Go ejecuta fn bajo el ciclo de vida del workspace.
func (w *Workspace) Go(fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	w.t.Go(func() error {
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			fn(ctx)
		}()
		select {
		case <-done:
		case <-w.t.Dying():
			cancel()
			<-done
		}
		return nil
	})
}

// Stop detiene el poller y las tareas en curso.
func (w *Workspace) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	w.t.Kill(nil)
	if !started {
		return nil
	}
	return w.t.Wait()
}
