package adminsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/application/housekeeping"
	"github.com/jdmorgan/trading-portal/internal/application/ports"
)

// DefaultPollInterval intervalo de refresco de las pestañas de listado.
const DefaultPollInterval = 15 * time.Second

// UnverifiedPurger purga de cuentas no verificadas lanzada al abrir el panel.
type UnverifiedPurger interface {
	PurgeUnverified(ctx context.Context, forceAll bool, progress housekeeping.ProgressFunc) (housekeeping.Result, error)
}

// Registry un workspace por administrador.
type Registry struct {
	deps         Deps
	opts         Options
	pollInterval time.Duration
	purger       UnverifiedPurger
	metrics      ports.Metrics
	log          zerolog.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry construye el registro. purger puede ser nil.
func NewRegistry(deps Deps, opts Options, pollInterval time.Duration, purger UnverifiedPurger) *Registry {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Registry{
		deps:         deps,
		opts:         opts,
		pollInterval: pollInterval,
		purger:       purger,
		metrics:      metrics,
		log:          deps.Log,
		workspaces:   make(map[string]*Workspace),
	}
}

// Open devuelve el workspace del administrador, creándolo si no existe. Al
// crearlo carga la pestaña visual, arranca el poller y lanza en segundo plano
// la purga automática de cuentas no verificadas. La lectura remota se hace
// fuera del candado; si otra llamada abre el mismo workspace antes, gana esa.
func (r *Registry) Open(ctx context.Context, adminUID string) (*Workspace, error) {
	if w, ok := r.Get(adminUID); ok {
		return w, nil
	}
	w := NewWorkspace(adminUID, r.deps, r.opts)
	if err := w.Activate(ctx, TabVisual); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.workspaces[adminUID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.workspaces[adminUID] = w
	r.metrics.WorkspacesOpen(len(r.workspaces))
	// Start y Go no bloquean; bajo el candado un Close concurrente ve el poller ya arrancado.
	defer r.mu.Unlock()

	w.Start(r.pollInterval)
	if r.purger != nil {
		w.Go(func(ctx context.Context) {
			progress := func(msg string) {
				r.log.Debug().Str("admin", adminUID).Msg(msg)
			}
			if _, err := r.purger.PurgeUnverified(ctx, false, progress); err != nil && !errors.Is(err, context.Canceled) {
				r.log.Warn().Err(err).Str("admin", adminUID).Msg("purga automática fallida")
			}
		})
	}
	r.log.Info().Str("admin", adminUID).Msg("workspace de administración abierto")
	return w, nil
}

// Get devuelve el workspace abierto del administrador.
func (r *Registry) Get(adminUID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workspaces[adminUID]
	return w, ok
}

// Close detiene y descarta el workspace del administrador.
func (r *Registry) Close(adminUID string) error {
	r.mu.Lock()
	w, ok := r.workspaces[adminUID]
	delete(r.workspaces, adminUID)
	r.metrics.WorkspacesOpen(len(r.workspaces))
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return w.Stop()
}

// CloseAll detiene todos los workspaces.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	all := r.workspaces
	r.workspaces = make(map[string]*Workspace)
	r.metrics.WorkspacesOpen(0)
	r.mu.Unlock()
	var errs []error
	for _, w := range all {
		if err := w.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
