// Package adminsync mantiene la copia editable (draft) de los datos del panel
// de administración y la sincroniza con el almacén remoto.
package adminsync

import (
	"sync"

	"github.com/jdmorgan/trading-portal/internal/domain"
)

// State estado del draft.
type State string

const (
	StateClean         State = "clean"
	StateDirty         State = "dirty"
	StatePublishing    State = "publishing"
	StatePublishFailed State = "publish_failed"
)

// Tracker draft versionado. Cada edición incrementa la versión; un resultado
// remoto solo se aplica si el draft sigue Clean y en la misma versión que
// cuando se inició la lectura (compare-and-swap).
type Tracker[T any] struct {
	mu       sync.Mutex
	draft    T
	baseline T
	state    State
	version  uint64
	lastErr  error
	clone    func(T) T
}

// NewTracker crea un tracker Clean con el valor inicial.
func NewTracker[T any](initial T, clone func(T) T) *Tracker[T] {
	return &Tracker[T]{draft: clone(initial), baseline: clone(initial), state: StateClean, clone: clone}
}

// TrackerView copia consistente del tracker.
type TrackerView[T any] struct {
	Draft      T      `json:"draft"`
	State      State  `json:"state"`
	Version    uint64 `json:"version"`
	CanPublish bool   `json:"canPublish"`
	LastError  string `json:"lastError,omitempty"`
}

// View devuelve una copia del draft y su estado.
func (t *Tracker[T]) View() TrackerView[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := TrackerView[T]{
		Draft:      t.clone(t.draft),
		State:      t.state,
		Version:    t.version,
		CanPublish: canPublish(t.state),
	}
	if t.lastErr != nil {
		v.LastError = t.lastErr.Error()
	}
	return v
}

// Baseline copia de la última instantánea remota conocida.
func (t *Tracker[T]) Baseline() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clone(t.baseline)
}

// Observe devuelve estado y versión para iniciar una lectura remota.
func (t *Tracker[T]) Observe() (State, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.version
}

// Edit aplica fn sobre el draft. Clean y PublishFailed pasan a Dirty; durante
// Publishing el estado se mantiene y la versión avanza, de modo que al terminar
// la publicación el draft queda Dirty. Si fn falla el draft no cambia.
func (t *Tracker[T]) Edit(fn func(*T) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.clone(t.draft)
	if err := fn(&next); err != nil {
		return err
	}
	t.draft = next
	t.version++
	if t.state != StatePublishing {
		t.state = StateDirty
	}
	return nil
}

// Patch refleja en el draft un cambio ya persistido en remoto (sin pasar a Dirty).
// Avanza la versión para invalidar lecturas remotas en vuelo.
func (t *Tracker[T]) Patch(fn func(*T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.draft)
	fn(&t.baseline)
	t.version++
}

// ApplyRemote reemplaza el draft con v si sigue Clean y en la versión seen.
func (t *Tracker[T]) ApplyRemote(v T, seen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateClean || t.version != seen {
		return false
	}
	t.draft = t.clone(v)
	t.baseline = t.clone(v)
	t.version++
	return true
}

// Reset descarta las ediciones y deja el draft Clean con v (refresco manual).
func (t *Tracker[T]) Reset(v T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StatePublishing {
		return domain.ErrPublishInProgress
	}
	t.draft = t.clone(v)
	t.baseline = t.clone(v)
	t.state = StateClean
	t.lastErr = nil
	t.version++
	return nil
}

// BeginPublish pasa de Dirty o PublishFailed a Publishing y devuelve una copia
// del draft junto con su versión.
func (t *Tracker[T]) BeginPublish() (T, T, uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	switch t.state {
	case StateClean:
		return zero, zero, 0, domain.ErrNothingToPublish
	case StatePublishing:
		return zero, zero, 0, domain.ErrPublishInProgress
	}
	t.state = StatePublishing
	t.lastErr = nil
	return t.clone(t.draft), t.clone(t.baseline), t.version, nil
}

// FinishPublish cierra la publicación iniciada con la versión dada. Con error
// pasa a PublishFailed conservando el draft. Con éxito published es la nueva
// baseline y el estado es Clean, o Dirty si hubo ediciones durante la escritura.
func (t *Tracker[T]) FinishPublish(version uint64, published T, err error) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = StatePublishFailed
		t.lastErr = err
		return t.state
	}
	t.baseline = t.clone(published)
	if t.version == version {
		t.state = StateClean
	} else {
		t.state = StateDirty
	}
	return t.state
}

// CanPublish indica si hay algo que publicar y ninguna escritura en vuelo.
func (t *Tracker[T]) CanPublish() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return canPublish(t.state)
}

func canPublish(s State) bool {
	return s == StateDirty || s == StatePublishFailed
}
