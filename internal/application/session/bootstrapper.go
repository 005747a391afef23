// Package session garantiza que exista una identidad antes de las escrituras
// que requieren atribución.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

type ctxKey struct{}

// WithIdentity devuelve un contexto que transporta la identidad actual.
func WithIdentity(ctx context.Context, id *repository.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext devuelve la identidad actual, si existe.
func FromContext(ctx context.Context) (*repository.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*repository.Identity)
	return id, ok && id != nil
}

// Result identidad resultante; Issued indica que se creó una identidad anónima nueva.
type Result struct {
	Identity *repository.Identity
	Issued   bool
}

// Bootstrapper crea una identidad anónima cuando no hay ninguna.
type Bootstrapper struct {
	idp repository.IdentityProvider
	log zerolog.Logger
}

// NewBootstrapper construye el bootstrapper.
func NewBootstrapper(idp repository.IdentityProvider, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{idp: idp, log: log}
}

// EnsureAuthenticated devuelve la identidad del contexto o solicita una anónima.
// El contexto devuelto la transporta, de modo que llamadas sucesivas no crean otra.
func (b *Bootstrapper) EnsureAuthenticated(ctx context.Context) (context.Context, Result, error) {
	if id, ok := FromContext(ctx); ok {
		return ctx, Result{Identity: id}, nil
	}
	id, err := b.idp.SignInAnonymously(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAnonymousAuthDisabled) {
			b.log.Error().
				Str("reason", "anonymous_auth_disabled").
				Msg("el proveedor de identidad rechaza sesiones anónimas; habilítelo en la configuración")
			return ctx, Result{}, domain.Config(err)
		}
		b.log.Warn().Err(err).Msg("no se pudo crear sesión anónima")
		return ctx, Result{}, domain.Auth(err)
	}
	b.log.Debug().Str("uid", id.UID).Msg("sesión anónima creada")
	return WithIdentity(ctx, id), Result{Identity: id, Issued: true}, nil
}
