package session_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/application/session"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// fakeProvider solo implementa SignInAnonymously; el resto no se usa aquí.
type fakeProvider struct {
	repository.IdentityProvider
	err   error
	calls int
}

func (f *fakeProvider) SignInAnonymously(context.Context) (*repository.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &repository.Identity{UID: "anon1", Anonymous: true}, nil
}

func TestEnsureAuthenticated_ReutilizaIdentidad(t *testing.T) {
	idp := &fakeProvider{}
	b := session.NewBootstrapper(idp, zerolog.Nop())
	ctx := session.WithIdentity(context.Background(), &repository.Identity{UID: "u1"})

	_, res, err := b.EnsureAuthenticated(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", res.Identity.UID)
	assert.False(t, res.Issued)
	assert.Zero(t, idp.calls)
}

func TestEnsureAuthenticated_CreaAnonimaUnaSolaVez(t *testing.T) {
	idp := &fakeProvider{}
	b := session.NewBootstrapper(idp, zerolog.Nop())

	ctx, res, err := b.EnsureAuthenticated(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Issued)
	assert.True(t, res.Identity.Anonymous)

	_, again, err := b.EnsureAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, again.Issued)
	assert.Equal(t, 1, idp.calls)
}

func TestEnsureAuthenticated_AnonimoDeshabilitado(t *testing.T) {
	var buf bytes.Buffer
	idp := &fakeProvider{err: domain.ErrAnonymousAuthDisabled}
	b := session.NewBootstrapper(idp, zerolog.New(&buf))

	_, _, err := b.EnsureAuthenticated(context.Background())
	assert.Equal(t, domain.KindConfig, domain.KindOf(err))
	assert.ErrorIs(t, err, domain.ErrAnonymousAuthDisabled)
	assert.Contains(t, buf.String(), `"reason":"anonymous_auth_disabled"`)
}

func TestEnsureAuthenticated_OtroFallo(t *testing.T) {
	idp := &fakeProvider{err: errors.New("timeout")}
	b := session.NewBootstrapper(idp, zerolog.Nop())

	_, _, err := b.EnsureAuthenticated(context.Background())
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
}
