package repository

import "context"

// Identity identidad autenticada (con nombre o anónima).
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	Anonymous     bool   `json:"anonymous"`
}

// IdentityProvider puerto del proveedor de identidad.
type IdentityProvider interface {
	// CreateAccount devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
	CreateAccount(ctx context.Context, email, password string) (*Identity, error)
	// SignIn devuelve domain.ErrInvalidCredentials ante email o contraseña incorrectos.
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// SignInAnonymously devuelve domain.ErrAnonymousAuthDisabled si está deshabilitado.
	SignInAnonymously(ctx context.Context) (*Identity, error)
	SendVerificationEmail(ctx context.Context, id *Identity) error
	ConfirmEmail(ctx context.Context, token string) (*Identity, error)
	// Lookup devuelve (nil, nil) si no existe.
	Lookup(ctx context.Context, uid string) (*Identity, error)
	// SetPassword restablece la contraseña de una cuenta existente.
	SetPassword(ctx context.Context, uid, password string) error
}

// Mailer envía correos transaccionales.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
