// Package identity implementa el proveedor de identidad sobre el almacén de
// documentos: cuentas con email/contraseña, sesiones anónimas y verificación
// de email mediante enlaces firmados.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/pkg/jwt"
)

var _ repository.IdentityProvider = (*Provider)(nil)

// DefaultVerifyTTL vigencia del enlace de verificación.
const DefaultVerifyTTL = 48 * time.Hour

// Options configuración del proveedor.
type Options struct {
	AnonymousEnabled bool
	Secret           string
	Issuer           string
	VerifyTTL        time.Duration
	// VerifyURL base del enlace; se le añade ?token=...
	VerifyURL  string
	BcryptCost int
	Now        func() time.Time
}

// record documento persistido en identities/<uid>.
type record struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email,omitempty"`
	PasswordHash  string    `json:"passwordHash,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Anonymous     bool      `json:"anonymous"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *record) identity() *repository.Identity {
	return &repository.Identity{UID: r.UID, Email: r.Email, EmailVerified: r.EmailVerified, Anonymous: r.Anonymous}
}

// emailIndex documento en identity_emails/<email normalizado>.
type emailIndex struct {
	UID string `json:"uid"`
}

// Provider proveedor de identidad respaldado por un DocumentStore.
type Provider struct {
	store  repository.DocumentStore
	mailer repository.Mailer
	opts   Options
	log    zerolog.Logger
}

// NewProvider construye el proveedor.
func NewProvider(store repository.DocumentStore, mailer repository.Mailer, opts Options, log zerolog.Logger) *Provider {
	if opts.VerifyTTL <= 0 {
		opts.VerifyTTL = DefaultVerifyTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{store: store, mailer: mailer, opts: opts, log: log}
}

func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*repository.Identity, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := p.uidByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	rec := &record{
		UID:          newUID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.opts.Now().UTC(),
	}
	recOp, err := repository.PutOp(repository.CollectionIdentities, rec.UID, rec)
	if err != nil {
		return nil, err
	}
	idxOp, err := repository.PutOp(repository.CollectionIdentityEmails, email, emailIndex{UID: rec.UID})
	if err != nil {
		return nil, err
	}
	if err := p.store.Batch(ctx, []repository.WriteOp{recOp, idxOp}); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return rec.identity(), nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*repository.Identity, error) {
	uid, err := p.uidByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if uid == "" {
		return nil, domain.ErrInvalidCredentials
	}
	rec, err := p.get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return rec.identity(), nil
}

func (p *Provider) SignInAnonymously(ctx context.Context) (*repository.Identity, error) {
	if !p.opts.AnonymousEnabled {
		return nil, domain.ErrAnonymousAuthDisabled
	}
	rec := &record{UID: newUID(), Anonymous: true, CreatedAt: p.opts.Now().UTC()}
	if err := p.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec.identity(), nil
}

func (p *Provider) SendVerificationEmail(ctx context.Context, id *repository.Identity) error {
	if id == nil || id.Email == "" {
		return domain.ErrNotSignedIn
	}
	token, err := jwt.Generate(p.opts.Secret, p.opts.Issuer, p.opts.VerifyTTL, jwt.Claims{
		UserID:  id.UID,
		Email:   id.Email,
		Purpose: jwt.PurposeVerifyEmail,
	})
	if err != nil {
		return fmt.Errorf("verification token: %w", err)
	}
	link := p.opts.VerifyURL
	if strings.Contains(link, "?") {
		link += "&token=" + url.QueryEscape(token)
	} else {
		link += "?token=" + url.QueryEscape(token)
	}
	body := fmt.Sprintf(`<p>Welcome to JD Morgan Global Trading.</p>
<p>Please confirm your email address to activate your membership:</p>
<p><a href="%s">Verify my email</a></p>`, link)
	if err := p.mailer.Send(ctx, id.Email, "Verify your JD Morgan account", body); err != nil {
		return fmt.Errorf("send verification to %s: %w", id.Email, err)
	}
	p.log.Info().Str("uid", id.UID).Msg("correo de verificación enviado")
	return nil
}

func (p *Provider) ConfirmEmail(ctx context.Context, token string) (*repository.Identity, error) {
	claims, err := jwt.Parse(p.opts.Secret, token, jwt.PurposeVerifyEmail)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	rec, err := p.get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Email != entity.NormalizeEmail(claims.Email) {
		return nil, domain.ErrInvalidToken
	}
	if !rec.EmailVerified {
		rec.EmailVerified = true
		if err := p.put(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec.identity(), nil
}

func (p *Provider) Lookup(ctx context.Context, uid string) (*repository.Identity, error) {
	rec, err := p.get(ctx, uid)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.identity(), nil
}

func (p *Provider) SetPassword(ctx context.Context, uid, password string) error {
	rec, err := p.get(ctx, uid)
	if err != nil {
		return err
	}
	if rec == nil || rec.Anonymous {
		return domain.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rec.PasswordHash = string(hash)
	return p.put(ctx, rec)
}

func (p *Provider) uidByEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", nil
	}
	data, err := p.store.Get(ctx, repository.CollectionIdentityEmails, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}
	var idx emailIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return "", fmt.Errorf("decode email index: %w", err)
	}
	return idx.UID, nil
}

func (p *Provider) get(ctx context.Context, uid string) (*record, error) {
	if uid == "" {
		return nil, nil
	}
	data, err := p.store.Get(ctx, repository.CollectionIdentities, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get identity %s: %w", uid, err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode identity %s: %w", uid, err)
	}
	return &rec, nil
}

func (p *Provider) put(ctx context.Context, rec *record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode identity %s: %w", rec.UID, err)
	}
	if err := p.store.Put(ctx, repository.CollectionIdentities, rec.UID, data); err != nil {
		return fmt.Errorf("put identity %s: %w", rec.UID, err)
	}
	return nil
}

// newUID UUID sin guiones, de modo que el prefijo del memberId sea alfanumérico.
func newUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
