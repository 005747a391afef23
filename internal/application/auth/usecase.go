package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/application/session"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/navigation"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/pkg/jwt"
)

// JWTConfig configuración para generación de tokens de sesión.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

func (c JWTConfig) ttl() time.Duration {
	if c.ExpMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.ExpMinutes) * time.Minute
}

// AuthUseCase registro, inicio de sesión y verificación de miembros.
type AuthUseCase struct {
	idp    repository.IdentityProvider
	users  repository.UserRepository
	boot   *session.Bootstrapper
	policy entity.AccessPolicy
	jwtCfg JWTConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	idp repository.IdentityProvider,
	users repository.UserRepository,
	boot *session.Bootstrapper,
	policy entity.AccessPolicy,
	jwtCfg JWTConfig,
	log zerolog.Logger,
) *AuthUseCase {
	return &AuthUseCase{idp: idp, users: users, boot: boot, policy: policy, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// Register crea la cuenta, envía el correo de verificación y guarda el perfil sin aprobar.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("name", "el nombre es obligatorio")
	}
	if err := uc.rejectPrivileged(in.Email); err != nil {
		return nil, err
	}
	id, err := uc.idp.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return nil, domain.Auth(err)
	}
	if err := uc.idp.SendVerificationEmail(ctx, id); err != nil {
		uc.log.Warn().Err(err).Str("uid", id.UID).Msg("no se pudo enviar el correo de verificación")
	}
	user := uc.newProfile(id, in.Name, entity.MemberRegular, false)
	user.Phone = entity.SanitizePhone(in.Phone)
	user.Country = in.Country
	user.SocialMedia = in.SocialMedia
	if err := uc.users.Save(ctx, user); err != nil {
		return nil, domain.Write(err)
	}
	uc.log.Info().Str("uid", user.UID).Str("member_id", user.MemberID).Msg("miembro registrado")
	next, _ := navigation.Transition(navigation.ViewLogin, navigation.EventRegistered, navigation.Context{})
	return &dto.RegisterResponse{User: dto.ToUserResponse(user), NextView: string(next)}, nil
}

// QuickAddMember alta de un miembro pre-aprobado por un administrador.
func (uc *AuthUseCase) QuickAddMember(ctx context.Context, in dto.QuickAddMemberRequest) (*entity.User, error) {
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	mt := in.MemberType
	if mt == "" {
		mt = entity.MemberRegular
	}
	if !mt.Valid() {
		return nil, domain.Validation("memberType", "nivel de membresía inválido")
	}
	if err := uc.rejectPrivileged(in.Email); err != nil {
		return nil, err
	}
	id, err := uc.idp.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return nil, domain.Auth(err)
	}
	name := in.Name
	if name == "" {
		name = in.Email
	}
	user := uc.newProfile(id, name, mt, true)
	user.Phone = entity.SanitizePhone(in.Phone)
	user.Country = in.Country
	if err := uc.users.Save(ctx, user); err != nil {
		return nil, domain.Write(err)
	}
	return user, nil
}

// SignIn verifica credenciales y aplica las reglas de aprobación:
// verificado y sin aprobar se aprueba; sin verificar ni aprobar se rechaza
// salvo la cuenta privilegiada.
func (uc *AuthUseCase) SignIn(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	id, err := uc.idp.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, domain.Auth(err)
	}
	user, err := uc.users.GetByUID(ctx, id.UID)
	if err != nil {
		return nil, domain.Read(err)
	}
	if user == nil {
		return nil, domain.NotFound(domain.ErrProfileNotFound)
	}
	privileged := uc.policy.IsPrivileged(user) || uc.policy.IsPrivilegedEmail(id.Email)
	if id.EmailVerified && !user.IsApproved {
		user.IsApproved = true
		if err := uc.users.Save(ctx, user); err != nil {
			return nil, domain.Write(err)
		}
	}
	if !id.EmailVerified && !privileged && !user.IsApproved {
		return nil, domain.Auth(domain.ErrEmailNotVerified)
	}
	admin := privileged || user.Role == entity.RoleAdmin
	role := user.Role
	if admin {
		role = entity.RoleAdmin
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ttl(), jwt.Claims{
		UserID: user.UID,
		Email:  id.Email,
		Role:   role,
	})
	if err != nil {
		return nil, err
	}
	next, _ := navigation.Transition(navigation.ViewLogin, navigation.EventSignedIn, navigation.Context{SignedIn: true, Admin: admin})
	return &dto.LoginResponse{Token: token, User: dto.ToUserResponse(user), NextView: string(next)}, nil
}

// SignInAnonymously emite una sesión de invitado (o reutiliza la del contexto).
func (uc *AuthUseCase) SignInAnonymously(ctx context.Context) (*dto.SessionResponse, error) {
	_, res, err := uc.boot.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	token, err := uc.IssueSessionToken(res.Identity)
	if err != nil {
		return nil, err
	}
	next, _ := navigation.Transition(navigation.ViewLogin, navigation.EventContinueAsGuest, navigation.Context{})
	return &dto.SessionResponse{Token: token, UID: res.Identity.UID, NextView: string(next)}, nil
}

// IssueSessionToken firma un token de sesión para una identidad anónima.
func (uc *AuthUseCase) IssueSessionToken(id *repository.Identity) (string, error) {
	return jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ttl(), jwt.Claims{
		UserID:    id.UID,
		Role:      entity.RoleGuest,
		Anonymous: id.Anonymous,
	})
}

// ResendVerification reenvía el correo a la identidad con nombre del contexto o,
// si no la hay, a la que resulta de las credenciales.
func (uc *AuthUseCase) ResendVerification(ctx context.Context, in dto.ResendVerificationRequest) error {
	id, ok := session.FromContext(ctx)
	if !ok || id.Anonymous {
		if in.Email == "" || in.Password == "" {
			return domain.Auth(domain.ErrNotSignedIn)
		}
		var err error
		id, err = uc.idp.SignIn(ctx, in.Email, in.Password)
		if err != nil {
			return domain.Auth(err)
		}
	}
	if id.EmailVerified {
		return nil
	}
	if err := uc.idp.SendVerificationEmail(ctx, id); err != nil {
		return err
	}
	return nil
}

// ConfirmEmail consume el token de verificación y aprueba el perfil.
func (uc *AuthUseCase) ConfirmEmail(ctx context.Context, token string) (*dto.UserResponse, error) {
	id, err := uc.idp.ConfirmEmail(ctx, token)
	if err != nil {
		return nil, domain.Auth(err)
	}
	user, err := uc.users.GetByUID(ctx, id.UID)
	if err != nil {
		return nil, domain.Read(err)
	}
	if user == nil {
		return nil, domain.NotFound(domain.ErrProfileNotFound)
	}
	if !user.IsApproved {
		user.IsApproved = true
		if err := uc.users.Save(ctx, user); err != nil {
			return nil, domain.Write(err)
		}
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// RestoreAdmin crea (o recupera) la cuenta privilegiada y deja su perfil
// aprobado con rol admin. Es idempotente.
func (uc *AuthUseCase) RestoreAdmin(ctx context.Context, password string) (*entity.User, error) {
	email := uc.policy.PrivilegedEmail()
	if email == "" {
		return nil, domain.Validation("email", "no hay cuenta privilegiada configurada")
	}
	id, err := uc.idp.CreateAccount(ctx, email, password)
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		id, err = uc.idp.SignIn(ctx, email, password)
	}
	if err != nil {
		return nil, domain.Auth(err)
	}
	user, err := uc.users.GetByUID(ctx, id.UID)
	if err != nil {
		return nil, domain.Read(err)
	}
	if user == nil {
		user = uc.newProfile(id, "JD Morgan Admin", entity.MemberProjectManager, true)
	}
	user.Role = entity.RoleAdmin
	user.MemberType = entity.MemberProjectManager
	user.IsApproved = true
	if err := uc.users.Save(ctx, user); err != nil {
		return nil, domain.Write(err)
	}
	uc.log.Info().Str("uid", user.UID).Msg("cuenta de administración restaurada")
	return user, nil
}

func (uc *AuthUseCase) newProfile(id *repository.Identity, name string, mt entity.MemberType, approved bool) *entity.User {
	now := uc.now().UTC()
	u := &entity.User{
		UID:        id.UID,
		MemberID:   entity.NewMemberID(id.UID),
		Username:   id.Email,
		Email:      id.Email,
		Name:       strings.TrimSpace(name),
		Role:       entity.RoleClient,
		MemberType: mt,
		IsApproved: approved,
		CreatedAt:  &now,
	}
	if mt == entity.MemberAdmin {
		u.Role = entity.RoleAdmin
		u.IsApproved = true
	}
	return u
}

// rejectPrivileged la cuenta privilegiada solo se crea con RestoreAdmin.
func (uc *AuthUseCase) rejectPrivileged(email string) error {
	if uc.policy.IsPrivilegedEmail(email) {
		return domain.Auth(domain.ErrEmailAlreadyExists)
	}
	return nil
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return domain.Validation("email", "email inválido")
	}
	if len(password) < 6 {
		return domain.Validation("password", "la contraseña debe tener al menos 6 caracteres")
	}
	return nil
}
