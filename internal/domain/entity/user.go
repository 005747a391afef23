package entity

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
	RoleGuest  = "guest"
)

// MemberType nivel de membresía del usuario.
type MemberType string

const (
	MemberRegular        MemberType = "Regular"
	MemberPremium        MemberType = "Premium"
	MemberProjectManager MemberType = "Project Manager"
	MemberAdmin          MemberType = "Admin"
)

// Valid indica si el nivel pertenece al catálogo conocido.
func (m MemberType) Valid() bool {
	switch m {
	case MemberRegular, MemberPremium, MemberProjectManager, MemberAdmin:
		return true
	}
	return false
}

// User representa un miembro o administrador. UID es el único identificador
// y se escribe siempre al crear el documento.
type User struct {
	UID         string     `json:"uid"`
	MemberID    string     `json:"memberId"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	Country     string     `json:"country,omitempty"`
	SocialMedia string     `json:"socialMedia,omitempty"`
	MemberType  MemberType `json:"memberType"`
	IsApproved  bool       `json:"isApproved"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`

	// approvalMissing el documento leído no traía isApproved (perfiles antiguos).
	approvalMissing bool
}

// UnmarshalJSON distingue isApproved ausente de isApproved=false.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		IsApproved *bool `json:"isApproved"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.IsApproved = aux.IsApproved != nil && *aux.IsApproved
	u.approvalMissing = aux.IsApproved == nil
	return nil
}

// ExplicitlyUnapproved solo es cierto si el perfil registra isApproved=false.
func (u *User) ExplicitlyUnapproved() bool {
	return !u.IsApproved && !u.approvalMissing
}

// CreatedAtOrZero devuelve la fecha de creación o el instante cero (epoch) si falta.
func (u *User) CreatedAtOrZero() time.Time {
	if u.CreatedAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *u.CreatedAt
}

// NewMemberID deriva el identificador visible de miembro a partir del UID.
func NewMemberID(uid string) string {
	prefix := uid
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	return "JD-" + strings.ToUpper(prefix)
}

// NormalizeEmail recorta espacios y aplica case folding Unicode.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// AccessPolicy centraliza la regla de la cuenta privilegiada de arranque:
// se trata siempre como aprobada y con acceso de administrador.
type AccessPolicy struct {
	privilegedEmail string
}

// NewAccessPolicy construye la política a partir del email configurado.
func NewAccessPolicy(privilegedEmail string) AccessPolicy {
	return AccessPolicy{privilegedEmail: NormalizeEmail(privilegedEmail)}
}

// PrivilegedEmail devuelve el email normalizado de la cuenta privilegiada.
func (p AccessPolicy) PrivilegedEmail() string { return p.privilegedEmail }

// IsPrivilegedEmail compara un email contra la cuenta privilegiada.
func (p AccessPolicy) IsPrivilegedEmail(email string) bool {
	return p.privilegedEmail != "" && NormalizeEmail(email) == p.privilegedEmail
}

// IsPrivileged indica si el usuario es la cuenta privilegiada (por email o username).
func (p AccessPolicy) IsPrivileged(u *User) bool {
	if u == nil {
		return false
	}
	return p.IsPrivilegedEmail(u.Email) || p.IsPrivilegedEmail(u.Username)
}

// IsAdmin indica si el usuario accede al back-office.
func (p AccessPolicy) IsAdmin(u *User) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || p.IsPrivileged(u)
}

// IsApproved aplica la regla de aprobación incluyendo la cuenta privilegiada.
func (p AccessPolicy) IsApproved(u *User) bool {
	return u != nil && (u.IsApproved || p.IsPrivileged(u))
}
