package dto

import (
	"time"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

// RegisterRequest entrada para el registro de miembros.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Name        string `json:"name" validate:"required,max=200"`
	Phone       string `json:"phone,omitempty"`
	Country     string `json:"country,omitempty"`
	SocialMedia string `json:"socialMedia,omitempty"`
}

// QuickAddMemberRequest alta rápida de un miembro por un admin (pre-aprobado).
type QuickAddMemberRequest struct {
	Email      string            `json:"email" validate:"required,email"`
	Password   string            `json:"password" validate:"required,min=6"`
	Name       string            `json:"name" validate:"required,max=200"`
	Phone      string            `json:"phone,omitempty"`
	Country    string            `json:"country,omitempty"`
	MemberType entity.MemberType `json:"memberType,omitempty"`
}

// LoginRequest credenciales de inicio de sesión.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResendVerificationRequest credenciales para reenviar el correo de verificación.
type ResendVerificationRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse salida de un perfil.
type UserResponse struct {
	UID         string            `json:"uid"`
	MemberID    string            `json:"memberId"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Role        string            `json:"role"`
	Phone       string            `json:"phone,omitempty"`
	Country     string            `json:"country,omitempty"`
	SocialMedia string            `json:"socialMedia,omitempty"`
	MemberType  entity.MemberType `json:"memberType"`
	IsApproved  bool              `json:"isApproved"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
}

// LoginResponse token de sesión, perfil y vista siguiente.
type LoginResponse struct {
	Token    string       `json:"token"`
	User     UserResponse `json:"user"`
	NextView string       `json:"next_view"`
}

// RegisterResponse resultado del registro.
type RegisterResponse struct {
	User     UserResponse `json:"user"`
	NextView string       `json:"next_view"`
}

// SessionResponse sesión anónima emitida.
type SessionResponse struct {
	Token    string `json:"token"`
	UID      string `json:"uid"`
	NextView string `json:"next_view,omitempty"`
}

// UpdateApprovalRequest cambio del flag de aprobación.
type UpdateApprovalRequest struct {
	Approved bool `json:"approved"`
}

// UpdateMemberTypeRequest cambio de nivel de membresía.
type UpdateMemberTypeRequest struct {
	MemberType entity.MemberType `json:"memberType" validate:"required"`
}

// ToUserResponse convierte la entidad a DTO.
func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		UID:         u.UID,
		MemberID:    u.MemberID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Phone:       u.Phone,
		Country:     u.Country,
		SocialMedia: u.SocialMedia,
		MemberType:  u.MemberType,
		IsApproved:  u.IsApproved,
		CreatedAt:   u.CreatedAt,
	}
}

// RestoreAdminRequest contraseña de la cuenta privilegiada.
type RestoreAdminRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}
