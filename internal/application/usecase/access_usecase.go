package usecase

import (
	"context"
	"fmt"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// AccessService verifica contra el perfil almacenado si un usuario sigue
// teniendo acceso al back-office. El rol del token puede estar desactualizado
// si un admin cambió el nivel de membresía después del login.
type AccessService struct {
	users  repository.UserRepository
	policy entity.AccessPolicy
}

// NewAccessService construye el servicio de acceso.
func NewAccessService(users repository.UserRepository, policy entity.AccessPolicy) *AccessService {
	return &AccessService{users: users, policy: policy}
}

// IsAdmin informa si el perfil tiene acceso de administración.
// Devuelve false (sin error) si el perfil no existe.
// Devuelve error solo ante fallos del almacén.
func (s *AccessService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, fmt.Errorf("access: uid es obligatorio")
	}
	u, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return false, err
	}
	return s.policy.IsAdmin(u), nil
}
