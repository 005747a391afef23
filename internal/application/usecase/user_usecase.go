package usecase

import (
	"context"
	"slices"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// MemberUseCase gestión administrativa de miembros.
type MemberUseCase struct {
	users  repository.UserRepository
	policy entity.AccessPolicy
}

// NewMemberUseCase construye el caso de uso.
func NewMemberUseCase(users repository.UserRepository, policy entity.AccessPolicy) *MemberUseCase {
	return &MemberUseCase{users: users, policy: policy}
}

// List devuelve todos los perfiles, más recientes primero.
func (uc *MemberUseCase) List(ctx context.Context) ([]*entity.User, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, domain.Read(err)
	}
	slices.SortStableFunc(users, func(a, b *entity.User) int {
		return b.CreatedAtOrZero().Compare(a.CreatedAtOrZero())
	})
	return users, nil
}

// Get devuelve un perfil o un error NOT_FOUND.
func (uc *MemberUseCase) Get(ctx context.Context, uid string) (*entity.User, error) {
	u, err := uc.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, domain.Read(err)
	}
	if u == nil {
		return nil, domain.NotFound(domain.ErrUserNotFound)
	}
	return u, nil
}

// SetApproval fija el flag de aprobación.
func (uc *MemberUseCase) SetApproval(ctx context.Context, uid string, approved bool) (*entity.User, error) {
	u, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	u.IsApproved = approved
	if err := uc.users.Save(ctx, u); err != nil {
		return nil, domain.Write(err)
	}
	return u, nil
}

// SetMemberType cambia el nivel de membresía. El nivel Admin otorga el rol admin;
// cualquier otro lo retira salvo a la cuenta privilegiada.
func (uc *MemberUseCase) SetMemberType(ctx context.Context, uid string, mt entity.MemberType) (*entity.User, error) {
	if !mt.Valid() {
		return nil, domain.Validation("memberType", "nivel de membresía inválido")
	}
	u, err := uc.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	u.MemberType = mt
	switch {
	case mt == entity.MemberAdmin:
		u.Role = entity.RoleAdmin
	case u.Role == entity.RoleAdmin && !uc.policy.IsPrivileged(u):
		u.Role = entity.RoleClient
	}
	if err := uc.users.Save(ctx, u); err != nil {
		return nil, domain.Write(err)
	}
	return u, nil
}

// Delete borra el perfil. La cuenta privilegiada no se puede borrar.
func (uc *MemberUseCase) Delete(ctx context.Context, uid string) error {
	u, err := uc.Get(ctx, uid)
	if err != nil {
		return err
	}
	if uc.policy.IsPrivileged(u) {
		return domain.ErrForbidden
	}
	if err := uc.users.Delete(ctx, uid); err != nil {
		return domain.Write(err)
	}
	return nil
}
