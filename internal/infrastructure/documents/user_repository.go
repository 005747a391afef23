package documents

import (
	"context"
	"fmt"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository perfiles en la colección users, con el UID como ID de documento.
type UserRepository struct {
	store repository.DocumentStore
}

// NewUserRepository construye el repositorio.
func NewUserRepository(store repository.DocumentStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	if u.UID == "" {
		return fmt.Errorf("save user: uid vacío")
	}
	return putAs(ctx, r.store, repository.CollectionUsers, u.UID, u)
}

func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*entity.User, error) {
	u, err := getAs[entity.User](ctx, r.store, repository.CollectionUsers, uid)
	if u != nil && u.UID == "" {
		u.UID = uid
	}
	return u, err
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return listAs(ctx, r.store, repository.CollectionUsers, repository.Query{}, fixUID)
}

func (r *UserRepository) Page(ctx context.Context, after string, limit int) ([]*entity.User, error) {
	return listAs(ctx, r.store, repository.CollectionUsers, repository.Query{StartAfter: after, Limit: limit}, fixUID)
}

func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	if err := r.store.Delete(ctx, repository.CollectionUsers, uid); err != nil {
		return fmt.Errorf("delete user %s: %w", uid, err)
	}
	return nil
}

func (r *UserRepository) DeleteMany(ctx context.Context, uids []string) error {
	return deleteMany(ctx, r.store, repository.CollectionUsers, uids)
}

// fixUID cubre documentos escritos sin uid: el ID del documento es la fuente de verdad.
func fixUID(u *entity.User, id string) {
	u.UID = id
}
