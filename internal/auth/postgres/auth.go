package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/fleet-management/internal/auth"
	userDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

var (
	_ auth.AccountRepository = (*Repository)(nil)
	_ notification.Directory = (*Repository)(nil)
)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return auth.FromDataModel(&row), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*auth.Account, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return auth.FromDataModel(&row), nil
}

func (r *Repository) Create(ctx context.Context, account *auth.Account) error {
	err := r.db.WithContext(ctx).Create(auth.ToDataModel(account)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return auth.ErrEmailTaken
	}
	return err
}

// AdminIDs returns every admin, oldest account first.
func (r *Repository) AdminIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("role = ?", string(identity.RoleAdmin)).
		Order("created_at ASC").
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
