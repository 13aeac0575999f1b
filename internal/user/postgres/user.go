package postgres

import (
	"context"
	"errors"
	"time"

	userDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

// List returns users newest first. An empty role matches everyone.
func (r *UserRepository) List(ctx context.Context, role identity.Role) ([]*user.User, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if role != "" {
		q = q.Where("role = ?", string(role))
	}

	var rows []userDatamodel.User
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, user.FromDataModel(&rows[i]))
	}
	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role identity.Role) error {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":       string(role),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
