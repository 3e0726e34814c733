package repository

import (
	"context"

	"gorm.io/gorm"

	"tokenauth/internal/model"
)

// RoleRepository defines role row operations.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*model.Role, error)
	EnsureRoles(ctx context.Context, names []string) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository builds a GORM-backed role repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// EnsureRoles creates any missing role rows in the given order.
func (r *roleRepository) EnsureRoles(ctx context.Context, names []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			var role model.Role
			if err := tx.Where(model.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
