package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tokenauth/internal/model"
)

// UserRepository defines persistence operations for users and their role and
// claim rows.
type UserRepository interface {
	CreateWithRole(ctx context.Context, user *model.User, roleName string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Roles(ctx context.Context, userID uuid.UUID) ([]model.Role, error)
	AddRole(ctx context.Context, userID uuid.UUID, roleID uint) error
	Claims(ctx context.Context, userID uuid.UUID) ([]model.UserClaim, error)
	AddClaim(ctx context.Context, claim *model.UserClaim) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateWithRole inserts the user and its first role membership in one
// transaction. A missing role row surfaces as gorm.ErrRecordNotFound and a
// duplicate email or username as gorm.ErrDuplicatedKey (the connection is
// opened with TranslateError); either way nothing is written.
func (r *userRepository) CreateWithRole(ctx context.Context, user *model.User, roleName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role model.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserRole{UserID: user.ID.String(), RoleID: role.ID}).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks the user up by normalised email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Roles returns the user's roles ordered by role id.
func (r *userRepository) Roles(ctx context.Context, userID uuid.UUID) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID.String()).
		Order("roles.id").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// AddRole records the membership and bumps the user's role version in the
// same transaction. An existing membership is left untouched.
func (r *userRepository) AddRole(ctx context.Context, userID uuid.UUID, roleID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.UserRole{UserID: userID.String(), RoleID: roleID}).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", userID.String()).
			UpdateColumn("role_version", gorm.Expr("role_version + ?", 1)).Error
	})
}

func (r *userRepository) Claims(ctx context.Context, userID uuid.UUID) ([]model.UserClaim, error) {
	var claims []model.UserClaim
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID.String()).Order("id").Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *userRepository) AddClaim(ctx context.Context, claim *model.UserClaim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}
