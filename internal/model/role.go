package model

// Role is a provisioned role row. Names come from the role package.
type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:64;not null"`
}

// UserRole records one role membership. The composite primary key makes a
// repeated grant a no-op.
type UserRole struct {
	UserID string `gorm:"type:char(36);primaryKey"`
	RoleID uint   `gorm:"primaryKey"`
}

// TableName pins the join table name.
func (UserRole) TableName() string {
	return "user_roles"
}
