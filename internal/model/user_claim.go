package model

// UserClaim is an extra claim stored for a user and copied into every token
// issued to them.
type UserClaim struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"type:char(36);index;not null"`
	Type   string `json:"type" gorm:"size:255;not null"`
	Value  string `json:"value" gorm:"size:1024;not null"`
}
