package model

// All lists every model that needs a table, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Role{},
		&UserRole{},
		&UserClaim{},
	}
}
