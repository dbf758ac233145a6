package model

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

type User struct {
	BaseModel
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Phone        *string `db:"phone" json:"phone"`
	Address      *string `db:"address" json:"address"`
	Role         string  `db:"role" json:"role"`
	IsActive     bool    `db:"is_active" json:"isActive"`
}
