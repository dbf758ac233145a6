package dto

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput is a partial update. Changing the password requires
// CurrentPassword.
type UpdateProfileInput struct {
	UserID          string
	Name            *string
	Phone           *string
	Address         *string
	CurrentPassword string
	NewPassword     *string
}
