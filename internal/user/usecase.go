package user

import (
	"context"
	"time"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/user/dto"
)

type UseCase interface {
	// CreateUser stores a new account with the given role.
	CreateUser(ctx context.Context, input *dto.RegisterInput, role string) (*model.User, error)
	Register(ctx context.Context, input *dto.RegisterInput) (*dto.AuthResult, error)
	Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *model.User) (string, time.Time, error)
}
