package user

import (
	"context"
	"errors"

	"github.com/fekuna/storefront-service/internal/model"
)

var ErrDuplicateEmail = errors.New("user: email already registered")

type Repository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}
