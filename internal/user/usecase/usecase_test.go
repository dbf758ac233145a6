package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/user"
	"github.com/fekuna/storefront-service/internal/user/dto"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memRepo struct {
	users map[string]model.User
}

func (r *memRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrDuplicateEmail
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = *u
	return nil
}

func newUseCase() (*userUseCase, *memRepo, *auth.TokenManager) {
	repo := &memRepo{users: map[string]model.User{}}
	tm := auth.NewTokenManager("test-secret", time.Hour)
	uc := NewUserUseCase(repo, tm, logger.NewNop()).(*userUseCase)
	uc.hashCost = bcrypt.MinCost
	return uc, repo, tm
}

func TestRegister_IssuesUserToken(t *testing.T) {
	uc, repo, tm := newUseCase()

	res, err := uc.Register(context.Background(), &dto.RegisterInput{
		Name: "Ann", Email: " Ann@Example.com ", Password: "s3cretpass",
	})
	require.NoError(t, err)

	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.NotEqual(t, "s3cretpass", repo.users[res.User.ID].PasswordHash)

	claims, err := tm.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)

	_, err = uc.Register(context.Background(), &dto.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "s3cretpass"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestRegister_Validation(t *testing.T) {
	uc, _, _ := newUseCase()

	tests := []struct {
		name  string
		input dto.RegisterInput
	}{
		{"missing name", dto.RegisterInput{Email: "a@b.co", Password: "longenough"}},
		{"bad email", dto.RegisterInput{Name: "A", Email: "not-an-email", Password: "longenough"}},
		{"short password", dto.RegisterInput{Name: "A", Email: "a@b.co", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := uc.Register(context.Background(), &input)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
		})
	}
}

func TestLogin(t *testing.T) {
	uc, repo, _ := newUseCase()
	ctx := context.Background()

	admin, err := uc.CreateUser(ctx, &dto.RegisterInput{Name: "Root", Email: "root@shop.test", Password: "adminpass"}, model.RoleAdmin)
	require.NoError(t, err)

	res, err := uc.Login(ctx, &dto.LoginInput{Email: "ROOT@shop.test", Password: "adminpass"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, res.User.ID)
	assert.Equal(t, model.RoleAdmin, res.User.Role)

	_, err = uc.Login(ctx, &dto.LoginInput{Email: "root@shop.test", Password: "wrong-pass"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = uc.Login(ctx, &dto.LoginInput{Email: "ghost@shop.test", Password: "adminpass"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	u := repo.users[admin.ID]
	u.IsActive = false
	repo.users[admin.ID] = u
	_, err = uc.Login(ctx, &dto.LoginInput{Email: "root@shop.test", Password: "adminpass"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	uc, _, _ := newUseCase()
	_, err := uc.CreateUser(context.Background(), &dto.RegisterInput{Name: "A", Email: "a@b.co", Password: "longenough"}, "owner")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestUpdateProfile_PasswordChangeNeedsCurrent(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	res, err := uc.Register(ctx, &dto.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "oldpassword"})
	require.NoError(t, err)

	newPass := "newpassword"
	_, err = uc.UpdateProfile(ctx, &dto.UpdateProfileInput{UserID: res.User.ID, CurrentPassword: "nope", NewPassword: &newPass})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	phone := "555-0101"
	u, err := uc.UpdateProfile(ctx, &dto.UpdateProfileInput{
		UserID: res.User.ID, Phone: &phone, CurrentPassword: "oldpassword", NewPassword: &newPass,
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", *u.Phone)

	_, err = uc.Login(ctx, &dto.LoginInput{Email: "ann@example.com", Password: "newpassword"})
	assert.NoError(t, err)
}
