package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/user"
	"github.com/fekuna/storefront-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const emailConstraint = "users_email_key"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, name, email, password_hash, phone, address, role, is_active, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :phone, :address, :role, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	if name, ok := postgres.UniqueViolation(err); ok && name == emailConstraint {
		return user.ErrDuplicateEmail
	}
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE email = $1 LIMIT 1`, email)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET name = :name,
            password_hash = :password_hash,
            phone = :phone,
            address = :address,
            role = :role,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	return err
}
