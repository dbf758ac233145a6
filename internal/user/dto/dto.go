package dto

import (
	"time"

	"github.com/fekuna/storefront-service/internal/model"
)

type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}
