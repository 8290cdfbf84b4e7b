package types

import (
	"time"

	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/google/uuid"
)

// User is the public profile returned by the auth routes.
type User struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AuthResult is returned on register and login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
