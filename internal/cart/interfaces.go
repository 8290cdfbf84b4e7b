package cart

import (
	"context"

	"github.com/angelmondragon/attire-backend/pkg/db/models"
	"github.com/google/uuid"
)

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SaveCart(ctx context.Context, id uuid.UUID, cart []models.StoredCartLine) error
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type mutationRecorder interface {
	CartMutation(op string, err error)
}
