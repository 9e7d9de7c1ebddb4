package userRepo

import (
	"context"
	"errors"

	"bloodlink/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when no user matches the id.
var ErrNotFound = errors.New("user not found")

// UserRepository defines the read access the scheduling core has to users.
// Donor and blood bank profiles are owned elsewhere; this core never writes them.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDWithProjection retrieves a user by its unique ID with a projection.
	GetByIDWithProjection(ctx context.Context, id string, projection bson.M) (*models.User, error)
}
