package users

import (
	"context"
	"errors"

	"github.com/apt-tech/connect-backend/internal/models"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository defines persistence operations for user accounts. The store owns
// every record; nothing is cached across requests.
type Repository interface {
	Insert(ctx context.Context, u *models.User) (string, error)
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Patch(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	FindByRole(ctx context.Context, role string) ([]*models.User, error)
}
