package actors

import (
	"context"

	"github.com/jayesh-zip/blog-app/internal/models"

	"github.com/google/uuid"
)

// UserStore is the document-store surface the user actor depends on.
// *database.MongoDB satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, name, email, hashedPassword string) (*models.User, error)
	UpdateUserAvatar(ctx context.Context, userID uuid.UUID, avatarURL, blobKey string) (*models.User, error)
	IncrementPostCount(ctx context.Context, userID uuid.UUID, delta int) error
}

// PostStore is the document-store surface the post actor depends on.
type PostStore interface {
	SavePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListPosts(ctx context.Context) ([]*models.Post, error)
	ListPostsByCategory(ctx context.Context, category string) ([]*models.Post, error)
	ListPostsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
}
