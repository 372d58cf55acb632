package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Avatar         string    `json:"avatar,omitempty"`
	// AvatarBlobKey is the blob store handle for the avatar, kept to
	// request deletion on replacement. Never serialized to clients.
	AvatarBlobKey string    `json:"-"`
	Posts         int       `json:"posts"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
