package models

import (
	"time"

	"github.com/google/uuid"
)

// Categories the web client offers when composing a post. The server
// accepts any category string; this list is not enforced here.
var PostCategories = []string{
	"Agriculture",
	"Business",
	"Education",
	"Entertainment",
	"Art",
	"Investment",
	"Weather",
	"Uncategorized",
}

type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"` // Rich-text HTML body
	Thumbnail   string    `json:"thumbnail"`
	// ThumbnailBlobKey and Thumbnail are set and replaced together:
	// a post never holds a URL without the key needed to delete it.
	ThumbnailBlobKey string    `json:"-"`
	CreatorID        uuid.UUID `json:"creator"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
