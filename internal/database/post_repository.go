// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jayesh-zip/blog-app/internal/models"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID               string    `bson:"_id"`
	Title            string    `bson:"title"`
	Category         string    `bson:"category"`
	Description      string    `bson:"description"`
	Thumbnail        string    `bson:"thumbnail"`
	ThumbnailBlobKey string    `bson:"thumbnailBlobKey"`
	CreatorID        string    `bson:"creator"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

// PostModelToDocument converts a Post model to a MongoDB document.
func PostModelToDocument(post *models.Post) *PostDocument {
	return &PostDocument{
		ID:               post.ID.String(),
		Title:            post.Title,
		Category:         post.Category,
		Description:      post.Description,
		Thumbnail:        post.Thumbnail,
		ThumbnailBlobKey: post.ThumbnailBlobKey,
		CreatorID:        post.CreatorID.String(),
		CreatedAt:        post.CreatedAt,
		UpdatedAt:        post.UpdatedAt,
	}
}

// PostDocumentToModel converts a MongoDB document to a Post model.
func PostDocumentToModel(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	creatorID, err := uuid.Parse(doc.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid creator ID: %v", err)
	}

	return &models.Post{
		ID:               id,
		Title:            doc.Title,
		Category:         doc.Category,
		Description:      doc.Description,
		Thumbnail:        doc.Thumbnail,
		ThumbnailBlobKey: doc.ThumbnailBlobKey,
		CreatorID:        creatorID,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

// SavePost creates or updates a post in MongoDB.
func (m *MongoDB) SavePost(ctx context.Context, post *models.Post) error {
	doc := PostModelToDocument(post)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": post.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Posts.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument

	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}

	return PostDocumentToModel(&doc)
}

// ListPosts retrieves all posts, most recently updated first.
func (m *MongoDB) ListPosts(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return m.findPosts(ctx, bson.M{}, opts)
}

// ListPostsByCategory retrieves posts with an exactly matching category,
// newest first.
func (m *MongoDB) ListPostsByCategory(ctx context.Context, category string) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return m.findPosts(ctx, bson.M{"category": category}, opts)
}

// ListPostsByCreator retrieves a single author's posts, newest first.
func (m *MongoDB) ListPostsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return m.findPosts(ctx, bson.M{"creator": creatorID.String()}, opts)
}

func (m *MongoDB) findPosts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Post, error) {
	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	defer cursor.Close(ctx)

	posts := []*models.Post{}
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode post document: %v", err)
		}

		post, err := PostDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	return posts, nil
}

// DeletePost removes a post record.
func (m *MongoDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	return nil
}
