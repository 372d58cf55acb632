// internal/database/user_repository.go
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

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string    `bson:"_id"`            // MongoDB primary key
	Name           string    `bson:"name"`           // Display name
	Email          string    `bson:"email"`          // Lower-cased email address
	HashedPassword string    `bson:"hashedPassword"` // Hashed password
	Avatar         string    `bson:"avatar"`         // Avatar URL, empty if none
	AvatarBlobKey  string    `bson:"avatarBlobKey"`  // Blob store handle for the avatar
	Posts          int       `bson:"posts"`          // Denormalized post count
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func userModelToDocument(user *models.User) *UserDocument {
	return &UserDocument{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Avatar:         user.Avatar,
		AvatarBlobKey:  user.AvatarBlobKey,
		Posts:          user.Posts,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func userDocumentToModel(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	return &models.User{
		ID:             id,
		Name:           doc.Name,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		Avatar:         doc.Avatar,
		AvatarBlobKey:  doc.AvatarBlobKey,
		Posts:          doc.Posts,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := userModelToDocument(user)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userDocumentToModel(&doc)
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userDocumentToModel(&doc)
}

// ListUsers retrieves every user, most recently created first.
func (m *MongoDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user document: %v", err)
		}

		user, err := userDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	return users, nil
}

// UpdateUserProfile persists name, email and password hash in a single
// update so a profile edit is never partially applied.
func (m *MongoDB) UpdateUserProfile(ctx context.Context, userID uuid.UUID, name, email, hashedPassword string) (*models.User, error) {
	filter := bson.M{"_id": userID.String()}
	update := bson.M{"$set": bson.M{
		"name":           name,
		"email":          email,
		"hashedPassword": hashedPassword,
		"updatedAt":      time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err := m.Users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userDocumentToModel(&doc)
}

// UpdateUserAvatar sets the avatar URL and its blob key together.
func (m *MongoDB) UpdateUserAvatar(ctx context.Context, userID uuid.UUID, avatarURL, blobKey string) (*models.User, error) {
	filter := bson.M{"_id": userID.String()}
	update := bson.M{"$set": bson.M{
		"avatar":        avatarURL,
		"avatarBlobKey": blobKey,
		"updatedAt":     time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err := m.Users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userDocumentToModel(&doc)
}

// IncrementPostCount adjusts a user's denormalized post counter. The $inc
// keeps concurrent create/delete races from clobbering each other, but the
// counter is still best-effort relative to the post mutation it follows.
func (m *MongoDB) IncrementPostCount(ctx context.Context, userID uuid.UUID, delta int) error {
	filter := bson.M{"_id": userID.String()}
	update := bson.M{"$inc": bson.M{"posts": delta}}

	result, err := m.Users.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}
