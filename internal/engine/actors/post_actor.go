package actors

import (
	"log/slog"
	"strings"
	"time"

	stdctx "context"

	"github.com/jayesh-zip/blog-app/internal/models"
	"github.com/jayesh-zip/blog-app/internal/storage"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// ImageUpload carries an uploaded file from an HTTP handler into an actor.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// GetCountsMsg asks an actor for its entity count (health endpoint).
type GetCountsMsg struct{}

// Message types for Post operations
type (
	CreatePostMsg struct {
		Title       string
		Category    string
		Description string
		Thumbnail   *ImageUpload
		CreatorID   uuid.UUID
	}

	GetPostMsg struct {
		PostID uuid.UUID
	}

	ListPostsMsg struct{}

	ListPostsByCategoryMsg struct {
		Category string
	}

	ListPostsByCreatorMsg struct {
		CreatorID uuid.UUID
	}

	EditPostMsg struct {
		PostID      uuid.UUID
		EditorID    uuid.UUID
		Title       string
		Category    string
		Description string
		Thumbnail   *ImageUpload // nil keeps the existing thumbnail
	}

	DeletePostMsg struct {
		PostID      uuid.UUID
		RequesterID uuid.UUID
	}

	// PostDeleted confirms a successful delete.
	PostDeleted struct {
		PostID uuid.UUID
	}
)

// PostActor owns the post lifecycle: create, read, edit and delete,
// including the blob-store side effects for thumbnails. The blob write
// always happens before the database write so a post never references an
// image that was not uploaded.
type PostActor struct {
	posts   PostStore
	users   UserStore
	blobs   storage.BlobStore
	metrics *utils.MetricsCollector
}

func NewPostActor(posts PostStore, users UserStore, blobs storage.BlobStore, metrics *utils.MetricsCollector) actor.Actor {
	return &PostActor{
		posts:   posts,
		users:   users,
		blobs:   blobs,
		metrics: metrics,
	}
}

func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *CreatePostMsg:
		context.Respond(a.createPost(msg))

	case *GetPostMsg:
		ctx := stdctx.Background()
		post, err := a.posts.GetPost(ctx, msg.PostID)
		if err != nil {
			context.Respond(toAppError(err, "Failed to fetch post"))
			return
		}
		context.Respond(post)

	case *ListPostsMsg:
		ctx := stdctx.Background()
		posts, err := a.posts.ListPosts(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list posts", err))
			return
		}
		context.Respond(posts)

	case *ListPostsByCategoryMsg:
		ctx := stdctx.Background()
		posts, err := a.posts.ListPostsByCategory(ctx, msg.Category)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list posts by category", err))
			return
		}
		context.Respond(posts)

	case *ListPostsByCreatorMsg:
		ctx := stdctx.Background()
		posts, err := a.posts.ListPostsByCreator(ctx, msg.CreatorID)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list posts by author", err))
			return
		}
		context.Respond(posts)

	case *EditPostMsg:
		context.Respond(a.editPost(msg))

	case *DeletePostMsg:
		context.Respond(a.deletePost(msg))

	case *GetCountsMsg:
		ctx := stdctx.Background()
		posts, err := a.posts.ListPosts(ctx)
		if err != nil {
			context.Respond(0)
			return
		}
		context.Respond(len(posts))
	}
}

func (a *PostActor) createPost(msg *CreatePostMsg) interface{} {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Title) == "" ||
		strings.TrimSpace(msg.Category) == "" ||
		strings.TrimSpace(msg.Description) == "" ||
		msg.Thumbnail == nil || len(msg.Thumbnail.Data) == 0 {
		return utils.NewValidationError("Fill in all fields and choose a thumbnail.")
	}

	// Blob upload comes first: if it fails nothing was written anywhere.
	uploaded, err := a.blobs.Upload(ctx, msg.Thumbnail.Filename, msg.Thumbnail.Data)
	if err != nil {
		return utils.NewAppError(utils.ErrBlobUpload, "Failed to upload thumbnail.", err)
	}

	now := time.Now()
	post := &models.Post{
		ID:               uuid.New(),
		Title:            msg.Title,
		Category:         msg.Category,
		Description:      msg.Description,
		Thumbnail:        uploaded.URL,
		ThumbnailBlobKey: uploaded.Key,
		CreatorID:        msg.CreatorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := a.posts.SavePost(ctx, post); err != nil {
		// The uploaded blob is orphaned here; there is no rollback across
		// the two stores, only a log line for manual cleanup.
		slog.Warn("post create failed after blob upload, blob orphaned",
			"blobKey", uploaded.Key, "error", err)
		return utils.NewAppError(utils.ErrDatabase, "Post couldn't be created.", err)
	}

	// Best-effort counter: failure is logged, the created post stands.
	if err := a.users.IncrementPostCount(ctx, msg.CreatorID, 1); err != nil {
		slog.Warn("failed to increment author post count",
			"userId", msg.CreatorID, "error", err)
	}

	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	return post
}

func (a *PostActor) editPost(msg *EditPostMsg) interface{} {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.posts.GetPost(ctx, msg.PostID)
	if err != nil {
		return toAppError(err, "Failed to fetch post")
	}

	if strings.TrimSpace(msg.Title) == "" ||
		strings.TrimSpace(msg.Category) == "" ||
		strings.TrimSpace(msg.Description) == "" {
		return utils.NewValidationError("Fill in all fields.")
	}

	if post.CreatorID != msg.EditorID {
		return utils.NewForbiddenError("update this post")
	}

	if msg.Thumbnail != nil {
		// Replacing the thumbnail: the old blob must go first, and a
		// failed delete aborts the whole edit so the record still points
		// at a blob that exists.
		if post.ThumbnailBlobKey != "" {
			if err := a.blobs.Delete(ctx, post.ThumbnailBlobKey); err != nil {
				return utils.NewAppError(utils.ErrBlobDelete, "Failed to delete old thumbnail.", err)
			}
		}

		uploaded, err := a.blobs.Upload(ctx, msg.Thumbnail.Filename, msg.Thumbnail.Data)
		if err != nil {
			return utils.NewAppError(utils.ErrBlobUpload, "Failed to upload thumbnail.", err)
		}

		post.Thumbnail = uploaded.URL
		post.ThumbnailBlobKey = uploaded.Key
	}

	post.Title = msg.Title
	post.Category = msg.Category
	post.Description = msg.Description
	post.UpdatedAt = time.Now()

	if err := a.posts.SavePost(ctx, post); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Couldn't update post.", err)
	}

	a.metrics.AddOperationLatency("edit_post", time.Since(startTime))
	return post
}

func (a *PostActor) deletePost(msg *DeletePostMsg) interface{} {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.posts.GetPost(ctx, msg.PostID)
	if err != nil {
		return toAppError(err, "Failed to fetch post")
	}

	if post.CreatorID != msg.RequesterID {
		return utils.NewForbiddenError("delete this post")
	}

	// Blob first. If the delete fails the record is left intact so the
	// caller can retry; the reverse order would strand the blob forever.
	if post.ThumbnailBlobKey != "" {
		if err := a.blobs.Delete(ctx, post.ThumbnailBlobKey); err != nil {
			return utils.NewAppError(utils.ErrBlobDelete, "Failed to delete thumbnail from blob store.", err)
		}
	}

	if err := a.posts.DeletePost(ctx, msg.PostID); err != nil {
		return toAppError(err, "Failed to delete post")
	}

	// Best-effort counter, mirroring the increment on create.
	if err := a.users.IncrementPostCount(ctx, post.CreatorID, -1); err != nil {
		slog.Warn("failed to decrement author post count",
			"userId", post.CreatorID, "error", err)
	}

	a.metrics.AddOperationLatency("delete_post", time.Since(startTime))
	return &PostDeleted{PostID: msg.PostID}
}

// toAppError passes through AppErrors (e.g. NOT_FOUND from the store) and
// wraps anything else as a database failure.
func toAppError(err error, message string) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewAppError(utils.ErrDatabase, message, err)
}
