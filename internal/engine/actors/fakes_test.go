package actors

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jayesh-zip/blog-app/internal/models"
	"github.com/jayesh-zip/blog-app/internal/storage"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/google/uuid"
)

// fakeUserStore is an in-memory UserStore for tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) SaveUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*models.User, 0, len(f.users))
	for _, user := range f.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (f *fakeUserStore) UpdateUserProfile(_ context.Context, userID uuid.UUID, name, email, hashedPassword string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.Name = name
	user.Email = email
	user.HashedPassword = hashedPassword
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UpdateUserAvatar(_ context.Context, userID uuid.UUID, avatarURL, blobKey string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.Avatar = avatarURL
	user.AvatarBlobKey = blobKey
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) IncrementPostCount(_ context.Context, userID uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.Posts += delta
	return nil
}

// fakePostStore is an in-memory PostStore for tests.
type fakePostStore struct {
	mu      sync.Mutex
	posts   map[uuid.UUID]*models.Post
	saveErr error
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uuid.UUID]*models.Post)}
}

func (f *fakePostStore) SavePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostStore) GetPost(_ context.Context, id uuid.UUID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostStore) ListPosts(_ context.Context) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := f.snapshot()
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].UpdatedAt.After(posts[j].UpdatedAt)
	})
	return posts, nil
}

func (f *fakePostStore) ListPostsByCategory(_ context.Context, category string) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := []*models.Post{}
	for _, post := range f.snapshot() {
		if post.Category == category {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (f *fakePostStore) ListPostsByCreator(_ context.Context, creatorID uuid.UUID) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := []*models.Post{}
	for _, post := range f.snapshot() {
		if post.CreatorID == creatorID {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (f *fakePostStore) DeletePost(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostStore) snapshot() []*models.Post {
	posts := make([]*models.Post, 0, len(f.posts))
	for _, post := range f.posts {
		copied := *post
		posts = append(posts, &copied)
	}
	return posts
}

// fakeBlobStore records every upload and delete so tests can assert on
// the exact sequence of blob-store side effects.
type fakeBlobStore struct {
	mu        sync.Mutex
	nextID    int
	Uploads   []string // keys in upload order
	Deletes   []string // keys in delete order
	uploadErr error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{}
}

func (f *fakeBlobStore) Upload(_ context.Context, filename string, data []byte) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.nextID++
	key := fmt.Sprintf("blob-%d", f.nextID)
	f.Uploads = append(f.Uploads, key)
	return &storage.UploadResult{
		URL: "https://blobs.test/" + key,
		Key: key,
	}, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.Deletes = append(f.Deletes, key)
	return nil
}
