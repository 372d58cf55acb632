package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jayesh-zip/blog-app/internal/api"
	"github.com/jayesh-zip/blog-app/internal/engine"
	"github.com/jayesh-zip/blog-app/internal/models"
	"github.com/jayesh-zip/blog-app/internal/storage"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory document store backing both actors in tests.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	posts map[uuid.UUID]*models.Post
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[uuid.UUID]*models.User),
		posts: make(map[uuid.UUID]*models.Post),
	}
}

func (m *memStore) SaveUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (m *memStore) ListUsers(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*models.User, 0, len(m.users))
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (m *memStore) UpdateUserProfile(_ context.Context, userID uuid.UUID, name, email, hashedPassword string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
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

func (m *memStore) UpdateUserAvatar(_ context.Context, userID uuid.UUID, avatarURL, blobKey string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.Avatar = avatarURL
	user.AvatarBlobKey = blobKey
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (m *memStore) IncrementPostCount(_ context.Context, userID uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.Posts += delta
	return nil
}

func (m *memStore) SavePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *memStore) GetPost(_ context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	copied := *post
	return &copied, nil
}

func (m *memStore) ListPosts(_ context.Context) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := m.postSnapshot(func(*models.Post) bool { return true })
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].UpdatedAt.After(posts[j].UpdatedAt)
	})
	return posts, nil
}

func (m *memStore) ListPostsByCategory(_ context.Context, category string) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := m.postSnapshot(func(p *models.Post) bool { return p.Category == category })
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *memStore) ListPostsByCreator(_ context.Context, creatorID uuid.UUID) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := m.postSnapshot(func(p *models.Post) bool { return p.CreatorID == creatorID })
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *memStore) DeletePost(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	delete(m.posts, id)
	return nil
}

func (m *memStore) postSnapshot(keep func(*models.Post) bool) []*models.Post {
	posts := []*models.Post{}
	for _, post := range m.posts {
		if keep(post) {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	return posts
}

// memBlobs is an in-memory blob store.
type memBlobs struct {
	mu     sync.Mutex
	nextID int
	keys   map[string]bool
}

func newMemBlobs() *memBlobs {
	return &memBlobs{keys: make(map[string]bool)}
}

func (b *memBlobs) Upload(_ context.Context, filename string, data []byte) (*storage.UploadResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	key := fmt.Sprintf("blob-%d", b.nextID)
	b.keys[key] = true
	return &storage.UploadResult{URL: "https://blobs.test/" + key, Key: key}, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.keys, key)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := newMemStore()
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	eng := engine.NewEngine(system, metrics, store, store, newMemBlobs())

	mux := http.NewServeMux()
	NewServer(system, eng, metrics).RegisterRoutes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// postForm builds a multipart body with text fields plus an optional PNG
// part. CreateFormFile would label the part application/octet-stream,
// which the upload filter rejects, so the part is created by hand.
func postForm(t *testing.T, fields map[string]string, fileField string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}

	if fileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename="image.png"`, fileField))
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doMultipart(t *testing.T, method, url, token string, fields map[string]string, fileField string) *http.Response {
	t.Helper()

	body, contentType := postForm(t, fields, fileField)
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func registerAndLogin(t *testing.T, ts *httptest.Server, name, email string) *api.LoginResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPost, ts.URL+"/users/register", "", map[string]string{
		"name":      name,
		"email":     email,
		"password":  "secret123",
		"password2": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/users/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login api.LoginResponse
	decodeBody(t, resp, &login)
	require.NotEmpty(t, login.Token)
	return &login
}

func TestPublishLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice", "alice@example.com")

	// Publish
	resp := doMultipart(t, http.MethodPost, ts.URL+"/posts", alice.Token, map[string]string{
		"title":       "First post",
		"category":    "Art",
		"description": "<p>hello</p>",
	}, "thumbnail")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, alice.ID, post.CreatorID.String())
	assert.Equal(t, "First post", post.Title)
	assert.NotEmpty(t, post.Thumbnail)

	// It shows up under the author's posts
	resp = doJSON(t, http.MethodGet, ts.URL+"/posts/users/"+alice.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []models.Post
	decodeBody(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, post.ID, mine[0].ID)

	// And on the author's profile counter
	resp = doJSON(t, http.MethodGet, ts.URL+"/users/"+alice.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile models.User
	decodeBody(t, resp, &profile)
	assert.Equal(t, 1, profile.Posts)

	// Delete it
	resp = doJSON(t, http.MethodDelete, ts.URL+"/posts/"+post.ID.String(), alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]string
	decodeBody(t, resp, &deleted)
	assert.Equal(t, fmt.Sprintf("Post %s deleted successfully.", post.ID), deleted["message"])

	// Gone
	resp = doJSON(t, http.MethodGet, ts.URL+"/posts/"+post.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp := doMultipart(t, http.MethodPost, ts.URL+"/posts", "", map[string]string{
		"title": "x", "category": "Art", "description": "y",
	}, "thumbnail")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["error"])

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/posts/"+uuid.NewString(), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Token abc") // wrong scheme
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestEditAndDeleteAreOwnerOnly(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice", "alice@example.com")
	mallory := registerAndLogin(t, ts, "mallory", "mallory@example.com")

	resp := doMultipart(t, http.MethodPost, ts.URL+"/posts", alice.Token, map[string]string{
		"title": "Mine", "category": "Art", "description": "<p>x</p>",
	}, "thumbnail")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	resp = doMultipart(t, http.MethodPatch, ts.URL+"/posts/"+post.ID.String(), mallory.Token, map[string]string{
		"title": "Hijacked", "category": "Art", "description": "<p>y</p>",
	}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, ts.URL+"/posts/"+post.ID.String(), mallory.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The post is untouched
	resp = doJSON(t, http.MethodGet, ts.URL+"/posts/"+post.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stored models.Post
	decodeBody(t, resp, &stored)
	assert.Equal(t, "Mine", stored.Title)
}

func TestEditPostUpdatesFields(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice", "alice@example.com")

	resp := doMultipart(t, http.MethodPost, ts.URL+"/posts", alice.Token, map[string]string{
		"title": "Draft", "category": "Art", "description": "<p>x</p>",
	}, "thumbnail")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	resp = doMultipart(t, http.MethodPatch, ts.URL+"/posts/"+post.ID.String(), alice.Token, map[string]string{
		"title": "Final", "category": "Business", "description": "<p>y</p>",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Post
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "Business", updated.Category)
	// No new file was sent, so the thumbnail stays
	assert.Equal(t, post.Thumbnail, updated.Thumbnail)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/users/register", "", map[string]string{
		"name":      "alice",
		"email":     "alice@example.com",
		"password":  "secret123",
		"password2": "different",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["error"])
}

func TestLoginWithWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "alice", "alice@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestGetPostRejectsMalformedID(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/posts/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestListPostsByCategory(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice", "alice@example.com")

	for _, category := range []string{"Art", "Weather"} {
		resp := doMultipart(t, http.MethodPost, ts.URL+"/posts", alice.Token, map[string]string{
			"title": "post", "category": category, "description": "<p>x</p>",
		}, "thumbnail")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/posts/categories/Art", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []models.Post
	decodeBody(t, resp, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, "Art", posts[0].Category)
}

func TestChangeAvatar(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice", "alice@example.com")

	resp := doMultipart(t, http.MethodPost, ts.URL+"/users/change-avatar", alice.Token, nil, "avatar")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.User
	decodeBody(t, resp, &user)
	assert.NotEmpty(t, user.Avatar)

	// Missing file is a validation error, not a crash
	resp = doMultipart(t, http.MethodPost, ts.URL+"/users/change-avatar", alice.Token, nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadRejectsWrongContentType(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice", "alice@example.com")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "x"))
	require.NoError(t, writer.WriteField("category", "Art"))
	require.NoError(t, writer.WriteField("description", "y"))
	part, err := writer.CreateFormFile("thumbnail", "evil.exe") // application/octet-stream
	require.NoError(t, err)
	_, err = part.Write([]byte("not-an-image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/posts", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthReportsCounts(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice", "alice@example.com")

	resp := doMultipart(t, http.MethodPost, ts.URL+"/posts", alice.Token, map[string]string{
		"title": "x", "category": "Art", "description": "y",
	}, "thumbnail")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		Status string `json:"status"`
		Posts  int    `json:"posts"`
		Users  int    `json:"users"`
	}
	decodeBody(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Posts)
	assert.Equal(t, 1, health.Users)
}
