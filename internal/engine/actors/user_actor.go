package actors

import (
	"strings"
	"time"

	stdctx "context"

	"github.com/jayesh-zip/blog-app/internal/models"
	"github.com/jayesh-zip/blog-app/internal/storage"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for User operations
type (
	RegisterUserMsg struct {
		Name            string
		Email           string
		Password        string
		PasswordConfirm string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetProfileMsg struct {
		UserID uuid.UUID
	}

	ListAuthorsMsg struct{}

	ChangeAvatarMsg struct {
		UserID uuid.UUID
		Avatar *ImageUpload
	}

	EditProfileMsg struct {
		UserID             uuid.UUID
		Name               string
		Email              string
		CurrentPassword    string
		NewPassword        string
		ConfirmNewPassword string
	}
)

// UserActor owns the user profile lifecycle: registration, login
// verification, avatar replacement and profile edits. Password hashes
// never leave the store layer except for bcrypt comparison here.
type UserActor struct {
	users   UserStore
	blobs   storage.BlobStore
	metrics *utils.MetricsCollector
}

func NewUserActor(users UserStore, blobs storage.BlobStore, metrics *utils.MetricsCollector) actor.Actor {
	return &UserActor{
		users:   users,
		blobs:   blobs,
		metrics: metrics,
	}
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		context.Respond(a.registerUser(msg))

	case *LoginMsg:
		context.Respond(a.login(msg))

	case *GetProfileMsg:
		ctx := stdctx.Background()
		user, err := a.users.GetUser(ctx, msg.UserID)
		if err != nil {
			context.Respond(toAppError(err, "Failed to fetch user"))
			return
		}
		context.Respond(user)

	case *ListAuthorsMsg:
		ctx := stdctx.Background()
		users, err := a.users.ListUsers(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list authors", err))
			return
		}
		context.Respond(users)

	case *ChangeAvatarMsg:
		context.Respond(a.changeAvatar(msg))

	case *EditProfileMsg:
		context.Respond(a.editProfile(msg))

	case *GetCountsMsg:
		ctx := stdctx.Background()
		users, err := a.users.ListUsers(ctx)
		if err != nil {
			context.Respond(0)
			return
		}
		context.Respond(len(users))
	}
}

func (a *UserActor) registerUser(msg *RegisterUserMsg) interface{} {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Name == "" || msg.Email == "" || msg.Password == "" {
		return utils.NewValidationError("Fill in all fields.")
	}

	email := strings.ToLower(msg.Email)

	if existing, _ := a.users.GetUserByEmail(ctx, email); existing != nil {
		return utils.NewAppError(utils.ErrEmailExists, "Email already exists.", nil)
	}

	if len(strings.TrimSpace(msg.Password)) < 6 {
		return utils.NewValidationError("Password should be at least 6 characters.")
	}

	if msg.Password != msg.PasswordConfirm {
		return utils.NewValidationError("Passwords do not match.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(msg.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "User registration failed.", err)
	}

	now := time.Now()
	user := &models.User{
		ID:             uuid.New(),
		Name:           msg.Name,
		Email:          email,
		HashedPassword: string(hashed),
		Posts:          0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.users.SaveUser(ctx, user); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "User registration failed.", err)
	}

	a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	return user
}

// login verifies credentials and responds with the matching user. Unknown
// email and wrong password produce the same error so callers can't tell
// which part was wrong.
func (a *UserActor) login(msg *LoginMsg) interface{} {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Email == "" || msg.Password == "" {
		return utils.NewValidationError("Fill in all fields.")
	}

	user, err := a.users.GetUserByEmail(ctx, strings.ToLower(msg.Email))
	if err != nil {
		return utils.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		return utils.NewInvalidCredentialsError()
	}

	a.metrics.AddOperationLatency("login", time.Since(startTime))
	return user
}

func (a *UserActor) changeAvatar(msg *ChangeAvatarMsg) interface{} {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Avatar == nil || len(msg.Avatar.Data) == 0 {
		return utils.NewValidationError("Please choose an image.")
	}

	user, err := a.users.GetUser(ctx, msg.UserID)
	if err != nil {
		return toAppError(err, "Failed to fetch user")
	}

	// A failed delete of the previous avatar aborts the change; otherwise
	// the old blob would be unreachable with no key left to retry with.
	if user.AvatarBlobKey != "" {
		if err := a.blobs.Delete(ctx, user.AvatarBlobKey); err != nil {
			return utils.NewAppError(utils.ErrBlobDelete, "Failed to delete old avatar.", err)
		}
	}

	uploaded, err := a.blobs.Upload(ctx, msg.Avatar.Filename, msg.Avatar.Data)
	if err != nil {
		return utils.NewAppError(utils.ErrBlobUpload, "Failed to upload avatar.", err)
	}

	updated, err := a.users.UpdateUserAvatar(ctx, msg.UserID, uploaded.URL, uploaded.Key)
	if err != nil {
		return toAppError(err, "Failed to update avatar")
	}

	a.metrics.AddOperationLatency("change_avatar", time.Since(startTime))
	return updated
}

func (a *UserActor) editProfile(msg *EditProfileMsg) interface{} {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.Name == "" || msg.Email == "" || msg.CurrentPassword == "" ||
		msg.NewPassword == "" || msg.ConfirmNewPassword == "" {
		return utils.NewValidationError("Fill in all fields.")
	}

	user, err := a.users.GetUser(ctx, msg.UserID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrUserNotFound) {
			return utils.NewAppError(utils.ErrForbidden, "User not found.", err)
		}
		return toAppError(err, "Failed to fetch user")
	}

	// The email stays unique across accounts; editing without changing it
	// must not trip over the user's own record.
	email := strings.ToLower(msg.Email)
	if existing, _ := a.users.GetUserByEmail(ctx, email); existing != nil && existing.ID != msg.UserID {
		return utils.NewAppError(utils.ErrEmailExists, "Email already exists.", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.CurrentPassword)); err != nil {
		return utils.NewAppError(utils.ErrInvalidCredentials, "Invalid current password.", err)
	}

	if msg.NewPassword != msg.ConfirmNewPassword {
		return utils.NewValidationError("New passwords do not match.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(msg.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to update profile.", err)
	}

	updated, err := a.users.UpdateUserProfile(ctx, msg.UserID, msg.Name, email, string(hashed))
	if err != nil {
		return toAppError(err, "Failed to update profile")
	}

	a.metrics.AddOperationLatency("edit_profile", time.Since(startTime))
	return updated
}
