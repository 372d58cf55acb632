package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jayesh-zip/blog-app/internal/api"
	"github.com/jayesh-zip/blog-app/internal/engine/actors"
	"github.com/jayesh-zip/blog-app/internal/middleware"
	"github.com/jayesh-zip/blog-app/internal/models"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EditUserRequest represents a profile edit. Every field is required; the
// whole edit applies or none of it does.
type EditUserRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// HandleRegister handles requests to register a new user
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request body."))
			return
		}

		result, err := s.ask(s.Engine.GetUserActor(), &actors.RegisterUserMsg{
			Name:            req.Name,
			Email:           req.Email,
			Password:        req.Password,
			PasswordConfirm: req.Password2,
		})

		s.respondResult(w, result, err, http.StatusCreated)
	}
}

// HandleLogin handles requests to log in a user. The actor verifies the
// credentials; the token is minted here, at the HTTP boundary.
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request body."))
			return
		}

		result, err := s.ask(s.Engine.GetUserActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			s.respondError(w, utils.NewActorTimeoutError("user actor"))
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			s.respondError(w, appErr)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "Login failed.", nil))
			return
		}

		token, err := middleware.GenerateToken(user.ID, user.Name)
		if err != nil {
			slog.Error("failed to generate auth token", "error", err)
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate auth token.", err))
			return
		}

		s.respondJSON(w, http.StatusOK, &api.LoginResponse{
			Token: token,
			ID:    user.ID.String(),
			Name:  user.Name,
		})
	}
}

// HandleGetUser handles requests to get a user's public profile
func (s *Server) HandleGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid user ID format.", err))
			return
		}

		result, askErr := s.ask(s.Engine.GetUserActor(), &actors.GetProfileMsg{UserID: userID})
		s.respondResult(w, result, askErr, http.StatusOK)
	}
}

// HandleListAuthors handles requests to list every registered author
func (s *Server) HandleListAuthors() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.ask(s.Engine.GetUserActor(), &actors.ListAuthorsMsg{})
		s.respondResult(w, result, err, http.StatusOK)
	}
}

// HandleChangeAvatar handles avatar replacement for the authenticated user
func (s *Server) HandleChangeAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required.", nil))
			return
		}

		avatar, appErr := readImageFile(r, "avatar")
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		result, err := s.ask(s.Engine.GetUserActor(), &actors.ChangeAvatarMsg{
			UserID: identity.UserID,
			Avatar: avatar,
		})

		s.respondResult(w, result, err, http.StatusOK)
	}
}

// HandleEditUser handles profile edits for the authenticated user
func (s *Server) HandleEditUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required.", nil))
			return
		}

		var req EditUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request body."))
			return
		}

		result, err := s.ask(s.Engine.GetUserActor(), &actors.EditProfileMsg{
			UserID:             identity.UserID,
			Name:               req.Name,
			Email:              req.Email,
			CurrentPassword:    req.CurrentPassword,
			NewPassword:        req.NewPassword,
			ConfirmNewPassword: req.ConfirmNewPassword,
		})

		s.respondResult(w, result, err, http.StatusOK)
	}
}
