package handlers

import (
	"fmt"
	"net/http"

	"github.com/jayesh-zip/blog-app/internal/engine/actors"
	"github.com/jayesh-zip/blog-app/internal/middleware"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/google/uuid"
)

// HandleCreatePost handles requests to publish a new post. The body is
// multipart: title, category, description plus a thumbnail file.
func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required.", nil))
			return
		}

		thumbnail, appErr := readImageFile(r, "thumbnail")
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		result, err := s.ask(s.Engine.GetPostActor(), &actors.CreatePostMsg{
			Title:       r.FormValue("title"),
			Category:    r.FormValue("category"),
			Description: r.FormValue("description"),
			Thumbnail:   thumbnail,
			CreatorID:   identity.UserID,
		})

		s.respondResult(w, result, err, http.StatusCreated)
	}
}

// HandleListPosts handles requests for all posts, most recently updated first
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.ask(s.Engine.GetPostActor(), &actors.ListPostsMsg{})
		s.respondResult(w, result, err, http.StatusOK)
	}
}

// HandleGetPost handles requests for a single post
func (s *Server) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid post ID format.", err))
			return
		}

		result, askErr := s.ask(s.Engine.GetPostActor(), &actors.GetPostMsg{PostID: postID})
		s.respondResult(w, result, askErr, http.StatusOK)
	}
}

// HandleListPostsByCategory handles requests for posts in one category
func (s *Server) HandleListPostsByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.PathValue("category")
		if category == "" {
			s.respondError(w, utils.NewValidationError("Category is required."))
			return
		}

		result, err := s.ask(s.Engine.GetPostActor(), &actors.ListPostsByCategoryMsg{Category: category})
		s.respondResult(w, result, err, http.StatusOK)
	}
}

// HandleListPostsByCreator handles requests for a single author's posts
func (s *Server) HandleListPostsByCreator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creatorID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid user ID format.", err))
			return
		}

		result, askErr := s.ask(s.Engine.GetPostActor(), &actors.ListPostsByCreatorMsg{CreatorID: creatorID})
		s.respondResult(w, result, askErr, http.StatusOK)
	}
}

// HandleEditPost handles requests to edit an existing post. The thumbnail
// is optional; when present the old blob is replaced.
func (s *Server) HandleEditPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required.", nil))
			return
		}

		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid post ID format.", err))
			return
		}

		thumbnail, appErr := readImageFile(r, "thumbnail")
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		result, askErr := s.ask(s.Engine.GetPostActor(), &actors.EditPostMsg{
			PostID:      postID,
			EditorID:    identity.UserID,
			Title:       r.FormValue("title"),
			Category:    r.FormValue("category"),
			Description: r.FormValue("description"),
			Thumbnail:   thumbnail,
		})

		s.respondResult(w, result, askErr, http.StatusOK)
	}
}

// HandleDeletePost handles requests to delete a post and its thumbnail
func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required.", nil))
			return
		}

		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "Post ID is required.", err))
			return
		}

		result, askErr := s.ask(s.Engine.GetPostActor(), &actors.DeletePostMsg{
			PostID:      postID,
			RequesterID: identity.UserID,
		})
		if askErr != nil {
			s.respondError(w, utils.NewActorTimeoutError("post actor"))
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			s.respondError(w, appErr)
			return
		}

		deleted, ok := result.(*actors.PostDeleted)
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "An error occurred while deleting the post.", nil))
			return
		}

		s.respondJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Post %s deleted successfully.", deleted.PostID),
		})
	}
}

// HandleHealth reports liveness plus entity counts
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postCount := 0
		if result, err := s.ask(s.Engine.GetPostActor(), &actors.GetCountsMsg{}); err == nil {
			if n, ok := result.(int); ok {
				postCount = n
			}
		}

		userCount := 0
		if result, err := s.ask(s.Engine.GetUserActor(), &actors.GetCountsMsg{}); err == nil {
			if n, ok := result.(int); ok {
				userCount = n
			}
		}

		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"posts":  postCount,
			"users":  userCount,
		})
	}
}
