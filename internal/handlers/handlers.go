package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jayesh-zip/blog-app/internal/engine"
	"github.com/jayesh-zip/blog-app/internal/engine/actors"
	"github.com/jayesh-zip/blog-app/internal/middleware"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

const maxUploadSize = 5 << 20 // 5 MiB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(system *actor.ActorSystem, eng *engine.Engine, metrics *utils.MetricsCollector) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// RegisterRoutes wires every API route onto the mux. Protected routes are
// wrapped with the bearer-token middleware; everything else is public.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.HandleHealth())

	mux.HandleFunc("POST /users/register", s.HandleRegister())
	mux.HandleFunc("POST /users/login", s.HandleLogin())
	mux.HandleFunc("GET /users", s.HandleListAuthors())
	mux.HandleFunc("GET /users/{id}", s.HandleGetUser())
	mux.HandleFunc("POST /users/change-avatar", middleware.RequireAuth(s.HandleChangeAvatar()))
	mux.HandleFunc("PATCH /users/edit-user", middleware.RequireAuth(s.HandleEditUser()))

	mux.HandleFunc("POST /posts", middleware.RequireAuth(s.HandleCreatePost()))
	mux.HandleFunc("GET /posts", s.HandleListPosts())
	mux.HandleFunc("GET /posts/{id}", s.HandleGetPost())
	mux.HandleFunc("GET /posts/categories/{category}", s.HandleListPostsByCategory())
	mux.HandleFunc("GET /posts/users/{id}", s.HandleListPostsByCreator())
	mux.HandleFunc("PATCH /posts/{id}", middleware.RequireAuth(s.HandleEditPost()))
	mux.HandleFunc("DELETE /posts/{id}", middleware.RequireAuth(s.HandleDeletePost()))
}

// ask sends a message to an actor and waits for its reply.
func (s *Server) ask(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	return future.Result()
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	s.Metrics.IncrementRequests()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) respondError(w http.ResponseWriter, appErr *utils.AppError) {
	s.Metrics.IncrementRequests()
	s.Metrics.IncrementErrors()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(utils.AppErrorToHTTPStatus(appErr.Code))
	json.NewEncoder(w).Encode(map[string]string{"error": appErr.Message})
}

// respondResult writes an actor reply: AppErrors become error responses,
// anything else is the success payload.
func (s *Server) respondResult(w http.ResponseWriter, result interface{}, err error, successStatus int) {
	if err != nil {
		s.respondError(w, utils.NewActorTimeoutError("lifecycle actor"))
		return
	}
	if appErr, ok := result.(*utils.AppError); ok {
		s.respondError(w, appErr)
		return
	}
	s.respondJSON(w, successStatus, result)
}

// readImageFile extracts an uploaded image from a multipart form field.
// A missing file is reported as (nil, nil); callers decide whether the
// file is required.
func readImageFile(r *http.Request, field string) (*actors.ImageUpload, *utils.AppError) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, utils.NewValidationError("Invalid form data or file too large (max 5MB).")
	}

	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewValidationError("Failed to read uploaded file.")
	}
	defer file.Close()

	if contentType := header.Header.Get("Content-Type"); !allowedImageTypes[contentType] {
		return nil, utils.NewValidationError("Unsupported image type. Use JPEG, PNG or WebP.")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, utils.NewValidationError("Failed to read uploaded file.")
	}

	return &actors.ImageUpload{
		Filename: header.Filename,
		Data:     data,
	}, nil
}
