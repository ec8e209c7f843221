package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niangamadou888/bookish-beacon-blog/internal/middleware"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
	"github.com/niangamadou888/bookish-beacon-blog/internal/service"
)

// PostHandler handles HTTP requests for posts and their comments.
type PostHandler struct {
	service *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{service: svc}
}

// HandleList handles GET /api/posts requests.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		writeServiceError(w, r, "list posts", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// HandleGet handles GET /api/posts/{id} requests.
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "get post", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// HandleCreate handles POST /api/posts requests.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	var req model.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, "create post", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// HandleUpdate handles PUT /api/posts/{id} requests.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	var req model.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.service.UpdatePost(r.Context(), id, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, "update post", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// HandleDelete handles DELETE /api/posts/{id} requests.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	if err := h.service.DeletePost(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "delete post", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post removed"})
}

// HandleAddComment handles POST /api/posts/{id}/comments requests.
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	var req model.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comments, err := h.service.AddComment(r.Context(), id, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeServiceError(w, r, "add comment", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// HandleDeleteComment handles DELETE /api/posts/{id}/comments/{commentId} requests.
func (h *PostHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	comments, err := h.service.DeleteComment(r.Context(), id, chi.URLParam(r, "id"), chi.URLParam(r, "commentId"))
	if err != nil {
		writeServiceError(w, r, "delete comment", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}
