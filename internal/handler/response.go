package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niangamadou888/bookish-beacon-blog/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

var (
	errBodyTooLarge = errors.New("request body too large")
	errBadBody      = errors.New("invalid request body")
)

// decodeJSON reads a JSON body of at most maxBodyBytes into v and writes the error
// response itself when it fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(errBodyTooLarge.Error()))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse(errBadBody.Error()))
		return false
	}
	return true
}

// writeServiceError maps a service error onto its status and client message. Unknown
// errors are logged and reported as a generic server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse(verr.Error()))
	case errors.Is(err, service.ErrUserExists):
		writeJSON(w, http.StatusBadRequest, errorResponse("User already exists"))
	case errors.Is(err, service.ErrInvalidEmail):
		writeJSON(w, http.StatusBadRequest, errorResponse("Invalid email"))
	case errors.Is(err, service.ErrInvalidPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse("Invalid password"))
	case errors.Is(err, service.ErrCommentRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse("Comment content is required"))
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse("Authorization denied, no token provided"))
	case errors.Is(err, service.ErrNotCommentOwner):
		writeJSON(w, http.StatusUnauthorized, errorResponse("User not authorized to delete this comment"))
	case errors.Is(err, service.ErrPostNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("Post not found"))
	case errors.Is(err, service.ErrCommentNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("Comment not found"))
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("User not found"))
	default:
		slog.Error("request failed", "op", op, "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("Server error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"message": msg}
}
