package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niangamadou888/bookish-beacon-blog/internal/crypto"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
	"github.com/niangamadou888/bookish-beacon-blog/internal/repository"
	"github.com/niangamadou888/bookish-beacon-blog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := repository.OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens := crypto.NewTokenService("test-secret", 7*24*time.Hour)
	hasher := crypto.NewPasswordHasher(crypto.HashParams{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})

	return &testAPI{t: t, router: NewRouter(RouterConfig{
		Auth:       NewAuthHandler(service.NewAuthService(store.Users(), tokens, hasher)),
		Posts:      NewPostHandler(service.NewPostService(store.Posts())),
		Tokens:     tokens,
		CORSOrigin: "*",
	})}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func (a *testAPI) register(name, email string) model.AuthResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: name, Email: email, Password: "pw-" + name})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[model.AuthResponse](a.t, rec)
}

func (a *testAPI) createPost(token string, req model.PostRequest) model.Post {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/posts", token, req)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[struct{ Post model.Post }](a.t, rec).Post
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	reg := api.register("Ada", "ada@example.com")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "Ada", reg.User.Name)

	rec := api.do(http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", message(t, rec))

	rec = api.do(http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ada@example.com", Password: "pw-Ada"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[model.AuthResponse](t, rec)
	assert.Equal(t, reg.User, login.User)

	rec = api.do(http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ada@example.com", Password: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid password", message(t, rec))

	rec = api.do(http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "who@example.com", Password: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email", message(t, rec))

	rec = api.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reg.User, decode[struct{ User model.UserResponse }](t, rec).User)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: "Ada", Email: "nope", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email is invalid", message(t, rec))
}

func TestUserResponseOmitsPassword(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "argon2id")
}

func TestPostsLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("Ada", "ada@example.com")
	bob := api.register("Bob", "bob@example.com")

	rec := api.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"posts":[]}`, rec.Body.String())

	post := api.createPost(ada.Token, model.PostRequest{Title: "T", Author: "A", Content: "C"})
	assert.Equal(t, model.DefaultCoverImageURL, post.CoverImageURL)

	rec = api.do(http.MethodGet, "/api/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T", decode[struct{ Post model.Post }](t, rec).Post.Title)

	// Any authenticated user may edit.
	rec = api.do(http.MethodPut, "/api/posts/"+post.ID, bob.Token, model.PostRequest{Title: "", Content: "C2"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[struct{ Post model.Post }](t, rec).Post
	assert.Equal(t, "T", updated.Title)
	assert.Equal(t, "C2", updated.Content)

	rec = api.do(http.MethodDelete, "/api/posts/"+post.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Post removed", message(t, rec))

	rec = api.do(http.MethodGet, "/api/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", message(t, rec))
}

func TestPostNotFound(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("Ada", "ada@example.com")

	for _, id := range []string{"3f2504e0-4f89-41d3-9a0c-0305e82c3301", "not-an-id"} {
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/posts/"+id, "", nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, "/api/posts/"+id, ada.Token, model.PostRequest{Title: "x"}).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/posts/"+id, ada.Token, nil).Code)
	}
}

func TestMutationsRequireToken(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("Ada", "ada@example.com")
	post := api.createPost(ada.Token, model.PostRequest{Title: "T"})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/" + post.ID},
		{http.MethodDelete, "/api/posts/" + post.ID},
		{http.MethodPost, "/api/posts/" + post.ID + "/comments"},
		{http.MethodDelete, "/api/posts/" + post.ID + "/comments/x"},
		{http.MethodGet, "/api/auth/me"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := api.do(tt.method, tt.path, "", model.PostRequest{Title: "x"})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Authorization denied, no token provided", message(t, rec))

			rec = api.do(tt.method, tt.path, "forged.token.value", model.PostRequest{Title: "x"})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Token is not valid", message(t, rec))
		})
	}
}

func TestCommentsOwnership(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("Ada", "ada@example.com")
	bob := api.register("Bob", "bob@example.com")
	post := api.createPost(ada.Token, model.PostRequest{Title: "T"})
	commentsPath := "/api/posts/" + post.ID + "/comments"

	rec := api.do(http.MethodPost, commentsPath, ada.Token, model.CommentRequest{Content: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Comment content is required", message(t, rec))

	rec = api.do(http.MethodPost, commentsPath, ada.Token, model.CommentRequest{Content: "by ada"})
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decode[struct{ Comments []model.Comment }](t, rec).Comments
	require.Len(t, comments, 1)
	assert.Equal(t, ada.User.ID, comments[0].UserID)
	assert.Equal(t, "Ada", comments[0].UserName)

	rec = api.do(http.MethodPost, commentsPath, bob.Token, model.CommentRequest{Content: "by bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	comments = decode[struct{ Comments []model.Comment }](t, rec).Comments
	require.Len(t, comments, 2)
	assert.Equal(t, "by bob", comments[0].Content)
	adaComment := comments[1]

	rec = api.do(http.MethodDelete, commentsPath+"/"+adaComment.ID, bob.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not authorized to delete this comment", message(t, rec))

	rec = api.do(http.MethodDelete, commentsPath+"/missing", ada.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Comment not found", message(t, rec))

	rec = api.do(http.MethodDelete, commentsPath+"/"+adaComment.ID, ada.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments = decode[struct{ Comments []model.Comment }](t, rec).Comments
	require.Len(t, comments, 1)
	assert.Equal(t, "by bob", comments[0].Content)

	rec = api.do(http.MethodPost, "/api/posts/3f2504e0-4f89-41d3-9a0c-0305e82c3301/comments", ada.Token, model.CommentRequest{Content: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", message(t, rec))
}

func TestBadBodies(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("Ada", "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+ada.Token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", message(t, rec))

	huge := `{"title":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(huge))
	req.Header.Set("Authorization", "Bearer "+ada.Token)
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
