package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
	"github.com/niangamadou888/bookish-beacon-blog/internal/repository"
)

// PostService handles post and comment business logic.
//
// Any authenticated user may create, update or delete any post: posts carry no creator.
// Comments may only be deleted by the user who wrote them.
type PostService struct {
	posts PostStore
	now   func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore) *PostService {
	return &PostService{posts: posts, now: time.Now}
}

// ListPosts returns all posts, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// GetPost returns a single post.
func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return post, nil
}

// CreatePost stores a new post. Fields are taken as given; only the cover image
// gets a default.
func (s *PostService) CreatePost(ctx context.Context, id model.Identity, req model.PostRequest) (*model.Post, error) {
	if id.ID == "" {
		return nil, ErrUnauthenticated
	}

	cover := req.CoverImageURL
	if cover == "" {
		cover = model.DefaultCoverImageURL
	}

	post := &model.Post{
		Title:         req.Title,
		Author:        req.Author,
		Content:       req.Content,
		CoverImageURL: cover,
		Comments:      []model.Comment{},
		CreatedAt:     s.now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	slog.Info("post created", "post_id", post.ID, "user_id", id.ID)
	return post, nil
}

// UpdatePost overwrites the non-empty fields of req. Empty fields keep the stored value.
func (s *PostService) UpdatePost(ctx context.Context, id model.Identity, postID string, req model.PostRequest) (*model.Post, error) {
	if id.ID == "" {
		return nil, ErrUnauthenticated
	}

	post, err := s.posts.Update(ctx, postID, updateFromRequest(req))
	if err != nil {
		return nil, mapStoreError(err)
	}

	slog.Info("post updated", "post_id", postID, "user_id", id.ID)
	return post, nil
}

// DeletePost removes a post together with its comments.
func (s *PostService) DeletePost(ctx context.Context, id model.Identity, postID string) error {
	if id.ID == "" {
		return ErrUnauthenticated
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return mapStoreError(err)
	}

	slog.Info("post deleted", "post_id", postID, "user_id", id.ID)
	return nil
}

// AddComment puts a new comment by id at the front of the post's comments and returns
// the updated list.
func (s *PostService) AddComment(ctx context.Context, id model.Identity, postID, content string) ([]model.Comment, error) {
	if id.ID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentRequired
	}

	c := &model.Comment{
		UserID:    id.ID,
		UserName:  id.Name,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	comments, err := s.posts.PushComment(ctx, postID, c)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return comments, nil
}

// DeleteComment removes a comment written by id and returns the updated list.
func (s *PostService) DeleteComment(ctx context.Context, id model.Identity, postID, commentID string) ([]model.Comment, error) {
	if id.ID == "" {
		return nil, ErrUnauthenticated
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	comment, ok := post.FindComment(commentID)
	if !ok {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != id.ID {
		slog.Warn("comment delete denied", "post_id", postID, "comment_id", commentID, "user_id", id.ID)
		return nil, ErrNotCommentOwner
	}

	comments, err := s.posts.PullComment(ctx, postID, commentID, id.ID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return comments, nil
}

// updateFromRequest keeps only the non-empty fields of req.
func updateFromRequest(req model.PostRequest) model.PostUpdate {
	var upd model.PostUpdate
	if req.Title != "" {
		upd.Title = &req.Title
	}
	if req.Author != "" {
		upd.Author = &req.Author
	}
	if req.Content != "" {
		upd.Content = &req.Content
	}
	if req.CoverImageURL != "" {
		upd.CoverImageURL = &req.CoverImageURL
	}
	return upd
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		return ErrPostNotFound
	case errors.Is(err, repository.ErrCommentNotFound):
		return ErrCommentNotFound
	default:
		return err
	}
}
