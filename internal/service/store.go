package service

import (
	"context"

	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
)

// UserStore is the credential store. Implementations report repository.ErrUserNotFound
// and repository.ErrDuplicateEmail.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// PostStore persists posts with embedded comments. Malformed ids resolve as
// repository.ErrPostNotFound. PushComment and PullComment are atomic per post.
type PostStore interface {
	List(ctx context.Context) ([]model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, id string, upd model.PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	PushComment(ctx context.Context, postID string, c *model.Comment) ([]model.Comment, error)
	// PullComment removes the comment only when it is owned by userID.
	PullComment(ctx context.Context, postID, commentID, userID string) ([]model.Comment, error)
}
