package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
)

// PostRepository handles post and comment persistence on MySQL. Comments live in their
// own table and are removed with their post by ON DELETE CASCADE.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, title, author, content, cover_image_url, created_at`

const commentColumns = `id, user_id, user_name, content, created_at`

// List returns every post, newest first, with comments attached.
func (r *PostRepository) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.Content, &p.CoverImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Comments = []model.Comment{}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byPost, err := r.allComments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if cs, ok := byPost[posts[i].ID]; ok {
			posts[i].Comments = cs
		}
	}

	return posts, nil
}

// Get retrieves a post by ID. Malformed IDs are reported as ErrPostNotFound.
func (r *PostRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound
	}

	p := &model.Post{}
	err := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id).Scan(
		&p.ID, &p.Title, &p.Author, &p.Content, &p.CoverImageURL, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	p.Comments, err = r.comments(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a post and sets its generated ID.
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (` + postColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, query,
		id, post.Title, post.Author, post.Content, post.CoverImageURL, post.CreatedAt,
	); err != nil {
		return err
	}

	post.ID = id
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	return nil
}

// Update overwrites the non-nil fields of upd in a single statement and returns the
// stored post.
func (r *PostRepository) Update(ctx context.Context, id string, upd model.PostUpdate) (*model.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound
	}

	if !upd.IsEmpty() {
		query := `UPDATE posts SET
			title           = COALESCE(?, title),
			author          = COALESCE(?, author),
			content         = COALESCE(?, content),
			cover_image_url = COALESCE(?, cover_image_url)
			WHERE id = ?`
		if _, err := r.db.ExecContext(ctx, query, upd.Title, upd.Author, upd.Content, upd.CoverImageURL, id); err != nil {
			return nil, err
		}
	}

	return r.Get(ctx, id)
}

// Delete removes a post and, through the foreign key, its comments.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrPostNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// PushComment inserts c as the newest comment of the post. The insert selects from
// posts, so a missing post inserts nothing.
func (r *PostRepository) PushComment(ctx context.Context, postID string, c *model.Comment) ([]model.Comment, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, ErrPostNotFound
	}

	query := `INSERT INTO comments (id, post_id, user_id, user_name, content, created_at)
		SELECT ?, id, ?, ?, ?, ? FROM posts WHERE id = ?`

	id := uuid.NewString()
	result, err := r.db.ExecContext(ctx, query, id, c.UserID, c.UserName, c.Content, c.CreatedAt, postID)
	if err != nil {
		return nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrPostNotFound
	}

	c.ID = id
	return r.comments(ctx, postID)
}

// PullComment deletes the comment only if it belongs to the post and to userID.
func (r *PostRepository) PullComment(ctx context.Context, postID, commentID, userID string) ([]model.Comment, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ? AND post_id = ? AND user_id = ?`,
		commentID, postID, userID,
	)
	if err != nil {
		return nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrCommentNotFound
	}

	return r.comments(ctx, postID)
}

func (r *PostRepository) comments(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY seq DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *PostRepository) allComments(ctx context.Context) (map[string][]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id, `+commentColumns+` FROM comments ORDER BY post_id, seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byPost := make(map[string][]model.Comment)
	for rows.Next() {
		var postID string
		var c model.Comment
		if err := rows.Scan(&postID, &c.ID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		byPost[postID] = append(byPost[postID], c)
	}
	return byPost, rows.Err()
}
