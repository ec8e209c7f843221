package model

import "time"

// DefaultCoverImageURL is stored when a post is created without a cover image.
const DefaultCoverImageURL = "https://images.unsplash.com/photo-1526374965328-7f61d4dc18c5"

// Post is a blog post with its comments embedded newest first.
// Author is free text supplied by the client, not a reference to a User.
type Post struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Content       string    `json:"content"`
	CoverImageURL string    `json:"coverImageURL"`
	Comments      []Comment `json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Comment belongs to exactly one Post. UserName is copied from the author's
// identity when the comment is written.
type Comment struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostRequest is the body of create and update requests.
type PostRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Content       string `json:"content"`
	CoverImageURL string `json:"coverImageURL"`
}

// PostUpdate carries the fields to overwrite. Nil fields keep their stored value.
type PostUpdate struct {
	Title         *string
	Author        *string
	Content       *string
	CoverImageURL *string
}

// IsEmpty reports whether u changes nothing.
func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.Content == nil && u.CoverImageURL == nil
}

// Apply overwrites the non-nil fields of u onto p.
func (u PostUpdate) Apply(p *Post) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.CoverImageURL != nil {
		p.CoverImageURL = *u.CoverImageURL
	}
}

// CommentRequest is the body of an add-comment request.
type CommentRequest struct {
	Content string `json:"content"`
}

// FindComment returns the first comment with the given id.
func (p *Post) FindComment(id string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}
