package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
)

// Key prefixes for the badger keyspace.
const (
	userKeyPrefix  = "user:"
	emailKeyPrefix = "user-email:"
	postKeyPrefix  = "post:"
)

// maxTxnRetries bounds how often a read-modify-write is replayed after badger.ErrConflict.
const maxTxnRetries = 5

// BadgerStore is an embedded document store. Posts are stored as one JSON document
// with their comments embedded; every mutation runs inside a single serializable
// transaction.
type BadgerStore struct {
	db *badger.DB
}

// userRecord is the persisted user document.
type userRecord struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenBadger opens (or creates) a badger database at path. An empty path opens an
// in-memory database.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Users returns the credential store view of the database.
func (s *BadgerStore) Users() *BadgerUserRepository {
	return &BadgerUserRepository{db: s.db}
}

// Posts returns the post store view of the database.
func (s *BadgerStore) Posts() *BadgerPostRepository {
	return &BadgerPostRepository{db: s.db}
}

// BadgerUserRepository stores users under user: keys with a user-email: index.
type BadgerUserRepository struct {
	db *badger.DB
}

// BadgerPostRepository stores each post as a single document under post: keys.
type BadgerPostRepository struct {
	db *badger.DB
}

// update runs fn in a read-write transaction, replaying it on write conflicts.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

// Users

func (r *BadgerUserRepository) Create(_ context.Context, user *model.User) error {
	id := uuid.NewString()
	err := update(r.db, func(txn *badger.Txn) error {
		emailKey := []byte(emailKeyPrefix + user.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return ErrDuplicateEmail
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		rec := userRecord{
			ID:        id,
			Name:      user.Name,
			Email:     user.Email,
			Password:  user.PasswordHash,
			CreatedAt: user.CreatedAt,
		}
		if err := setJSON(txn, userKeyPrefix+id, rec); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(id))
	})
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

func (r *BadgerUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(emailKeyPrefix + email))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKeyPrefix+string(id), &rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *BadgerUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKeyPrefix+id, &rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r userRecord) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
	}
}

// Posts

func (r *BadgerPostRepository) List(_ context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(postKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p model.Post
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("unmarshal post: %w", err)
			}
			posts = append(posts, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(posts, func(a, b model.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return posts, nil
}

func (r *BadgerPostRepository) Get(_ context.Context, id string) (*model.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound
	}

	var p model.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, postKeyPrefix+id, &p)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BadgerPostRepository) Create(_ context.Context, post *model.Post) error {
	doc := *post
	doc.ID = uuid.NewString()
	if doc.Comments == nil {
		doc.Comments = []model.Comment{}
	}

	err := update(r.db, func(txn *badger.Txn) error {
		return setJSON(txn, postKeyPrefix+doc.ID, doc)
	})
	if err != nil {
		return err
	}

	*post = doc
	return nil
}

func (r *BadgerPostRepository) Update(_ context.Context, id string, upd model.PostUpdate) (*model.Post, error) {
	var p model.Post
	err := r.modifyPost(id, func(doc *model.Post) error {
		upd.Apply(doc)
		p = *doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BadgerPostRepository) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrPostNotFound
	}

	return update(r.db, func(txn *badger.Txn) error {
		key := []byte(postKeyPrefix + id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (r *BadgerPostRepository) PushComment(_ context.Context, postID string, c *model.Comment) ([]model.Comment, error) {
	var comments []model.Comment
	id := uuid.NewString()
	err := r.modifyPost(postID, func(doc *model.Post) error {
		added := *c
		added.ID = id
		doc.Comments = append([]model.Comment{added}, doc.Comments...)
		comments = doc.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.ID = id
	return comments, nil
}

func (r *BadgerPostRepository) PullComment(_ context.Context, postID, commentID, userID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.modifyPost(postID, func(doc *model.Post) error {
		i := slices.IndexFunc(doc.Comments, func(c model.Comment) bool {
			return c.ID == commentID && c.UserID == userID
		})
		if i < 0 {
			return ErrCommentNotFound
		}
		doc.Comments = slices.Delete(doc.Comments, i, i+1)
		comments = doc.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// modifyPost loads the post document, applies fn and writes it back in one transaction.
func (r *BadgerPostRepository) modifyPost(id string, fn func(doc *model.Post) error) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrPostNotFound
	}

	return update(r.db, func(txn *badger.Txn) error {
		var doc model.Post
		if err := getJSON(txn, postKeyPrefix+id, &doc); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if doc.Comments == nil {
			doc.Comments = []model.Comment{}
		}
		if err := fn(&doc); err != nil {
			return err
		}
		return setJSON(txn, postKeyPrefix+id, doc)
	})
}
