package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names of an existing blog database.
const (
	usersCollection = "users"
	postsCollection = "posts"
)

// MongoStore holds the client for a MongoDB database. It is created once in main and
// handed to the repositories; nothing here is package-level.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	UserName  string             `bson:"userName"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type postDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Title         string             `bson:"title"`
	Author        string             `bson:"author"`
	Content       string             `bson:"content"`
	CoverImageURL string             `bson:"coverImageURL"`
	Comments      []commentDocument  `bson:"comments"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

// OpenMongo connects to uri, pings the primary and ensures the unique email index.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(database)}

	_, err = s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create email index: %w", err)
	}

	return s, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Users returns the credential store backed by the users collection.
func (s *MongoStore) Users() *MongoUserRepository {
	return &MongoUserRepository{coll: s.db.Collection(usersCollection)}
}

// Posts returns the post store backed by the posts collection.
func (s *MongoStore) Posts() *MongoPostRepository {
	return &MongoPostRepository{coll: s.db.Collection(postsCollection)}
}

// MongoUserRepository handles user persistence on MongoDB.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID = doc.ID.Hex()
	return nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &model.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// MongoPostRepository handles post persistence on MongoDB. Comment changes are single
// $push/$pull updates, so concurrent writers never overwrite each other's comments.
type MongoPostRepository struct {
	coll *mongo.Collection
}

func (r *MongoPostRepository) List(ctx context.Context) ([]model.Post, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	posts := make([]model.Post, len(docs))
	for i := range docs {
		posts[i] = docs[i].toModel()
	}
	return posts, nil
}

func (r *MongoPostRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var doc postDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	p := doc.toModel()
	return &p, nil
}

func (r *MongoPostRepository) Create(ctx context.Context, post *model.Post) error {
	doc := postDocument{
		ID:            primitive.NewObjectID(),
		Title:         post.Title,
		Author:        post.Author,
		Content:       post.Content,
		CoverImageURL: post.CoverImageURL,
		Comments:      []commentDocument{},
		CreatedAt:     post.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}

	*post = doc.toModel()
	return nil
}

func (r *MongoPostRepository) Update(ctx context.Context, id string, upd model.PostUpdate) (*model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Author != nil {
		set["author"] = *upd.Author
	}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.CoverImageURL != nil {
		set["coverImageURL"] = *upd.CoverImageURL
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, ErrPostNotFound)
}

func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *MongoPostRepository) PushComment(ctx context.Context, postID string, c *model.Comment) ([]model.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}
	userID, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return nil, fmt.Errorf("comment user id %q: %w", c.UserID, err)
	}

	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		UserName:  c.UserName,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	update := bson.M{"$push": bson.M{"comments": bson.M{
		"$each":     bson.A{doc},
		"$position": 0,
	}}}

	p, err := r.findOneAndUpdate(ctx, bson.M{"_id": oid}, update, ErrPostNotFound)
	if err != nil {
		return nil, err
	}

	c.ID = doc.ID.Hex()
	return p.Comments, nil
}

func (r *MongoPostRepository) PullComment(ctx context.Context, postID, commentID, userID string) ([]model.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, ErrCommentNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrCommentNotFound
	}

	filter := bson.M{
		"_id":      oid,
		"comments": bson.M{"$elemMatch": bson.M{"_id": cid, "userId": uid}},
	}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": cid}}}

	p, err := r.findOneAndUpdate(ctx, filter, update, ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

// findOneAndUpdate applies update to the document matching filter and returns the
// result, or notFound when nothing matched.
func (r *MongoPostRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, notFound error) (*model.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}

	p := doc.toModel()
	return &p, nil
}

func (d postDocument) toModel() model.Post {
	comments := make([]model.Comment, len(d.Comments))
	for i, c := range d.Comments {
		comments[i] = model.Comment{
			ID:        c.ID.Hex(),
			UserID:    c.UserID.Hex(),
			UserName:  c.UserName,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		}
	}
	return model.Post{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Author:        d.Author,
		Content:       d.Content,
		CoverImageURL: d.CoverImageURL,
		Comments:      comments,
		CreatedAt:     d.CreatedAt,
	}
}
