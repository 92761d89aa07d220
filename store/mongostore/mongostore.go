// Package mongostore binds the Store interface to MongoDB. Atomic mutations
// use an optimistic version filter on ReplaceOne: a concurrent writer bumps
// the version, the replace matches nothing, and the mutation is retried from
// a fresh snapshot.
package mongostore

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chirp/apperr"
	"chirp/models"
	"chirp/store"
)

const maxUpdateRetries = 5

type Store struct {
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		users:    db.Collection("users"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
	}
}

// EnsureIndexes creates the unique username index and the lookup indexes the
// query paths depend on. Safe to call on every startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return apperr.Wrap(apperr.Transient, "create username index", err)
	}
	_, err = s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "parentId", Value: 1}},
	})
	if err != nil {
		return apperr.Wrap(apperr.Transient, "create parentId index", err)
	}
	_, err = s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author", Value: 1}},
	})
	if err != nil {
		return apperr.Wrap(apperr.Transient, "create author index", err)
	}
	return nil
}

// substringFilter builds a case-insensitive literal substring match; the
// query text is quoted so it is never interpreted as a pattern.
func substringFilter(field, match string) bson.M {
	return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(match), "$options": "i"}}
}

// ---- users ----

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Newf(apperr.Conflict, "username %q already exists", u.Username)
	}
	if err != nil {
		return apperr.Wrap(apperr.Transient, "insert user", err)
	}
	return nil
}

func (s *Store) User(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "fetch user", err)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "fetch user", err)
	}
	return &u, nil
}

func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "fetch users", err)
	}
	defer cursor.Close(ctx)
	var out []models.User
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "decode users", err)
	}
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		cur, err := s.User(ctx, id)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		next.Version = cur.Version + 1

		res, err := s.users.ReplaceOne(ctx, bson.M{"_id": id, "version": cur.Version}, next)
		if err != nil {
			return nil, apperr.Wrap(apperr.Transient, "update user", err)
		}
		if res.MatchedCount == 1 {
			return next, nil
		}
		// lost the version race; reload and retry
	}
	return nil, apperr.New(apperr.Transient, "user record contention")
}

func (s *Store) FindUsers(ctx context.Context, match string) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, substringFilter("username", match))
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "find users", err)
	}
	defer cursor.Close(ctx)
	var out []models.User
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "decode users", err)
	}
	return out, nil
}

// ---- posts ----

func (s *Store) InsertPost(ctx context.Context, p *models.Post) error {
	if _, err := s.posts.InsertOne(ctx, p); err != nil {
		return apperr.Wrap(apperr.Transient, "insert post", err)
	}
	return nil
}

func (s *Store) Post(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "fetch post", err)
	}
	return &p, nil
}

func (s *Store) PostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "fetch posts", err)
	}
	defer cursor.Close(ctx)
	var out []models.Post
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "decode posts", err)
	}
	return out, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, mutate func(*models.Post) error) (*models.Post, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		cur, err := s.Post(ctx, id)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		next.Version = cur.Version + 1

		res, err := s.posts.ReplaceOne(ctx, bson.M{"_id": id, "version": cur.Version}, next)
		if err != nil {
			return nil, apperr.Wrap(apperr.Transient, "update post", err)
		}
		if res.MatchedCount == 1 {
			return next, nil
		}
	}
	return nil, apperr.New(apperr.Transient, "post record contention")
}

func (s *Store) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := s.posts.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "post not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "delete post", err)
	}
	return &p, nil
}

func (s *Store) PostsByAuthors(ctx context.Context, authors []string) ([]models.Post, error) {
	filter := bson.M{}
	if authors != nil {
		filter["author"] = bson.M{"$in": authors}
	}
	cursor, err := s.posts.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "list posts", err)
	}
	defer cursor.Close(ctx)
	var out []models.Post
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "decode posts", err)
	}
	return out, nil
}

func (s *Store) FindPosts(ctx context.Context, match string) ([]models.Post, error) {
	filter := bson.M{"$or": []bson.M{
		substringFilter("body", match),
		substringFilter("author", match),
	}}
	cursor, err := s.posts.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "find posts", err)
	}
	defer cursor.Close(ctx)
	var out []models.Post
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "decode posts", err)
	}
	return out, nil
}

// ---- comments ----

func (s *Store) InsertComment(ctx context.Context, c *models.Comment) error {
	if _, err := s.comments.InsertOne(ctx, c); err != nil {
		return apperr.Wrap(apperr.Transient, "insert comment", err)
	}
	return nil
}

func (s *Store) Comment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "fetch comment", err)
	}
	return &c, nil
}

func (s *Store) CommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	cursor, err := s.comments.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "fetch comments", err)
	}
	defer cursor.Close(ctx)
	var out []models.Comment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "decode comments", err)
	}
	return out, nil
}

func (s *Store) CommentsByParent(ctx context.Context, parentID string) ([]models.Comment, error) {
	cursor, err := s.comments.Find(ctx, bson.M{"parentId": parentID})
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "list comments", err)
	}
	defer cursor.Close(ctx)
	var out []models.Comment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Wrap(apperr.Transient, "decode comments", err)
	}
	return out, nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, mutate func(*models.Comment) error) (*models.Comment, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		cur, err := s.Comment(ctx, id)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		next.Version = cur.Version + 1

		res, err := s.comments.ReplaceOne(ctx, bson.M{"_id": id, "version": cur.Version}, next)
		if err != nil {
			return nil, apperr.Wrap(apperr.Transient, "update comment", err)
		}
		if res.MatchedCount == 1 {
			return next, nil
		}
	}
	return nil, apperr.New(apperr.Transient, "comment record contention")
}

func (s *Store) DeleteComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := s.comments.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "delete comment", err)
	}
	return &c, nil
}

func (s *Store) DeleteCommentsByParent(ctx context.Context, parentID string) (int64, error) {
	res, err := s.comments.DeleteMany(ctx, bson.M{"parentId": parentID})
	if err != nil {
		return 0, apperr.Wrap(apperr.Transient, "delete comments", err)
	}
	return res.DeletedCount, nil
}
