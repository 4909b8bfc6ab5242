package store

import (
	"context"
	"errors"

	"github.com/planthead/planthead-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

// MongoPosts stores feed posts in the "posts" collection.
type MongoPosts struct {
	col *mongo.Collection
}

func NewMongoPosts(db *mongo.Database) *MongoPosts {
	return &MongoPosts{col: db.Collection(postsCollection)}
}

// EnsureIndexes creates the newest-first feed index.
func (s *MongoPosts) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("idx_posts_created"),
	})
	return err
}

func (s *MongoPosts) InsertPost(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, p)
	return err
}

func (s *MongoPosts) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// likesFilter only matches a decrement while the result stays non-negative.
func likesFilter(id primitive.ObjectID, delta int) bson.M {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["likes"] = bson.M{"$gte": -delta}
	}
	return filter
}

func likesUpdate(delta int) bson.M {
	return bson.M{"$inc": bson.M{"likes": delta}}
}

func (s *MongoPosts) AdjustLikes(ctx context.Context, postID string, delta int) (int, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return 0, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err = s.col.FindOneAndUpdate(ctx, likesFilter(oid, delta), likesUpdate(delta), opts).Decode(&post)
	if err == nil {
		return post.Likes, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}
	if delta >= 0 {
		return 0, ErrNotFound
	}

	// The decrement guard did not match: either the post is missing or its
	// count is already at the floor.
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return post.Likes, nil
}
