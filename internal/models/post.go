package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCaptionLength is counted in characters, not bytes.
const MaxCaptionLength = 100

// UnknownAuthorName is stored when the author has no display name.
const UnknownAuthorName = "Unknown User"

// Post is a social feed entry. Author name is copied at creation time.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	Caption   string             `bson:"caption" json:"caption"`
	Image     string             `bson:"image" json:"image"`
	UserID    string             `bson:"user_id" json:"user_id"`
	UserName  string             `bson:"user_name" json:"user_name"`
	Likes     int                `bson:"likes" json:"likes"`

	// Comments is reserved; nothing writes it yet.
	Comments []string `bson:"comments" json:"comments"`
}

// LikeResult is the confirmed like state of a post after a toggle.
type LikeResult struct {
	PostID string `json:"post_id"`
	Liked  bool   `json:"liked"`
	Likes  int    `json:"likes"`
}
