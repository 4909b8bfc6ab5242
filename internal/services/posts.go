package services

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/store"
	"github.com/planthead/planthead-backend/pkg/utils"
)

const (
	DefaultPostsLimit = 10
	MaxPostsLimit     = 100
)

// Posts is the social feed. Like Plants, it stores image references and
// returns view URLs.
type Posts struct {
	store store.PostStore
	feed  FeedPublisher
	files FileLinker
	now   func() time.Time
}

// NewPosts builds the feed service. feed and files may be nil.
func NewPosts(s store.PostStore, feed FeedPublisher, files FileLinker) *Posts {
	return &Posts{store: s, feed: feed, files: files, now: time.Now}
}

func (s *Posts) link(ctx context.Context, posts []models.Post) error {
	if s.files == nil || len(posts) == 0 {
		return nil
	}
	refs := make([]string, len(posts))
	for i, p := range posts {
		refs[i] = p.Image
	}
	urls, err := s.files.LinkRefs(ctx, refs)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].Image = urls[i]
	}
	return nil
}

// ValidateCaption requires 1 to 100 characters. Surrounding whitespace is
// trimmed before counting and is not stored.
func ValidateCaption(caption string) error {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return utils.Invalid("caption", "Caption is required")
	}
	if utf8.RuneCountInString(caption) > models.MaxCaptionLength {
		return utils.Invalid("caption", "Caption must be at most 100 characters")
	}
	return nil
}

// CreatePost publishes a post under the author's current display name.
func (s *Posts) CreatePost(ctx context.Context, author models.Session, caption, image string) (models.Post, error) {
	caption = strings.TrimSpace(caption)
	if err := ValidateCaption(caption); err != nil {
		return models.Post{}, err
	}
	if image == "" {
		return models.Post{}, utils.Invalid("image", "An image is required")
	}

	userName := strings.TrimSpace(author.Name)
	if userName == "" {
		userName = models.UnknownAuthorName
	}

	post := models.Post{
		CreatedAt: s.now().UTC(),
		Caption:   caption,
		Image:     image,
		UserID:    author.ID,
		UserName:  userName,
		Likes:     0,
	}

	storeCtx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := s.store.InsertPost(storeCtx, &post); err != nil {
		return models.Post{}, remote("insert post", err)
	}

	linked := []models.Post{post}
	if err := s.link(ctx, linked); err != nil {
		return models.Post{}, err
	}
	post = linked[0]

	s.publish(ctx, FeedEvent{Type: FeedPostCreated, PostID: post.ID.Hex(), Post: &post})
	return post, nil
}

// NormalizePostsLimit applies the default and the upper bound.
func NormalizePostsLimit(limit int) int {
	if limit <= 0 {
		return DefaultPostsLimit
	}
	if limit > MaxPostsLimit {
		return MaxPostsLimit
	}
	return limit
}

// ListPosts returns the newest posts first.
func (s *Posts) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	storeCtx, cancel := withStoreTimeout(ctx)
	defer cancel()
	posts, err := s.store.RecentPosts(storeCtx, NormalizePostsLimit(limit))
	if err != nil {
		return nil, remote("list posts", err)
	}
	if err := s.link(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ToggleLike flips the caller's like on a post and returns the confirmed
// count. The count never drops below zero.
func (s *Posts) ToggleLike(ctx context.Context, postID string, currentlyLiked bool) (models.LikeResult, error) {
	delta := 1
	if currentlyLiked {
		delta = -1
	}

	storeCtx, cancel := withStoreTimeout(ctx)
	defer cancel()
	likes, err := s.store.AdjustLikes(storeCtx, postID, delta)
	if err != nil {
		return models.LikeResult{}, remote("update likes", err)
	}

	result := models.LikeResult{PostID: postID, Liked: !currentlyLiked, Likes: likes}
	s.publish(ctx, FeedEvent{Type: FeedPostLiked, PostID: postID, Likes: likes})
	return result, nil
}

func (s *Posts) publish(ctx context.Context, event FeedEvent) {
	if s.feed == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.feed.PublishFeedEvent(ctx, event); err != nil {
		log.Printf("⚠️  Failed to publish %s event for post %s: %v", event.Type, event.PostID, err)
	}
}
