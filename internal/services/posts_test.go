package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/store"
	"github.com/planthead/planthead-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ada = models.Session{ID: "u1", Name: "Ada", Email: "a@b.com"}

func newTestPosts() (*Posts, *store.Memory, *recordingFeed, *clock) {
	mem := store.NewMemory()
	feed := &recordingFeed{}
	c := newClock()
	p := NewPosts(mem, feed, nil)
	p.now = c.Now
	return p, mem, feed, c
}

func TestListPostsNewestFirstWithLimit(t *testing.T) {
	posts, _, _, c := newTestPosts()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := posts.CreatePost(ctx, ada, fmt.Sprintf("post %d", i), "img")
		require.NoError(t, err)
		c.Advance(time.Minute)
	}

	got, err := posts.ListPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "post 11", got[0].Caption)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].CreatedAt.After(got[i-1].CreatedAt))
	}
}

func TestNormalizePostsLimit(t *testing.T) {
	assert.Equal(t, 10, NormalizePostsLimit(0))
	assert.Equal(t, 10, NormalizePostsLimit(-4))
	assert.Equal(t, 25, NormalizePostsLimit(25))
	assert.Equal(t, 100, NormalizePostsLimit(500))
}

func TestCreatePostCaptionLength(t *testing.T) {
	posts, _, _, _ := newTestPosts()
	ctx := context.Background()

	_, err := posts.CreatePost(ctx, ada, strings.Repeat("é", 100), "img")
	require.NoError(t, err)

	_, err = posts.CreatePost(ctx, ada, strings.Repeat("é", 101), "img")
	var verr *utils.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "caption", verr.Field)

	_, err = posts.CreatePost(ctx, ada, "   ", "img")
	assert.True(t, errors.As(err, &verr))

	// Surrounding whitespace does not count and is not stored.
	p, err := posts.CreatePost(ctx, ada, strings.Repeat("a", 100)+"  \n", "img")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 100), p.Caption)

	_, err = posts.CreatePost(ctx, ada, "hello", "")
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "image", verr.Field)
}

func TestCreatePostDefaultsAuthorName(t *testing.T) {
	posts, _, feed, _ := newTestPosts()

	p, err := posts.CreatePost(context.Background(), models.Session{ID: "u2"}, "hi", "img")
	require.NoError(t, err)
	assert.Equal(t, models.UnknownAuthorName, p.UserName)
	assert.Equal(t, 0, p.Likes)
	assert.Nil(t, p.Comments)

	events := feed.Events()
	require.Len(t, events, 1)
	assert.Equal(t, FeedPostCreated, events[0].Type)
	assert.Equal(t, p.ID.Hex(), events[0].PostID)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	posts, mem, feed, _ := newTestPosts()
	ctx := context.Background()

	p := &models.Post{Caption: "liked", Image: "img", Likes: 5}
	require.NoError(t, mem.InsertPost(ctx, p))

	res, err := posts.ToggleLike(ctx, p.ID.Hex(), false)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 6, res.Likes)

	res, err = posts.ToggleLike(ctx, p.ID.Hex(), true)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 5, res.Likes)

	events := feed.Events()
	require.Len(t, events, 2)
	assert.Equal(t, FeedPostLiked, events[1].Type)
	assert.Equal(t, 5, events[1].Likes)
}

func TestToggleLikeNeverNegative(t *testing.T) {
	posts, mem, _, _ := newTestPosts()
	ctx := context.Background()

	p := &models.Post{Caption: "zero", Image: "img"}
	require.NoError(t, mem.InsertPost(ctx, p))

	res, err := posts.ToggleLike(ctx, p.ID.Hex(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Likes)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	posts, _, _, _ := newTestPosts()
	_, err := posts.ToggleLike(context.Background(), "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostImagesAreLinkedOnRead(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	feed := &recordingFeed{}
	posts := NewPosts(mem, feed, &signingLinker{})

	created, err := posts.CreatePost(ctx, ada, "hello", "posts/a")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/posts/a?sig=1", created.Image)

	events := feed.Events()
	require.Len(t, events, 1)
	assert.Equal(t, created.Image, events[0].Post.Image)

	stored, err := mem.RecentPosts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "posts/a", stored[0].Image)

	listed, err := posts.ListPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "https://signed.example.com/posts/a?sig=2", listed[0].Image)
}
