package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirper/domain"
	"chirper/errs"
)

func TestFeedExcludesRetweets(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	ctx := context.Background()

	alice := createTestUser(t, us, "alice", "Alice")
	bob := createTestUser(t, us, "bob", "Bob")

	original := &domain.Post{UserID: bob.ID, Body: "an original thought"}
	require.NoError(t, ps.Create(ctx, original))
	mine := &domain.Post{UserID: alice.ID, Body: "my own post"}
	require.NoError(t, ps.Create(ctx, mine))
	_, err := ps.Retweet(ctx, alice.ID, original.ID)
	require.NoError(t, err)

	feed, err := ps.ByUserID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, mine.ID, feed[0].ID)
	assert.Nil(t, feed[0].RetweetsID)
}

func TestFeedEnrichment(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	ls := NewLikeService(db)
	ctx := context.Background()

	alice := createTestUser(t, us, "alice", "Alice")
	bob := createTestUser(t, us, "bob", "Bob")

	post := &domain.Post{UserID: alice.ID, Body: "like me"}
	require.NoError(t, ps.Create(ctx, post))
	require.NoError(t, db.Create(&domain.Image{PostID: post.ID, URL: "/images/1/a.jpg"}).Error)
	require.NoError(t, ls.Create(ctx, &domain.Like{UserID: bob.ID, PostID: post.ID}))

	feed, err := ps.ByUserID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	got := feed[0]
	assert.Equal(t, alice.ID, got.User.ID)
	assert.Equal(t, "Alice", got.User.Nickname)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "/images/1/a.jpg", got.Images[0].URL)
	require.Len(t, got.Likes, 1)
	assert.Equal(t, bob.ID, got.Likes[0].UserID)
}

func TestFeedOrderingIsStable(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	ctx := context.Background()

	alice := createTestUser(t, us, "alice", "Alice")
	for _, body := range []string{"first", "second", "third"} {
		require.NoError(t, ps.Create(ctx, &domain.Post{UserID: alice.ID, Body: body}))
	}

	feed1, err := ps.ByUserID(ctx, alice.ID)
	require.NoError(t, err)
	feed2, err := ps.ByUserID(ctx, alice.ID)
	require.NoError(t, err)

	require.Len(t, feed1, 3)
	assert.Equal(t, "first", feed1[0].Body)
	assert.Equal(t, "third", feed1[2].Body)
	for i := range feed1 {
		assert.Equal(t, feed1[i].ID, feed2[i].ID)
	}
}

func TestRetweetRules(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	ctx := context.Background()

	alice := createTestUser(t, us, "alice", "Alice")
	bob := createTestUser(t, us, "bob", "Bob")

	original := &domain.Post{UserID: bob.ID, Body: "worth spreading"}
	require.NoError(t, ps.Create(ctx, original))

	// Retweeting your own post is rejected.
	_, err := ps.Retweet(ctx, bob.ID, original.ID)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	retweet, err := ps.Retweet(ctx, alice.ID, original.ID)
	require.NoError(t, err)
	require.NotNil(t, retweet.RetweetsID)
	assert.Equal(t, original.ID, *retweet.RetweetsID)

	// Retweeting the same post twice is rejected.
	_, err = ps.Retweet(ctx, alice.ID, original.ID)
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	// A retweet of a retweet resolves to the original.
	carol := createTestUser(t, us, "carol", "Carol")
	indirect, err := ps.Retweet(ctx, carol.ID, retweet.ID)
	require.NoError(t, err)
	assert.Equal(t, original.ID, *indirect.RetweetsID)
}

func TestPostValidations(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	ctx := context.Background()

	alice := createTestUser(t, us, "alice", "Alice")

	err := ps.Create(ctx, &domain.Post{UserID: alice.ID, Body: "   "})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	long := make([]rune, 281)
	for i := range long {
		long[i] = 'x'
	}
	err = ps.Create(ctx, &domain.Post{UserID: alice.ID, Body: string(long)})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestLikeIsUniquePerPair(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	ls := NewLikeService(db)
	ctx := context.Background()

	alice := createTestUser(t, us, "alice", "Alice")
	bob := createTestUser(t, us, "bob", "Bob")
	post := &domain.Post{UserID: alice.ID, Body: "likeable"}
	require.NoError(t, ps.Create(ctx, post))

	require.NoError(t, ls.Create(ctx, &domain.Like{UserID: bob.ID, PostID: post.ID}))
	err := ls.Create(ctx, &domain.Like{UserID: bob.ID, PostID: post.ID})
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	require.NoError(t, ls.Delete(ctx, &domain.Like{UserID: bob.ID, PostID: post.ID}))
	err = ls.Delete(ctx, &domain.Like{UserID: bob.ID, PostID: post.ID})
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestHashtagExtractAndQuery(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	hs := NewHashtagService(db)
	ctx := context.Background()

	assert.Equal(t, []string{"go", "gorm"}, ExtractTags("learning #Go with #gorm and #go again"))
	assert.Empty(t, ExtractTags("no tags here"))

	alice := createTestUser(t, us, "alice", "Alice")
	post := &domain.Post{UserID: alice.ID, Body: "shipping #go code"}
	require.NoError(t, ps.Create(ctx, post))
	require.NoError(t, hs.Link(ctx, post, ExtractTags(post.Body)))

	// Linking the same tag from a second post reuses the hashtag row.
	other := &domain.Post{UserID: alice.ID, Body: "more #go"}
	require.NoError(t, ps.Create(ctx, other))
	require.NoError(t, hs.Link(ctx, other, ExtractTags(other.Body)))

	posts, err := hs.PostsByName(ctx, "go")
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	_, err = hs.PostsByName(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestCommentCreateAndList(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db, "test-pepper")
	ps := NewPostService(db)
	cs := NewCommentService(db)
	ctx := context.Background()

	alice := createTestUser(t, us, "alice", "Alice")
	bob := createTestUser(t, us, "bob", "Bob")
	post := &domain.Post{UserID: alice.ID, Body: "discuss"}
	require.NoError(t, ps.Create(ctx, post))

	require.NoError(t, cs.Create(ctx, &domain.Comment{PostID: post.ID, UserID: bob.ID, Body: "first"}))
	require.NoError(t, cs.Create(ctx, &domain.Comment{PostID: post.ID, UserID: alice.ID, Body: "second"}))

	err := cs.Create(ctx, &domain.Comment{PostID: 9999, UserID: bob.ID, Body: "nope"})
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	comments, err := cs.ByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "Bob", comments[0].User.Nickname)
}
