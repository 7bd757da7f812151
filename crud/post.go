package crud

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// PostService manages Posts, including the feed query and retweets.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(ctx, post,
		pv.userIdValid,
		pv.retweetedPostExists,
		pv.bodyMinLength,
		pv.bodyMaxLength)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(ctx, post)
}

// Retweet creates a retweet of postID for userID. Retweeting a retweet
// resolves to the original post, so a retweet chain is never deeper than one.
func (pv *postValidator) Retweet(ctx context.Context, userID, postID int) (*domain.Post, error) {
	target, err := pv.postGorm.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	originalID := target.ID
	if target.RetweetsID != nil {
		originalID = *target.RetweetsID
	}
	original, err := pv.postGorm.ByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original.UserID == userID {
		return nil, errs.Errorf(errs.EINVALID, "You cannot retweet your own post.")
	}

	var count int64
	err = pv.db.WithContext(ctx).Model(&domain.Post{}).
		Where("user_id = ? AND retweets_id = ?", userID, originalID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.Errorf(errs.ECONFLICT, "You already retweeted this post.")
	}

	retweet := &domain.Post{UserID: userID, RetweetsID: &originalID}
	if err := pv.postGorm.Create(ctx, retweet); err != nil {
		return nil, err
	}
	return pv.postGorm.ByID(ctx, retweet.ID)
}

// Delete runs validations needed for deleting existing Post database records.
func (pv *postValidator) Delete(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(ctx, post, pv.idValid)
	if err != nil {
		return err
	}
	return pv.postGorm.Delete(ctx, post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(ctx context.Context, post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(ctx context.Context, post *domain.Post) error

// bodyMinLength makes sure that the post's body is not empty...
// ...unless it's a retweet, in which case an empty body is expected.
func (pv *postValidator) bodyMinLength(_ context.Context, post *domain.Post) error {
	if post.RetweetsID == nil && strings.TrimSpace(post.Body) == "" {
		return errs.Errorf(errs.EINVALID, "Post body must not be empty.")
	}
	return nil
}

// bodyMaxLength makes sure that the post's body does not exceed the maximum length.
func (pv *postValidator) bodyMaxLength(_ context.Context, post *domain.Post) error {
	if utf8.RuneCountInString(post.Body) > 280 {
		return errs.Errorf(errs.EINVALID, "Post body max length is 280 characters.")
	}
	return nil
}

// idValid makes sure that the passed in ID of a Post to be deleted is greater than 0.
func (pv *postValidator) idValid(_ context.Context, post *domain.Post) error {
	if post.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid post id.")
	}
	return nil
}

// retweetedPostExists makes sure that the post to be retweeted actually exists.
// This check only runs if the incoming Post object has a RetweetsID set.
func (pv *postValidator) retweetedPostExists(ctx context.Context, post *domain.Post) error {
	if post.RetweetsID == nil {
		return nil
	}
	err := pv.db.WithContext(ctx).First(&domain.Post{}, "id = ?", *post.RetweetsID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The retweeted post does not exist.")
		}
		return err
	}
	return nil
}

// userIdValid ensures that the author id is not empty.
func (pv *postValidator) userIdValid(_ context.Context, post *domain.Post) error {
	if post.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid user id.")
	}
	return nil
}

// ByID retrieves a single Post by ID, along with its author, images, likers
// and, for retweets, the retweeted original.
func (pg *postGorm) ByID(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).
		Preload("User", authorSummary).
		Preload("Images").
		Preload("Likes").
		Preload("Retweet.User", authorSummary).
		First(&post, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	return &post, nil
}

// ByUserID retrieves a user's feed: their original posts only, never
// retweets, each enriched with the author summary, attached images and the
// liker set. Ordered by id so the sequence is stable across calls.
func (pg *postGorm) ByUserID(ctx context.Context, userID int) ([]domain.Post, error) {
	var posts []domain.Post
	err := pg.db.WithContext(ctx).
		Where("user_id = ? AND retweets_id IS NULL", userID).
		Preload("User", authorSummary).
		Preload("Images").
		Preload("Likes").
		Order("id").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Create stores the data from the Post object in a new database record.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Create(post).Error
}

// Delete removes a post record along with its dependent like, comment and
// hashtag-join rows, in one transaction.
func (pg *postGorm) Delete(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_hashtags WHERE post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, "id = ?", post.ID).Error
	})
}

// authorSummary trims a preloaded author down to what clients need.
func authorSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "nickname")
}
