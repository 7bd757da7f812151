package crud

import (
	"context"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Create runs validations needed for creating new Like database records.
func (lv *likeValidator) Create(ctx context.Context, like *domain.Like) error {
	err := runLikeValFns(ctx, like,
		lv.userIdValid,
		lv.likedPostExists,
		lv.notAlreadyLiked)
	if err != nil {
		return err
	}
	return lv.likeGorm.Create(ctx, like)
}

// Delete runs validations needed for deleting existing Like database records.
func (lv *likeValidator) Delete(ctx context.Context, like *domain.Like) error {
	err := runLikeValFns(ctx, like, lv.likeExists)
	if err != nil {
		return err
	}
	return lv.likeGorm.Delete(ctx, like)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed in Like object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runLikeValFns(ctx context.Context, like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like object and returns an error.
type likeValFn func(ctx context.Context, like *domain.Like) error

// likeExists makes sure that the Like record to be deleted actually exists.
func (lv *likeValidator) likeExists(ctx context.Context, like *domain.Like) error {
	err := lv.db.WithContext(ctx).
		First(&domain.Like{}, "user_id = ? AND post_id = ?", like.UserID, like.PostID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "You don't like this post.")
		}
		return err
	}
	return nil
}

// likedPostExists makes sure that the post to be liked actually exists.
func (lv *likeValidator) likedPostExists(ctx context.Context, like *domain.Like) error {
	err := lv.db.WithContext(ctx).First(&domain.Post{}, "id = ?", like.PostID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return err
	}
	return nil
}

// notAlreadyLiked makes sure the user has not liked this post before.
func (lv *likeValidator) notAlreadyLiked(ctx context.Context, like *domain.Like) error {
	err := lv.db.WithContext(ctx).
		First(&domain.Like{}, "user_id = ? AND post_id = ?", like.UserID, like.PostID).Error
	if err == nil {
		return errs.Errorf(errs.ECONFLICT, "You already like this post.")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}

// userIdValid ensures that the liker id is not empty.
func (lv *likeValidator) userIdValid(_ context.Context, like *domain.Like) error {
	if like.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid user id.")
	}
	return nil
}

// Create stores the data from the Like object in a new database record.
func (lg *likeGorm) Create(ctx context.Context, like *domain.Like) error {
	return lg.db.WithContext(ctx).Create(like).Error
}

// Delete removes the Like record matching the (user, post) pair.
func (lg *likeGorm) Delete(ctx context.Context, like *domain.Like) error {
	return lg.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", like.UserID, like.PostID).
		Delete(&domain.Like{}).Error
}
