package crud

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) error {
	err := runCommentValFns(ctx, comment,
		cv.userIdValid,
		cv.commentedPostExists,
		cv.bodyMinLength,
		cv.bodyMaxLength)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(ctx, comment)
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runCommentValFns(ctx context.Context, comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(ctx context.Context, comment *domain.Comment) error

// bodyMinLength makes sure that the comment's body is not empty.
func (cv *commentValidator) bodyMinLength(_ context.Context, comment *domain.Comment) error {
	if strings.TrimSpace(comment.Body) == "" {
		return errs.Errorf(errs.EINVALID, "Comment body must not be empty.")
	}
	return nil
}

// bodyMaxLength makes sure that the comment's body does not exceed the maximum length.
func (cv *commentValidator) bodyMaxLength(_ context.Context, comment *domain.Comment) error {
	if utf8.RuneCountInString(comment.Body) > 280 {
		return errs.Errorf(errs.EINVALID, "Comment body max length is 280 characters.")
	}
	return nil
}

// commentedPostExists makes sure that the post being commented on actually exists.
func (cv *commentValidator) commentedPostExists(ctx context.Context, comment *domain.Comment) error {
	err := cv.db.WithContext(ctx).First(&domain.Post{}, "id = ?", comment.PostID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return err
	}
	return nil
}

// userIdValid ensures that the author id is not empty.
func (cv *commentValidator) userIdValid(_ context.Context, comment *domain.Comment) error {
	if comment.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid user id.")
	}
	return nil
}

// Create stores the data from the Comment object in a new database record.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	return cg.db.WithContext(ctx).Create(comment).Error
}

// ByPostID retrieves a post's comments with their author summaries, oldest first.
func (cg *commentGorm) ByPostID(ctx context.Context, postID int) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := cg.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("User", authorSummary).
		Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
