package crud

import (
	"context"
	"regexp"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chirper/domain"
	"chirper/errs"
)

// hashtagRegex matches "#tag" tokens in a post body.
var hashtagRegex = regexp.MustCompile(`#([^\s#]+)`)

// ExtractTags returns the distinct, lowercased tag names found in body.
func ExtractTags(body string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// HashtagService manages Hashtags and their links to posts.
// It implements the domain.HashtagService interface.
type HashtagService struct {
	hashtagGorm
}

// hashtagGorm runs CRUD operations on the database using incoming Hashtag data.
type hashtagGorm struct {
	db *gorm.DB
}

// NewHashtagService returns an instance of HashtagService.
func NewHashtagService(db *gorm.DB) *HashtagService {
	return &HashtagService{
		hashtagGorm{
			db: db,
		},
	}
}

// Ensure the HashtagService struct properly implements the domain.HashtagService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.HashtagService = &HashtagService{}

// Link get-or-creates the named tags and attaches them to the post. The
// unique index on the tag name makes the get-or-create idempotent.
func (hg *hashtagGorm) Link(ctx context.Context, post *domain.Post, names []string) error {
	if len(names) == 0 {
		return nil
	}
	var tags []domain.Hashtag
	for _, name := range names {
		tag := domain.Hashtag{Name: name}
		err := hg.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&tag).Error
		if err != nil {
			return err
		}
		// A conflicting insert leaves the id unset, so read it back.
		if tag.ID == 0 {
			if err := hg.db.WithContext(ctx).First(&tag, "name = ?", name).Error; err != nil {
				return err
			}
		}
		tags = append(tags, tag)
	}
	return hg.db.WithContext(ctx).Model(post).Association("Hashtags").Append(tags)
}

// PostsByName returns the posts carrying the named tag, with the same
// enrichment as a user feed.
func (hg *hashtagGorm) PostsByName(ctx context.Context, name string) ([]domain.Post, error) {
	var tag domain.Hashtag
	err := hg.db.WithContext(ctx).First(&tag, "name = ?", strings.ToLower(name)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The hashtag does not exist.")
		}
		return nil, err
	}

	var posts []domain.Post
	err = hg.db.WithContext(ctx).
		Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
		Where("post_hashtags.hashtag_id = ?", tag.ID).
		Preload("User", authorSummary).
		Preload("Images").
		Preload("Likes").
		Order("posts.id").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
