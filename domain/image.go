package domain

import (
	"context"
	"mime/multipart"
	"time"
)

const (
	// ImagesBaseDir determines the storage location of uploaded image files.
	ImagesBaseDir = "images"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
	// MaxImagesPerPost limits how many images a single post can carry.
	MaxImagesPerPost = 4
)

// Image represents an image attached to a post. The database row holds the
// public URL and the owning post; the actual file lives on disk under
// ImagesBaseDir/<post_id>/<filename>. The upload-only fields are populated
// from the multipart form and never persisted.
type Image struct {
	ID     int    `json:"id"`
	PostID int    `json:"post_id" gorm:"notNull;index"`
	URL    string `json:"url"`

	File        multipart.File `json:"-" gorm:"-"`
	Filename    string         `json:"-" gorm:"-"`
	ContentType string         `json:"-" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImageService is a set of methods to manipulate and work with the Image
// model and the respective image files.
type ImageService interface {
	Create(ctx context.Context, img *Image) error
	ByPostID(ctx context.Context, postID int) ([]Image, error)
	DeleteByPostID(ctx context.Context, postID int) error
}
