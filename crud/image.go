package crud

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
	"chirper/storage"
)

// ImageService manages Images: validation of uploads, the file on disk and
// the database row pointing at it. It implements the domain.ImageService interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image uploads.
// On success, it passes the data on to imageStore.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	imageStore
}

// imageStore writes the validated file to disk and records it in the database.
type imageStore struct {
	db   *gorm.DB
	disk *storage.Disk
}

// NewImageService returns an instance of ImageService.
func NewImageService(db *gorm.DB, disk *storage.Disk) *ImageService {
	return &ImageService{
		imageValidator{
			imageStore{
				db:   db,
				disk: disk,
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageService = &ImageService{}

// Create runs validations needed for storing an uploaded image.
func (iv *imageValidator) Create(ctx context.Context, img *domain.Image) error {
	err := runImageValFns(img,
		iv.belowMaxSize,
		iv.contentTypeValid,
		iv.filenameRandomize)
	if err != nil {
		return err
	}
	return iv.imageStore.Create(ctx, img)
}

// runImageValFns runs any number of functions of type imageValFn on the passed in Image object.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// An imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

// belowMaxSize makes sure that the image to be uploaded does not exceed MaxUploadSize.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	if size > domain.MaxUploadSize {
		return errs.Errorf(errs.EINVALID,
			"Image %s exceeds upload size limit of %dMB.", img.Filename, domain.MaxUploadSize/1000000)
	}
	return nil
}

// contentTypeValid makes sure that the image to be uploaded is a valid jpeg or png file.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	if _, err := img.File.Read(buffer); err != nil {
		return err
	}
	if err := resetFilePointer(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.Errorf(errs.EINVALID,
			"Image %s invalid content-type, must be image/jpeg or image/png.", img.Filename)
	}
	img.ContentType = contentType
	return nil
}

// filenameRandomize replaces the client-chosen filename with a random one,
// keeping only the extension. That sidesteps collisions and path tricks in
// one go.
func (iv *imageValidator) filenameRandomize(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	switch img.ContentType {
	case "image/jpeg":
		if ext != ".jpg" && ext != ".jpeg" {
			ext = ".jpg"
		}
	case "image/png":
		ext = ".png"
	}
	img.Filename = uuid.NewString() + ext
	return nil
}

// resetFilePointer rewinds the upload so the next reader starts at byte zero.
func resetFilePointer(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

// Create writes the file to disk and stores the Image row.
func (is *imageStore) Create(ctx context.Context, img *domain.Image) error {
	url, err := is.disk.Save(img.PostID, img.Filename, img.File)
	if err != nil {
		return err
	}
	img.URL = url
	return is.db.WithContext(ctx).Create(img).Error
}

// ByPostID retrieves a post's Image rows.
func (is *imageStore) ByPostID(ctx context.Context, postID int) ([]domain.Image, error) {
	var images []domain.Image
	err := is.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// DeleteByPostID removes a post's Image rows and stored files.
func (is *imageStore) DeleteByPostID(ctx context.Context, postID int) error {
	if err := is.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&domain.Image{}).Error; err != nil {
		return err
	}
	return is.disk.RemoveAll(postID)
}
