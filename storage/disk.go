// Package storage writes uploaded image files to the local filesystem.
// The database keeps one Image row per file; the file itself lives under
// baseDir/<post_id>/<filename> and is served statically.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

type Disk struct {
	baseDir string
}

func NewDisk(baseDir string) *Disk {
	return &Disk{baseDir: baseDir}
}

// Save writes the file under the post's directory and returns the public
// URL path of the stored image.
func (d *Disk) Save(postID int, filename string, file io.Reader) (string, error) {
	dir := filepath.Join(d.baseDir, strconv.Itoa(postID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("err creating image directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("err creating image file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("err writing image file: %w", err)
	}
	return fmt.Sprintf("/%s/%d/%s", filepath.ToSlash(d.baseDir), postID, filename), nil
}

// RemoveAll deletes every stored file belonging to the post.
func (d *Disk) RemoveAll(postID int) error {
	return os.RemoveAll(filepath.Join(d.baseDir, strconv.Itoa(postID)))
}
