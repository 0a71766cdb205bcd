package photos

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/jucampus/registrar-api/pkg/config"
)

// Uploader stores a student photo and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, studentID string, content io.Reader) (string, error)
}

// CloudinaryUploader pushes photos into a Cloudinary folder. The public ID
// is the student id, so re-uploads replace the previous photo.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader builds an uploader from the configured account.
func NewCloudinaryUploader(cfg config.CloudinaryConfig) (*CloudinaryUploader, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	folder := cfg.Folder
	if folder == "" {
		folder = "student_photos"
	}
	return &CloudinaryUploader{client: client, folder: folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, studentID string, content io.Reader) (string, error) {
	overwrite := true
	res, err := u.client.Upload.Upload(ctx, content, uploader.UploadParams{
		PublicID:  studentID,
		Folder:    u.folder,
		Overwrite: &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("upload photo for %s: %w", studentID, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload photo for %s: %s", studentID, res.Error.Message)
	}
	return res.SecureURL, nil
}
