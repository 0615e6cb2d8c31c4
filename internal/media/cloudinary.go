package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrUploadRejected indicates the store accepted the request but did
// not return a usable URL.
var ErrUploadRejected = errors.New("media store rejected upload")

// CloudinaryStore implements Store backed by Cloudinary.
// Objects are uploaded at the account root so the public ID is exactly
// the last URL path segment, matching PublicIDFromURL.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary creates a CloudinaryStore from a cloudinary:// URL.
func NewCloudinary(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld}, nil
}

// Upload pushes image bytes to Cloudinary and returns the delivery URL.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload %q: %w", filename, err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload %q: %w", filename, ErrUploadRejected)
	}

	return resp.SecureURL, nil
}

// Delete destroys an object by public ID. A missing object is not an
// error; deletion is idempotent cleanup.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %q: %w", publicID, err)
	}

	return nil
}
