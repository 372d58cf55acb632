package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/lithammer/shortuuid/v4"
)

// CloudinaryStore stores images in Cloudinary, addressed by public ID.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore builds a store from a cloudinary:// credential URL.
func NewCloudinaryStore(credentialURL, folder string) (*CloudinaryStore, error) {
	client, err := cloudinary.NewFromURL(credentialURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary client: %v", err)
	}

	return &CloudinaryStore{
		client: client,
		folder: folder,
	}, nil
}

// Upload sends the image bytes to Cloudinary and returns the secure URL
// together with the public ID used for later deletion.
func (s *CloudinaryStore) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	publicID := base + "-" + shortuuid.New()

	resp, err := s.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %v", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload rejected: %s", resp.Error.Message)
	}

	return &UploadResult{
		URL: resp.SecureURL,
		Key: resp.PublicID,
	}, nil
}

// Delete destroys the stored image by its public ID.
func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %v", err)
	}
	// Cloudinary reports "not found" as a result string, not an error.
	// A missing blob is fine for our callers: the reference is stale.
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy rejected: %s", resp.Result)
	}
	return nil
}
