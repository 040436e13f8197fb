package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps the Cloudinary upload API for profile avatars.
type Client interface {
	UploadAvatar(ctx context.Context, file io.Reader, publicID string) (url string, err error)
}

const (
	avatarFolder = "upline/avatars"
	avatarEager  = "q_auto,f_auto,w_400,c_fill"
)

var eagerAsyncFalse = false

// OptimizedAvatarURL returns a delivery URL with the standard avatar
// transformation applied, for existing public IDs.
func OptimizedAvatarURL(cloudName, publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s/%s", cloudName, avatarEager, publicID)
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// UploadAvatar uploads an image with eager optimization and returns its
// secure URL.
func (c *clientImpl) UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     avatarFolder,
		PublicID:   publicID,
		Eager:      avatarEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", err
	}
	if len(result.Eager) > 0 && result.Eager[0].SecureURL != "" {
		return result.Eager[0].SecureURL, nil
	}
	return result.SecureURL, nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cloudName: cloudName, uploader: up}, nil
}
