package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const posterFolder = "posters"

var ErrNotHosted = errors.New("url is not hosted on this cloudinary account")

// Uploader stores movie poster images.
type Uploader interface {
	UploadPoster(ctx context.Context, file io.Reader) (string, error)
	DeletePoster(ctx context.Context, posterURL string) error
}

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) UploadPoster(ctx context.Context, file io.Reader) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:    posterFolder,
		PublicID:  fmt.Sprintf("poster_%d", time.Now().UnixNano()),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// DeletePoster destroys the asset behind posterURL. URLs that do not belong to
// the configured cloud return ErrNotHosted.
func (c *Cloudinary) DeletePoster(ctx context.Context, posterURL string) error {
	publicID, err := PublicIDFromURL(posterURL, c.cld.Config.Cloud.CloudName)
	if err != nil {
		return err
	}

	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete poster from Cloudinary: %w", err)
	}
	return nil
}

// PublicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v1740815725/posters/poster_1.png
func PublicIDFromURL(rawURL, cloudName string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if !strings.HasSuffix(u.Host, "cloudinary.com") {
		return "", ErrNotHosted
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] != cloudName {
		return "", ErrNotHosted
	}

	for i, part := range parts {
		if part != "upload" {
			continue
		}
		rest := parts[i+1:]
		if len(rest) > 0 && isVersion(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), nil
	}
	return "", errors.New("failed to extract public ID from URL")
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
