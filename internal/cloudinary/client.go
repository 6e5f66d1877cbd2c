package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/nfrund/goonies/internal/config"
)

// ErrNotConfigured is returned when credentials are missing.
var ErrNotConfigured = errors.New("cloudinary is not configured")

// VersionLookup resolves the current version of a published asset.
type VersionLookup interface {
	AssetVersion(ctx context.Context, publicID string) (int, error)
}

// Uploader stores an image and returns its delivery URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, folder string) (string, error)
}

// Client wraps the Cloudinary SDK. Credentials are read once at construction.
type Client struct {
	cloudName string
	sdk       *cld.Cloudinary
}

// Option configures a Client.
type Option func(*Client)

// WithAPIPrefix points the Admin and Upload APIs at another base URL.
func WithAPIPrefix(prefix string) Option {
	return func(c *Client) {
		c.sdk.Admin.Config.API.UploadPrefix = prefix
		c.sdk.Upload.Config.API.UploadPrefix = prefix
	}
}

// New builds a Client from the configured credentials.
func New(creds config.Cloudinary, opts ...Option) (*Client, error) {
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}
	sdk, err := cld.NewFromParams(creds.CloudName, creds.APIKey, creds.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	c := &Client{cloudName: creds.CloudName, sdk: sdk}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CloudName returns the account the client delivers from.
func (c *Client) CloudName() string {
	return c.cloudName
}

// AssetVersion asks the Admin API for the asset's current version.
func (c *Client) AssetVersion(ctx context.Context, publicID string) (int, error) {
	res, err := c.sdk.Admin.Asset(ctx, admin.AssetParams{PublicID: publicID})
	if err != nil {
		return 0, fmt.Errorf("lookup asset %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return 0, fmt.Errorf("lookup asset %s: %s", publicID, res.Error.Message)
	}
	if res.Version <= 0 {
		return 0, fmt.Errorf("lookup asset %s: no version", publicID)
	}
	return res.Version, nil
}

// Upload stores r as a JPEG in folder with automatic quality.
func (c *Client) Upload(ctx context.Context, r io.Reader, folder string) (string, error) {
	res, err := c.sdk.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         folder,
		Format:         "jpg",
		Transformation: "q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("upload to %s: %w", folder, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload to %s: %s", folder, res.Error.Message)
	}
	return res.SecureURL, nil
}
