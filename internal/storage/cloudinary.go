package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores each blob under the public id "<bucket>/<id>". The
// public id is set explicitly so delivery URLs do not depend on the
// account's folder mode.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) CreateFile(ctx context.Context, bucket, _ string, r io.Reader) (string, error) {
	id := newFileID()
	publicID := objectKey(bucket, id)
	overwrite := false
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID,
		AssetFolder:  bucket,
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("failed to upload to Cloudinary: %s", res.Error.Message)
	}
	if res.PublicID != publicID {
		return "", fmt.Errorf("cloudinary stored %q, expected public id %q", res.PublicID, publicID)
	}
	return id, nil
}

// LinkURL builds the delivery URL without contacting Cloudinary.
func (c *Cloudinary) LinkURL(_ context.Context, bucket, id string) (string, error) {
	img, err := c.cld.Image(objectKey(bucket, id))
	if err != nil {
		return "", fmt.Errorf("failed to build Cloudinary asset: %w", err)
	}
	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("failed to build Cloudinary URL: %w", err)
	}
	return url, nil
}

// FileViewURL looks the asset up through the Admin API and returns its
// secure URL.
func (c *Cloudinary) FileViewURL(ctx context.Context, bucket, id string) (string, error) {
	res, err := c.cld.Admin.Asset(ctx, admin.AssetParams{
		AssetType:    api.Image,
		DeliveryType: api.Upload,
		PublicID:     objectKey(bucket, id),
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up Cloudinary asset: %w", err)
	}
	if msg := res.Error.Message; msg != "" {
		if strings.Contains(strings.ToLower(msg), "not found") {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to look up Cloudinary asset: %s", msg)
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	return c.LinkURL(ctx, bucket, id)
}
