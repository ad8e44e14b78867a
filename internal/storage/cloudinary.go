package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	uploadTimeout = 30 * time.Second
	deleteTimeout = 10 * time.Second
)

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (BlobStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary client: %w", err)
	}

	return &cloudinaryStorage{cld: cld}, nil
}

func (c *cloudinaryStorage) Upload(ctx context.Context, folder, name string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	result, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		PublicID:     name,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s/%s: %w", folder, name, err)
	}

	return result.SecureURL, nil
}

func (c *cloudinaryStorage) Delete(ctx context.Context, url string) error {
	publicID, resourceType, err := parseDeliveryURL(url)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	_, err = c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}

	return nil
}

// parseDeliveryURL recovers the public ID and resource type from a delivery
// URL of the form
// https://res.cloudinary.com/<cloud>/<type>/upload/v<n>/<folder>/<id>.<ext>.
func parseDeliveryURL(url string) (publicID, resourceType string, err error) {
	idx := strings.Index(url, "/upload/")
	if idx < 0 {
		return "", "", fmt.Errorf("not a storage delivery URL: %s", url)
	}

	before := strings.TrimSuffix(url[:idx], "/")
	resourceType = before[strings.LastIndex(before, "/")+1:]

	rest := url[idx+len("/upload/"):]
	if slash := strings.IndexByte(rest, '/'); slash > 0 {
		// version segments look like v1712345678
		seg := rest[:slash]
		if len(seg) > 1 && seg[0] == 'v' && isDigits(seg[1:]) {
			rest = rest[slash+1:]
		}
	}

	publicID = rest
	if resourceType != "raw" {
		publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	}
	if publicID == "" {
		return "", "", fmt.Errorf("no public id in URL: %s", url)
	}

	return publicID, resourceType, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
