package repository

import (
	"context"
	"image"

	"go-image-framer/pkg/models"
)

// ImageRepository defines the interface for loading stored uploads
type ImageRepository interface {
	// Load decodes the image stored at path
	Load(ctx context.Context, path string) (image.Image, *models.ImageMetadata, error)
}
