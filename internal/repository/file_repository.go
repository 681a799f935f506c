package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-image-framer/pkg/models"
)

// FileImageRepository implements ImageRepository on the local filesystem
type FileImageRepository struct {
	autoOrient bool
}

// NewFileImageRepository creates a filesystem-backed repository.
// With autoOrient set, JPEG EXIF orientation is applied after decoding.
func NewFileImageRepository(autoOrient bool) ImageRepository {
	return &FileImageRepository{autoOrient: autoOrient}
}

// Load decodes the image at path and reports its format and dimensions
func (r *FileImageRepository) Load(ctx context.Context, path string) (image.Image, *models.ImageMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat image: %w", err)
	}

	// Sniff the format first so an unknown file is told apart from a broken one
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("rewind image: %w", err)
	}

	img, err := imaging.Decode(f, imaging.AutoOrientation(r.autoOrient))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	bounds := img.Bounds()
	return img, &models.ImageMetadata{
		Path:          path,
		ContentLength: info.Size(),
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
	}, nil
}
