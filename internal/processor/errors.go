package processor

import "errors"

var (
	// ErrEmptyImage indicates the source raster has no pixels
	ErrEmptyImage = errors.New("image has no pixels")

	// ErrNegativeBorder indicates a border percentage below zero
	ErrNegativeBorder = errors.New("border percentage must not be negative")

	// ErrOutputTooLarge indicates the bordered canvas would exceed the pixel cap
	ErrOutputTooLarge = errors.New("bordered image would be too large")

	// ErrUnsupportedLayout indicates an image without red, green and blue channels
	ErrUnsupportedLayout = errors.New("image does not have red, green and blue channels")
)
