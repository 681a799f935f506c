package processor

import (
	"image"
	"io"
)

// BorderCompositor pads an image with a solid border sized relative to its width
type BorderCompositor interface {
	Compose(img image.Image, percent int) (*Bordered, error)
	Encode(w io.Writer, bordered *Bordered) error
}

// HistogramRenderer bins the RGB channels of an image and plots them
type HistogramRenderer interface {
	Compute(img image.Image) (*ChannelHistogram, error)
	Render(h *ChannelHistogram, w io.Writer) error
}
