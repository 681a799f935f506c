package processor

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// Bordered is a padded copy of a source image
type Bordered struct {
	Image       *image.NRGBA
	BorderWidth int
}

// BorderWidth returns floor(width*percent/100) for non-negative inputs.
func BorderWidth(width, percent int) int {
	if width <= 0 || percent <= 0 {
		return 0
	}
	return width * percent / 100
}

type borderCompositor struct {
	opts Options
}

// NewBorderCompositor creates a compositor using the given options
func NewBorderCompositor(opts Options) BorderCompositor {
	return &borderCompositor{opts: opts}
}

// Compose pads img on all four sides with the configured fill. The border
// width is derived from the image width only, so every edge gets the same
// number of pixels.
func (c *borderCompositor) Compose(img image.Image, percent int) (*Bordered, error) {
	if percent < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeBorder, percent)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}

	width, height := bounds.Dx(), bounds.Dy()
	if percent > math.MaxInt/width {
		return nil, fmt.Errorf("%w: %d%% of %dpx", ErrOutputTooLarge, percent, width)
	}
	border := BorderWidth(width, percent)

	outW, outH := width+2*border, height+2*border
	if c.opts.MaxOutputPixels > 0 && outW > c.opts.MaxOutputPixels/outH {
		return nil, fmt.Errorf("%w: %dx%d", ErrOutputTooLarge, outW, outH)
	}

	if border == 0 {
		return &Bordered{Image: imaging.Clone(img)}, nil
	}

	canvas := imaging.New(outW, outH, c.opts.BorderFill)
	return &Bordered{
		Image:       imaging.Paste(canvas, img, image.Pt(border, border)),
		BorderWidth: border,
	}, nil
}

// Encode writes the bordered image as JPEG
func (c *borderCompositor) Encode(w io.Writer, bordered *Bordered) error {
	if bordered == nil || bordered.Image == nil {
		return ErrEmptyImage
	}
	return imaging.Encode(w, bordered.Image, imaging.JPEG, imaging.JPEGQuality(c.opts.JPEGQuality))
}
