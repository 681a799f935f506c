package processor

import (
	"image/color"
)

// ChannelPolicy decides what happens to images without three colour channels
type ChannelPolicy string

const (
	// ConvertChannels expands gray, alpha and palette images to RGB
	ConvertChannels ChannelPolicy = "convert"
	// RejectChannels fails single-channel images with ErrUnsupportedLayout
	RejectChannels ChannelPolicy = "reject"
)

// Options configures both transforms
type Options struct {
	// Border
	BorderFill      color.Color
	MaxOutputPixels int

	// Encoding
	JPEGQuality int

	// Histogram
	ChannelPolicy ChannelPolicy
	ChartTitle    string
	ChartWidth    int
	ChartHeight   int
	FillAlpha     uint8
}

// DefaultOptions returns the options used by the web form
func DefaultOptions() Options {
	return Options{
		BorderFill:      color.Black,
		MaxOutputPixels: 100_000_000,
		JPEGQuality:     95,
		ChannelPolicy:   ConvertChannels,
		ChartTitle:      "Color distribution (RGB)",
		ChartWidth:      1000, // 10x5 inches at 100 dpi
		ChartHeight:     500,
		FillAlpha:       128,
	}
}

// WithJPEGQuality sets the quality used for the bordered image
func (opts Options) WithJPEGQuality(quality int) Options {
	if quality >= 1 && quality <= 100 {
		opts.JPEGQuality = quality
	}
	return opts
}

// WithChannelPolicy sets the policy for non-RGB inputs
func (opts Options) WithChannelPolicy(policy ChannelPolicy) Options {
	opts.ChannelPolicy = policy
	return opts
}

// WithBorderFill sets the border colour
func (opts Options) WithBorderFill(fill color.Color) Options {
	if fill != nil {
		opts.BorderFill = fill
	}
	return opts
}

// WithChartSize sets the histogram plot size in pixels
func (opts Options) WithChartSize(width, height int) Options {
	if width > 0 && height > 0 {
		opts.ChartWidth = width
		opts.ChartHeight = height
	}
	return opts
}
