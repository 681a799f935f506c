package processor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"

	"go-image-framer/pkg/models"
)

// Bins is the number of buckets per channel, one per 8-bit intensity
const Bins = 256

// Channel identifies one colour plane
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Channels lists the planes in plotting order
var Channels = [...]Channel{Red, Green, Blue}

func (c Channel) String() string {
	switch c {
	case Red:
		return "Red"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// ChannelHistogram holds per-channel frequency counts of an image
type ChannelHistogram struct {
	Width  int
	Height int
	Counts [3][Bins]int
}

// Series returns a copy of the bucket counts for a channel
func (h *ChannelHistogram) Series(c Channel) []int {
	out := make([]int, Bins)
	copy(out, h.Counts[c][:])
	return out
}

// Total sums the buckets of a channel; it equals Width*Height
func (h *ChannelHistogram) Total(c Channel) int {
	total := 0
	for _, n := range h.Counts[c] {
		total += n
	}
	return total
}

// Summaries computes weighted statistics for each channel
func (h *ChannelHistogram) Summaries() []models.ChannelSummary {
	intensities := intensityAxis()
	summaries := make([]models.ChannelSummary, 0, len(Channels))

	for _, c := range Channels {
		weights := make([]float64, Bins)
		lo, hi := -1, -1
		for v, n := range h.Counts[c] {
			weights[v] = float64(n)
			if n > 0 {
				if lo < 0 {
					lo = v
				}
				hi = v
			}
		}

		summary := models.ChannelSummary{
			Name:   c.String(),
			Min:    lo,
			Max:    hi,
			Pixels: h.Total(c),
		}
		switch {
		case summary.Pixels > 1:
			summary.Mean, summary.StdDev = stat.MeanStdDev(intensities, weights)
		case summary.Pixels == 1:
			summary.Mean = float64(lo)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// ComputeHistogram counts the red, green and blue values of every pixel.
// Images are normalised to non-premultiplied RGBA first; alpha is ignored.
func ComputeHistogram(img image.Image, policy ChannelPolicy) (*ChannelHistogram, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}
	if policy == RejectChannels && !hasColorChannels(img) {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedLayout, img)
	}

	src := imaging.Clone(img)
	h := &ChannelHistogram{Width: bounds.Dx(), Height: bounds.Dy()}

	rowLen := h.Width * 4
	for y := 0; y < h.Height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+rowLen]
		for i := 0; i < rowLen; i += 4 {
			h.Counts[Red][row[i]]++
			h.Counts[Green][row[i+1]]++
			h.Counts[Blue][row[i+2]]++
		}
	}
	return h, nil
}

// hasColorChannels reports whether img carries distinct colour planes.
// Palette entries are full colours, so paletted images qualify.
func hasColorChannels(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return false
	default:
		return true
	}
}

func intensityAxis() []float64 {
	xs := make([]float64, Bins)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
