package processor

import (
	"fmt"
	"image"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var channelColors = map[Channel]drawing.Color{
	Red:   {R: 220, G: 30, B: 30, A: 255},
	Green: {R: 30, G: 160, B: 30, A: 255},
	Blue:  {R: 30, G: 60, B: 220, A: 255},
}

type histogramRenderer struct {
	opts Options
}

// NewHistogramRenderer creates a renderer using the given options
func NewHistogramRenderer(opts Options) HistogramRenderer {
	return &histogramRenderer{opts: opts}
}

// Compute bins the image according to the configured channel policy
func (r *histogramRenderer) Compute(img image.Image) (*ChannelHistogram, error) {
	return ComputeHistogram(img, r.opts.ChannelPolicy)
}

// Render draws the three channel distributions as overlaid, semi-transparent
// bar histograms on one plot and writes it as PNG. go-chart keeps no global
// figure state, so nothing has to be released afterwards.
func (r *histogramRenderer) Render(h *ChannelHistogram, w io.Writer) error {
	if h == nil {
		return ErrEmptyImage
	}

	series := make([]chart.Series, 0, len(Channels))
	for _, c := range Channels {
		xs, ys := binSteps(h.Counts[c])
		col := channelColors[c]
		series = append(series, chart.ContinuousSeries{
			Name:    c.String(),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 1,
				FillColor:   col.WithAlpha(r.opts.FillAlpha),
			},
		})
	}

	graph := chart.Chart{
		Title:      r.opts.ChartTitle,
		Width:      r.opts.ChartWidth,
		Height:     r.opts.ChartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  "Intensity",
			Range: &chart.ContinuousRange{Min: 0, Max: Bins},
		},
		YAxis: chart.YAxis{
			Name: "Pixel count",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	return nil
}

// binSteps outlines the counts as bars: bin v spans [v, v+1) at height n,
// closed at both ends on the x axis so the fill stays under the bars.
func binSteps(counts [Bins]int) (xs, ys []float64) {
	xs = make([]float64, 0, 2*Bins+2)
	ys = make([]float64, 0, 2*Bins+2)

	xs, ys = append(xs, 0), append(ys, 0)
	for v, n := range counts {
		xs = append(xs, float64(v), float64(v+1))
		ys = append(ys, float64(n), float64(n))
	}
	xs, ys = append(xs, Bins), append(ys, 0)
	return xs, ys
}
