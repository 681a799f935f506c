package processor

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"
)

func TestRender_PNG(t *testing.T) {
	renderer := NewHistogramRenderer(DefaultOptions())

	h, err := renderer.Compute(createGradientImage(64, 32))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	var buf bytes.Buffer
	if err := renderer.Render(h, &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if cfg.Width != 1000 || cfg.Height != 500 {
		t.Errorf("Expected 1000x500 plot, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRender_Reproducible(t *testing.T) {
	renderer := NewHistogramRenderer(DefaultOptions().WithChartSize(400, 200))
	h, err := renderer.Compute(createTestImage(10, 10, color.White))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	var first, second bytes.Buffer
	if err := renderer.Render(h, &first); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := renderer.Render(h, &second); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("Expected identical plots for identical input")
	}
}

func TestRender_Nil(t *testing.T) {
	renderer := NewHistogramRenderer(DefaultOptions())
	if err := renderer.Render(nil, &bytes.Buffer{}); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestCompute_UsesPolicy(t *testing.T) {
	renderer := NewHistogramRenderer(DefaultOptions().WithChannelPolicy(RejectChannels))
	gray := createGrayImage(3, 3)
	if _, err := renderer.Compute(gray); !errors.Is(err, ErrUnsupportedLayout) {
		t.Errorf("Expected ErrUnsupportedLayout, got %v", err)
	}
}

func TestBinSteps(t *testing.T) {
	var counts [Bins]int
	counts[0] = 3
	counts[255] = 7

	xs, ys := binSteps(counts)
	if len(xs) != 2*Bins+2 || len(ys) != len(xs) {
		t.Fatalf("Expected %d points, got %d/%d", 2*Bins+2, len(xs), len(ys))
	}

	// closed at the axis on both ends
	if xs[0] != 0 || ys[0] != 0 || xs[len(xs)-1] != Bins || ys[len(ys)-1] != 0 {
		t.Errorf("Expected outline to start and end on the x axis")
	}

	// each bin is a flat top spanning one intensity step
	for v := 0; v < Bins; v++ {
		i := 1 + 2*v
		if xs[i] != float64(v) || xs[i+1] != float64(v+1) {
			t.Fatalf("Bin %d spans [%v, %v], expected [%d, %d]", v, xs[i], xs[i+1], v, v+1)
		}
		if ys[i] != ys[i+1] || ys[i] != float64(counts[v]) {
			t.Fatalf("Bin %d heights %v/%v, expected %d", v, ys[i], ys[i+1], counts[v])
		}
	}
}
