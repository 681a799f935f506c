package repository

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 10, 20, 30, 255
	}

	p := filepath.Join(dir, "src.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return p
}

func TestLoad_PNG(t *testing.T) {
	repo := NewFileImageRepository(false)
	p := writePNG(t, t.TempDir(), 12, 7)

	img, meta, err := repo.Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.Format != "png" {
		t.Errorf("Expected png format, got %s", meta.Format)
	}
	if meta.Width != 12 || meta.Height != 7 {
		t.Errorf("Expected 12x7, got %dx%d", meta.Width, meta.Height)
	}
	if meta.ContentLength <= 0 {
		t.Error("Expected positive content length")
	}

	r, g, b, _ := img.At(3, 3).RGBA()
	got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
	if got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("Unexpected pixel %v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	repo := NewFileImageRepository(false)
	dir := t.TempDir()

	if _, _, err := repo.Load(context.Background(), filepath.Join(dir, "missing.png")); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("definitely not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.Load(context.Background(), text); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	// Valid PNG signature followed by garbage
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("\x89PNG\r\n\x1a\n garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.Load(context.Background(), broken); !errors.Is(err, ErrCorruptImage) {
		t.Errorf("Expected ErrCorruptImage, got %v", err)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	repo := NewFileImageRepository(false)
	p := writePNG(t, t.TempDir(), 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := repo.Load(ctx, p); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
