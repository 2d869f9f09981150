package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // chromedp screenshots decode as PNG
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/image/draw"
)

// ChromeRasterizer renders the first page of a PDF with headless
// Chrome's built-in viewer and captures it as a bounded JPEG preview.
type ChromeRasterizer struct {
	maxDimension int
	jpegQuality  int
}

func NewChromeRasterizer(maxDimension, jpegQuality int) *ChromeRasterizer {
	if maxDimension <= 0 {
		maxDimension = 1200
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 80
	}
	return &ChromeRasterizer{maxDimension: maxDimension, jpegQuality: jpegQuality}
}

func (r *ChromeRasterizer) Rasterize(ctx context.Context, pdf []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "resume-raster-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "resume.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if p := os.Getenv("CHROME_PATH"); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, 60*time.Second)
	defer cancelRun()

	var shot []byte
	err = chromedp.Run(runCtx,
		chromedp.EmulateViewport(850, 1100),
		chromedp.Navigate("file://"+pdfPath),
		// The PDF viewer has no DOM readiness signal; give it a beat.
		chromedp.Sleep(1*time.Second),
		chromedp.FullScreenshot(&shot, 90),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}

	return r.shrink(shot)
}

// shrink downscales the captured page to the configured bound and
// re-encodes it as JPEG for the preview.
func (r *ChromeRasterizer) shrink(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	newWidth, newHeight := width, height
	if width > r.maxDimension || height > r.maxDimension {
		if width > height {
			newWidth = r.maxDimension
			newHeight = height * r.maxDimension / width
		} else {
			newHeight = r.maxDimension
			newWidth = width * r.maxDimension / height
		}
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, resized, &jpeg.Options{Quality: r.jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return out.Bytes(), nil
}
