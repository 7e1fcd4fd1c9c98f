package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// fitzRasterizer renders pages in-process with MuPDF.
type fitzRasterizer struct {
	dpi      int
	maxPages int
}

func (f *fitzRasterizer) Name() string { return "fitz" }

func (f *fitzRasterizer) Rasterize(ctx context.Context, path, outDir string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if f.maxPages > 0 && n > f.maxPages {
		n = f.maxPages
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, float64(f.dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		p := filepath.Join(outDir, fmt.Sprintf("page-%d.png", i+1))
		if err := writePNG(p, img); err != nil {
			return nil, fmt.Errorf("write page %d: %w", i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func writePNG(path string, img image.Image) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(fh, img); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
