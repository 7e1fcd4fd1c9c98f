package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
)

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	logger := common.LoggerFromContext(ctx, e.logger)

	tmpDir, err := os.MkdirTemp("", "bw-pages-*")
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF}, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	logger.Info("detected pdf, converting to images", "rasterizer", e.rasterizer.Name())
	images, err := e.rasterizer.Rasterize(ctx, path, tmpDir)
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF}, err
	}
	if e.cfg.MaxPages > 0 && len(images) > e.cfg.MaxPages {
		images = images[:e.cfg.MaxPages]
	}
	if len(images) == 0 {
		return ExtractionResult{SourceType: constants.PDF}, fmt.Errorf("no pages rendered")
	}

	var warns []string
	if n, ok := countPages(path); ok && e.cfg.MaxPages == 0 && n != len(images) {
		w := fmt.Sprintf("pdf declares %d page(s) but %d were rendered", n, len(images))
		logger.Warn("page count mismatch", "declared", n, "rendered", len(images))
		warns = append(warns, w)
	}
	logger.Info("converted pdf pages", "pages", len(images))

	texts := make([]string, 0, len(images))
	for i, img := range images {
		txt, err := e.engine.Recognize(ctx, img)
		if err != nil {
			return ExtractionResult{SourceType: constants.PDF, Warnings: warns}, fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		texts = append(texts, txt)
	}

	return ExtractionResult{
		Text:       strings.Join(texts, "\n"),
		Pages:      len(images),
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Engine:     e.engine.Name(),
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
	}, nil
}

// countPages reads the page tree without rendering. The parser is lenient
// about the files it accepts but may panic on badly broken ones.
func countPages(path string) (n int, ok bool) {
	defer func() {
		if recover() != nil {
			n, ok = 0, false
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	return r.NumPage(), true
}

// pdftoppmRasterizer renders pages with poppler's pdftoppm.
type pdftoppmRasterizer struct {
	cfg    Config
	runner Runner
}

func (p *pdftoppmRasterizer) Name() string { return "pdftoppm" }

func (p *pdftoppmRasterizer) Rasterize(ctx context.Context, path, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", fmt.Sprintf("%d", p.cfg.DPI), "-png"}
	if p.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", p.cfg.MaxPages))
	}
	args = append(args, path, prefix)

	_, errb, err := p.runner.Run(ctx, p.cfg.Pdftoppm, args...)
	if err != nil {
		if isMissingBinary(err) {
			return nil, &dependencyError{hint: "Poppler is not installed or not found. Please install Poppler for PDF support.", err: err}
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sortPages(matches)
	return matches, nil
}
