package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
)

type Config struct {
	Engine     string // registered engine name; if empty -> "tesseract"
	Rasterizer string // registered rasterizer name; if empty -> "pdftoppm"
	Pdftoppm   string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract  string // binary name or absolute path; if empty -> "tesseract"
	// HeicConverter converts HEIC/HEIF images to PNG: "magick" | "heif-convert" | "sips".
	// Empty leaves HEIC unsupported.
	HeicConverter string

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for PDFs, default 300
	PSM           int // 0 = tesseract default
	MaxPages      int // 0 = no limit
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.Format
	Method     string // "pdf-ocr" | "image-ocr"
	Engine     string
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// Extractor is the document loader: it classifies the input, rasterizes PDFs
// and runs OCR. It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	cfg        Config
	runner     Runner
	engine     Engine
	rasterizer Rasterizer
	logger     *slog.Logger
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithRunner replaces the exec runner used by the CLI-backed engines.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithEngine overrides the configured OCR engine.
func WithEngine(engine Engine) Option {
	return func(e *Extractor) { e.engine = engine }
}

// WithRasterizer overrides the configured PDF rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(e *Extractor) { e.rasterizer = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Engine == "" {
		cfg.Engine = "tesseract"
	}
	if cfg.Rasterizer == "" {
		cfg.Rasterizer = "pdftoppm"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}

	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.engine == nil {
		f, err := lookupEngine(cfg.Engine)
		if err != nil {
			return nil, err
		}
		e.engine = f(cfg, e.runner, logger)
	}
	if e.rasterizer == nil {
		f, err := lookupRasterizer(cfg.Rasterizer)
		if err != nil {
			return nil, err
		}
		e.rasterizer = f(cfg, e.runner, logger)
	}
	return e, nil
}

// Extract loads the document at path and returns its OCR text. PDF pages are
// joined with a newline in page order.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, e.logger)

	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		logger.Error("input not found", "path", path, "error", err)
		return ExtractionResult{}, common.NewAppError(common.KindInputNotFound, "File not found.", err)
	}

	format := Detect(path)
	logger.Info("file received", "path", path, "format", format, "engine", e.engine.Name())

	var res ExtractionResult
	switch format {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	default:
		err = common.NewAppError(common.KindUnsupportedFormat, fmt.Sprintf("unsupported document kind %q", format), nil)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, e.classify(err)
	}
	logger.Info("text extracted",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// classify turns raw loader errors into the pipeline taxonomy. Errors that
// already carry a kind pass through untouched.
func (e *Extractor) classify(err error) error {
	var ae *common.AppError
	if errors.As(err, &ae) {
		return err
	}
	var de *dependencyError
	if errors.As(err, &de) {
		return common.NewAppError(common.KindMissingDependency, "Failed to extract text from file: "+de.hint, de.err)
	}
	return common.NewAppError(common.KindGenericFailure, "Failed to extract text from file", err)
}

// dependencyError marks a failure caused by a missing external tool.
type dependencyError struct {
	hint string
	err  error
}

func (d *dependencyError) Error() string { return d.hint + ": " + d.err.Error() }
func (d *dependencyError) Unwrap() error { return d.err }
