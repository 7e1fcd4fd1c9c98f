package ocr

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
)

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

func (e *Extractor) extractImage(ctx context.Context, path string) (ExtractionResult, error) {
	if constants.IsHEIC(filepath.Ext(path)) && e.cfg.HeicConverter != "" {
		png, cleanup, err := convertHEICtoPNG(ctx, e.runner, e.cfg.HeicConverter, path)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			return ExtractionResult{SourceType: constants.IMAGE}, err
		}
		path = png
	}
	if constants.IsEngineNative(filepath.Ext(path)) {
		common.LoggerFromContext(ctx, e.logger).Debug("skipping decode check", "path", path)
	} else if err := validateImage(path); err != nil {
		return ExtractionResult{SourceType: constants.IMAGE}, err
	}
	txt, err := e.engine.Recognize(ctx, path)
	if err != nil {
		return ExtractionResult{SourceType: constants.IMAGE}, err
	}
	return ExtractionResult{
		Text:       txt,
		Pages:      1,
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Engine:     e.engine.Name(),
		Language:   e.cfg.TesseractLang,
	}, nil
}

// validateImage checks that the file decodes as one of the registered image
// formats before it is handed to the OCR engine.
func validateImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return common.NewAppError(common.KindUnsupportedFormat,
			"Unrecognized image format. Ensure it is a valid image or PDF.", err)
	}
	return nil
}

// tesseractEngine shells out to the tesseract CLI.
type tesseractEngine struct {
	cfg    Config
	runner Runner
}

func (t *tesseractEngine) Name() string { return "tesseract" }

func (t *tesseractEngine) Recognize(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		if isMissingBinary(err) {
			return "", &dependencyError{hint: "Tesseract is not installed or not found. Please install Tesseract OCR.", err: err}
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}

	// minor cleanup of obvious line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
