package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// convertHEICtoPNG converts a HEIC/HEIF file to PNG in a private temp dir.
// The returned cleanup removes that dir and is non-nil whenever the dir was
// created, including on error.
func convertHEICtoPNG(ctx context.Context, r Runner, converter, in string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "bw-heic-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	var args []string
	switch converter {
	case "heif-convert", "magick":
		args = []string{in, out}
	case "sips":
		args = []string{"-s", "format", "png", in, "--out", out}
	default:
		return "", cleanup, fmt.Errorf("HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips")
	}

	if _, errb, err := r.Run(ctx, converter, args...); err != nil {
		if isMissingBinary(err) {
			return "", cleanup, &dependencyError{hint: converter + " is not installed or not found. Please install it for HEIC support.", err: err}
		}
		return "", cleanup, fmt.Errorf("%s convert failed: %w: %s", converter, err, truncate(string(errb), 512))
	}

	if _, err := os.Stat(out); err != nil {
		return "", cleanup, fmt.Errorf("HEIC conversion produced no output: %w", err)
	}
	return out, cleanup, nil
}
