package pipeline

import (
	"context"

	"github.com/joseph-ayodele/bloodwork/internal/ocr"
)

// TextExtractor is stage 1: file -> raw OCR text. *ocr.Extractor implements it.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

var _ TextExtractor = (*ocr.Extractor)(nil)
