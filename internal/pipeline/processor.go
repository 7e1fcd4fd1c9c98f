package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/impute"
	"github.com/joseph-ayodele/bloodwork/internal/ocr"
)

// StageError records which stage failed and the normalized text the stage
// was working on, if text had been produced by then.
type StageError struct {
	Stage string
	Text  string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// PanicError is a recovered panic with the stack at the point of failure.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprint(e.Value) }

// Processor runs one document through load, normalize, extract, impute and
// predict. Stages run in order and the first error ends the run.
type Processor struct {
	logger *slog.Logger
	loader TextExtractor
	assets *Assets
}

func NewProcessor(logger *slog.Logger, loader TextExtractor, assets *Assets) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, loader: loader, assets: assets}
}

// Process turns the document at path into a Result. A panic in any stage is
// returned as a *PanicError wrapped in a GENERIC_FAILURE.
func (p *Processor) Process(ctx context.Context, path string) (res Result, err error) {
	if common.RunIDFromContext(ctx) == "" {
		ctx = common.WithRunID(ctx, "")
	}
	logger := common.LoggerFromContext(ctx, p.logger)
	ctx = common.WithLogger(ctx, logger)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("processor panic", "panic", r)
			res = Result{}
			err = common.NewAppError(common.KindGenericFailure, "unexpected failure", &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	// 1) load + OCR
	raw, err := p.loader.Extract(ctx, path)
	if err != nil {
		logger.Error("processor.ocr.failed", "path", path, "err", err)
		return Result{}, &StageError{Stage: "load", Err: err}
	}
	for _, w := range raw.Warnings {
		logger.Warn("ocr warning", "warning", w)
	}

	// 2) normalize units
	text := ocr.NormalizeUnits(raw.Text)

	// 3) extract fields in model order
	vec := p.assets.Extractor.Extract(ctx, text, p.assets.Features)
	logger.Info("fields extracted", "found", len(vec)-len(vec.Missing()), "missing", len(vec.Missing()))

	// 4) impute
	completed, err := impute.Impute(vec, p.assets.Medians)
	if err != nil {
		logger.Error("processor.impute.failed", "err", err)
		return Result{}, &StageError{Stage: "impute", Text: text, Err: err}
	}
	for _, f := range completed.Imputed {
		m, _ := completed.Value(f)
		logger.Warn("missing value, using median", "feature", f, "median", m)
	}

	// 5) predict
	pred, err := p.assets.Predictor.Predict(ctx, completed.Values)
	if err != nil {
		logger.Error("processor.predict.failed", "err", err)
		return Result{}, &StageError{Stage: "predict", Text: text, Err: err}
	}

	res = Assemble(pred, completed)
	logger.Info("processed document",
		"path", path,
		"prediction", res.Prediction,
		"confidence", res.Confidence,
		"imputed", len(res.ImputedFields),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
