package model

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
)

// Classifier is a trained model. Predict returns the encoded class and,
// when the model supports it, one probability per class; a nil proba means
// probabilities are not available.
type Classifier interface {
	FeatureNames() []constants.Feature
	Predict(ctx context.Context, x []float64) (class int, proba []float64, err error)
}

// Prediction is the decoded classifier output.
type Prediction struct {
	Label         string
	Class         int
	Confidence    float64 // percent, two decimals
	Probabilities []float64
}

// LoadConfig selects and configures the classifier backend.
type LoadConfig struct {
	ModelPath string
	ONNX      ONNXConfig
}

// LoadClassifier picks the backend from the model file extension: ".onnx"
// runs through onnxruntime, anything else is read as a JSON forest export.
func LoadClassifier(cfg LoadConfig, logger *slog.Logger) (Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.EqualFold(filepath.Ext(cfg.ModelPath), ".onnx") {
		clf, err := LoadONNX(cfg.ModelPath, constants.DefaultFeatures(), cfg.ONNX)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded onnx classifier", "path", cfg.ModelPath, "features", len(clf.features))
		return clf, nil
	}
	f, err := LoadForest(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded forest classifier", "path", cfg.ModelPath, "trees", len(f.trees), "features", len(f.features), "classes", f.Classes())
	return f, nil
}

// Predictor pairs a classifier with its label encoder.
type Predictor struct {
	clf    Classifier
	enc    *LabelEncoder
	logger *slog.Logger
}

// NewPredictor checks that the encoder can name every class the classifier
// is known to produce.
func NewPredictor(clf Classifier, enc *LabelEncoder, logger *slog.Logger) (*Predictor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if clf == nil || enc == nil {
		return nil, common.NewAppError(common.KindArtifactMissing, "Model or label encoder file missing.", nil)
	}
	if f, ok := clf.(interface{ Classes() int }); ok && f.Classes() > enc.Len() {
		return nil, common.NewAppError(common.KindArtifactMissing,
			fmt.Sprintf("Failed to load model or encoder: model has %d classes, encoder %d", f.Classes(), enc.Len()), nil)
	}
	return &Predictor{clf: clf, enc: enc, logger: logger}, nil
}

// FeatureNames is the order in which Predict expects its input.
func (p *Predictor) FeatureNames() []constants.Feature { return p.clf.FeatureNames() }

// Predict classifies one complete feature vector.
func (p *Predictor) Predict(ctx context.Context, x []float64) (Prediction, error) {
	logger := common.LoggerFromContext(ctx, p.logger)

	class, proba, err := p.clf.Predict(ctx, x)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	label, err := p.enc.Decode(class)
	if err != nil {
		return Prediction{}, fmt.Errorf("decode label: %w", err)
	}
	pred := Prediction{
		Label:         label,
		Class:         class,
		Confidence:    Confidence(proba),
		Probabilities: proba,
	}
	logger.Info("prediction", "label", pred.Label, "confidence", pred.Confidence)
	return pred, nil
}

// Close releases classifier resources, if any.
func (p *Predictor) Close() error {
	if c, ok := p.clf.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Confidence is the highest class probability as a percentage rounded to two
// decimals, or 100 when the classifier gives no probabilities. The result is
// always within [0, 100].
func Confidence(proba []float64) float64 {
	if len(proba) == 0 {
		return 100
	}
	best := math.Inf(-1)
	for _, p := range proba {
		if p > best {
			best = p
		}
	}
	if math.IsNaN(best) || math.IsInf(best, 0) {
		return 0
	}
	c := math.Round(best*100*100) / 100
	return math.Max(0, math.Min(100, c))
}
