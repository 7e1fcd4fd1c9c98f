package pipeline

import (
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/fields"
	"github.com/joseph-ayodele/bloodwork/internal/impute"
	"github.com/joseph-ayodele/bloodwork/internal/model"
	"github.com/joseph-ayodele/bloodwork/internal/ocr"
)

// Assets is everything a request reads but never writes: the alias table, the
// median table and the trained artifacts. It is built once at startup and
// shared by all requests.
type Assets struct {
	Features  []constants.Feature
	Extractor *fields.Extractor
	Medians   impute.MedianTable
	Predictor *model.Predictor
}

// NewAssets wires prebuilt components. The feature order is taken from the
// predictor, since the trained model defines it.
func NewAssets(aliases fields.AliasSet, medians impute.MedianTable, predictor *model.Predictor, logger *slog.Logger) (*Assets, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if predictor == nil {
		return nil, common.NewAppError(common.KindArtifactMissing, "Model or label encoder file missing.", errors.New("no predictor"))
	}
	ext, err := fields.NewExtractor(aliases, logger)
	if err != nil {
		return nil, common.WrapError(err, "build field extractor")
	}
	features := predictor.FeatureNames()
	for _, f := range features {
		if _, ok := aliases.Lookup(f); !ok {
			logger.Warn("model feature has no aliases; matching its literal name", "feature", f)
		}
	}
	if medians == nil {
		medians = impute.MedianTable{}
	}
	return &Assets{Features: features, Extractor: ext, Medians: medians, Predictor: predictor}, nil
}

// LoadAssets loads the classifier, label encoder and reference dataset named
// by cfg. Missing artifacts fail with ARTIFACT_MISSING; a missing dataset only
// disables imputation.
func LoadAssets(cfg *common.Config, logger *slog.Logger) (*Assets, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clf, err := model.LoadClassifier(model.LoadConfig{
		ModelPath: cfg.Model.ModelPath,
		ONNX: model.ONNXConfig{
			LibraryPath: cfg.Model.OnnxRuntimeLib,
			InputName:   cfg.Model.OnnxInputName,
			LabelOutput: cfg.Model.OnnxLabelOutput,
			ProbaOutput: cfg.Model.OnnxProbaOutput,
		},
	}, logger)
	if err != nil {
		return nil, err
	}
	enc, err := model.LoadLabelEncoder(cfg.Model.LabelEncoderPath)
	if err != nil {
		return nil, err
	}
	predictor, err := model.NewPredictor(clf, enc, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("model and label encoder loaded", "classes", enc.Len())

	medians := impute.ComputeMedians(cfg.Dataset.Path, predictor.FeatureNames(), logger)
	return NewAssets(fields.DefaultAliases(), medians, predictor, logger)
}

// Close releases model resources.
func (a *Assets) Close() error {
	if a == nil || a.Predictor == nil {
		return nil
	}
	return a.Predictor.Close()
}

// NewTextExtractor builds the document loader from cfg.
func NewTextExtractor(cfg *common.Config, logger *slog.Logger) (*ocr.Extractor, error) {
	return ocr.NewExtractor(ocr.Config{
		Engine:        cfg.OCR.Engine,
		Rasterizer:    cfg.OCR.Rasterizer,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		HeicConverter: cfg.OCR.HeicConverter,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		PSM:           cfg.OCR.PSM,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
}
