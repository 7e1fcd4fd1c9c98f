package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	OCR     OCRConfig
	Model   ModelConfig
	Dataset DatasetConfig
	Server  ServerConfig
	Log     LogConfig
}

// OCRConfig holds OCR and rasterization configuration
type OCRConfig struct {
	Engine        string // "tesseract" | "gosseract"
	Rasterizer    string // "pdftoppm" | "fitz"
	Tesseract     string
	Pdftoppm      string
	HeicConverter string // "" | "magick" | "heif-convert" | "sips"
	TesseractLang string
	TessdataDir   string
	DPI           int
	PSM           int
	MaxPages      int
}

// ModelConfig holds classifier and label-encoder artifact configuration
type ModelConfig struct {
	ModelPath        string
	LabelEncoderPath string
	OnnxRuntimeLib   string
	OnnxInputName    string
	OnnxLabelOutput  string
	OnnxProbaOutput  string
}

// DatasetConfig points at the reference dataset used for medians
type DatasetConfig struct {
	Path string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string
	RequestTimeout time.Duration
	Workers        int
	QueueSize      int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "text" | "json"
}

var defaults = map[string]any{
	"MODEL_PATH":         "./artifacts/rf_model.json",
	"LABEL_ENCODER_PATH": "./artifacts/label_encoder.json",
	"DATASET_PATH":       "./artifacts/cbc_health_severity_dataset.csv",
	"OCR_ENGINE":         "tesseract",
	"RASTERIZER":         "pdftoppm",
	"TESSERACT_BIN":      "tesseract",
	"PDFTOPPM_BIN":       "pdftoppm",
	"HEIC_CONVERTER":     "",
	"TESSERACT_LANG":     "eng",
	"TESSDATA_PREFIX":    "",
	"OCR_DPI":            300,
	"OCR_PSM":            0,
	"OCR_MAX_PAGES":      0,
	"ONNX_RUNTIME_LIB":   "",
	"ONNX_INPUT_NAME":    "float_input",
	"ONNX_LABEL_OUTPUT":  "output_label",
	"ONNX_PROBA_OUTPUT":  "output_probability",
	"GRPC_ADDR":          ":8080",
	"REQUEST_TIMEOUT":    "2m",
	"WORKERS":            4,
	"QUEUE_SIZE":         64,
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "text",
}

// LoadConfig loads configuration from defaults, environment variables and,
// when configFile is non-empty, that file. Environment wins over the file.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	return &Config{
		OCR: OCRConfig{
			Engine:        strings.ToLower(v.GetString("OCR_ENGINE")),
			Rasterizer:    strings.ToLower(v.GetString("RASTERIZER")),
			Tesseract:     v.GetString("TESSERACT_BIN"),
			Pdftoppm:      v.GetString("PDFTOPPM_BIN"),
			HeicConverter: strings.ToLower(v.GetString("HEIC_CONVERTER")),
			TesseractLang: v.GetString("TESSERACT_LANG"),
			TessdataDir:   v.GetString("TESSDATA_PREFIX"),
			DPI:           v.GetInt("OCR_DPI"),
			PSM:           v.GetInt("OCR_PSM"),
			MaxPages:      v.GetInt("OCR_MAX_PAGES"),
		},
		Model: ModelConfig{
			ModelPath:        v.GetString("MODEL_PATH"),
			LabelEncoderPath: v.GetString("LABEL_ENCODER_PATH"),
			OnnxRuntimeLib:   v.GetString("ONNX_RUNTIME_LIB"),
			OnnxInputName:    v.GetString("ONNX_INPUT_NAME"),
			OnnxLabelOutput:  v.GetString("ONNX_LABEL_OUTPUT"),
			OnnxProbaOutput:  v.GetString("ONNX_PROBA_OUTPUT"),
		},
		Dataset: DatasetConfig{
			Path: v.GetString("DATASET_PATH"),
		},
		Server: ServerConfig{
			GRPCAddr:       v.GetString("GRPC_ADDR"),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
			Workers:        v.GetInt("WORKERS"),
			QueueSize:      v.GetInt("QUEUE_SIZE"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validator := NewValidator().
		Field("MODEL_PATH", c.Model.ModelPath, Required).
		Field("LABEL_ENCODER_PATH", c.Model.LabelEncoderPath, Required).
		Field("OCR_ENGINE", c.OCR.Engine, OneOf("tesseract", "gosseract")).
		Field("RASTERIZER", c.OCR.Rasterizer, OneOf("pdftoppm", "fitz")).
		Field("HEIC_CONVERTER", c.OCR.HeicConverter, OneOf("", "magick", "heif-convert", "sips")).
		Field("OCR_DPI", c.OCR.DPI, Positive).
		Field("OCR_MAX_PAGES", c.OCR.MaxPages, NonNegative).
		Field("WORKERS", c.Server.Workers, Positive).
		Field("LOG_FORMAT", c.Log.Format, OneOf("text", "json"))
	if err := validator.Error(); err != nil {
		return NewAppError(KindGenericFailure, "invalid configuration", err)
	}
	return nil
}
