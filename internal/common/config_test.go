package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OCR.Engine != "tesseract" {
		t.Errorf("expected default engine tesseract, got %s", cfg.OCR.Engine)
	}
	if cfg.OCR.DPI != 300 {
		t.Errorf("expected default DPI 300, got %d", cfg.OCR.DPI)
	}
	if cfg.Server.RequestTimeout != 2*time.Minute {
		t.Errorf("expected default request timeout 2m, got %s", cfg.Server.RequestTimeout)
	}
	if cfg.Model.OnnxInputName != "float_input" {
		t.Errorf("unexpected onnx input name %q", cfg.Model.OnnxInputName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RASTERIZER", "FITZ")
	t.Setenv("OCR_MAX_PAGES", "4")
	t.Setenv("MODEL_PATH", "/models/rf.onnx")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OCR.Rasterizer != "fitz" {
		t.Errorf("expected rasterizer fitz, got %s", cfg.OCR.Rasterizer)
	}
	if cfg.OCR.MaxPages != 4 {
		t.Errorf("expected max pages 4, got %d", cfg.OCR.MaxPages)
	}
	if cfg.Model.ModelPath != "/models/rf.onnx" {
		t.Errorf("expected MODEL_PATH override, got %s", cfg.Model.ModelPath)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bloodwork.yaml")
	if err := os.WriteFile(path, []byte("DATASET_PATH: /data/ref.xlsx\nLOG_FORMAT: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dataset.Path != "/data/ref.xlsx" {
		t.Errorf("expected dataset path from file, got %s", cfg.Dataset.Path)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json log format, got %s", cfg.Log.Format)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.OCR.Engine = "paddle"
	cfg.Model.ModelPath = " "
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if KindOf(err) != KindGenericFailure {
		t.Errorf("expected generic failure kind, got %s", KindOf(err))
	}
}
