package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
)

const testForest = `{
  "feature_names": ["Hemoglobin (g/dL)", "WBC (cells/µL)"],
  "n_classes": 3,
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 12, "left": 1, "right": 2, "value": []},
      {"feature": -1, "threshold": -2, "left": -1, "right": -1, "value": [8, 2, 0]},
      {"feature": -1, "threshold": -2, "left": -1, "right": -1, "value": [0, 1, 9]}
    ]},
    {"nodes": [
      {"feature": 1, "threshold": 10000, "left": 1, "right": 2, "value": []},
      {"feature": -1, "threshold": -2, "left": -1, "right": -1, "value": [5, 5, 0]},
      {"feature": -1, "threshold": -2, "left": -1, "right": -1, "value": [0, 0, 4]}
    ]}
  ]
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestForest_Predict(t *testing.T) {
	f, err := LoadForest(writeArtifact(t, "rf.json", testForest))
	if err != nil {
		t.Fatalf("LoadForest() error = %v", err)
	}
	names := f.FeatureNames()
	if len(names) != 2 || names[0] != constants.Hemoglobin || names[1] != constants.WBC {
		t.Fatalf("FeatureNames() = %v", names)
	}

	tests := []struct {
		name      string
		x         []float64
		wantClass int
		wantProba []float64
	}{
		{"low hb low wbc", []float64{10, 5000}, 0, []float64{0.65, 0.35, 0}},
		{"threshold goes left", []float64{12, 5000}, 0, []float64{0.65, 0.35, 0}},
		{"high hb high wbc", []float64{14, 20000}, 2, []float64{0, 0.05, 0.95}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, proba, err := f.Predict(context.Background(), tt.x)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if class != tt.wantClass {
				t.Errorf("class = %d, want %d", class, tt.wantClass)
			}
			for i := range tt.wantProba {
				if diff := proba[i] - tt.wantProba[i]; diff > 1e-9 || diff < -1e-9 {
					t.Errorf("proba[%d] = %v, want %v", i, proba[i], tt.wantProba[i])
				}
			}
		})
	}

	if _, _, err := f.Predict(context.Background(), []float64{1}); err == nil {
		t.Fatal("expected error for wrong vector length")
	}
}

func TestLoadForest_ArtifactErrors(t *testing.T) {
	badChildren := strings.Replace(testForest, `"left": 1, "right": 2`, `"left": 0, "right": 2`, 1)
	badLeaf := strings.Replace(testForest, "[8, 2, 0]", "[8, 2]", 1)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json")},
		{"not json", writeArtifact(t, "a.json", "\x80\x03cjoblib")},
		{"schema mismatch", writeArtifact(t, "b.json", `{"feature_names": ["x"], "n_classes": 2}`)},
		{"cyclic tree", writeArtifact(t, "c.json", badChildren)},
		{"leaf width", writeArtifact(t, "d.json", badLeaf)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadForest(tt.path)
			if !errors.Is(err, common.ErrArtifactMissing) {
				t.Fatalf("expected ArtifactMissing, got %v", err)
			}
		})
	}
}

func TestLabelEncoder(t *testing.T) {
	enc, err := LoadLabelEncoder(writeArtifact(t, "le.json", `{"classes": ["Mild", "Normal", "Severe"]}`))
	if err != nil {
		t.Fatalf("LoadLabelEncoder() error = %v", err)
	}
	if got, _ := enc.Decode(2); got != "Severe" {
		t.Fatalf("Decode(2) = %q", got)
	}
	if _, err := enc.Decode(3); err == nil {
		t.Fatal("expected out-of-range error")
	}

	_, err = LoadLabelEncoder(writeArtifact(t, "dup.json", `{"classes": ["A", "A"]}`))
	if !errors.Is(err, common.ErrArtifactMissing) {
		t.Fatalf("duplicate labels must be rejected, got %v", err)
	}
	_, err = LoadLabelEncoder("")
	if !errors.Is(err, common.ErrArtifactMissing) {
		t.Fatalf("empty path must be rejected, got %v", err)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name  string
		proba []float64
		want  float64
	}{
		{"no probabilities", nil, 100},
		{"certain", []float64{0, 1, 0}, 100},
		{"two thirds", []float64{1.0 / 3, 2.0 / 3}, 66.67},
		{"tie", []float64{0.5, 0.5}, 50},
		{"above one clamps", []float64{1.2}, 100},
		{"negative clamps", []float64{-0.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.proba); got != tt.want {
				t.Errorf("Confidence(%v) = %v, want %v", tt.proba, got, tt.want)
			}
		})
	}
}

type stubClassifier struct {
	class int
	proba []float64
	err   error
}

func (s stubClassifier) FeatureNames() []constants.Feature { return constants.DefaultFeatures() }
func (s stubClassifier) Predict(context.Context, []float64) (int, []float64, error) {
	return s.class, s.proba, s.err
}

func TestPredictor(t *testing.T) {
	enc := NewLabelEncoder([]string{"Mild", "Normal", "Severe"})

	p, err := NewPredictor(stubClassifier{class: 1}, enc, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.Predict(context.Background(), make([]float64, 14))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got.Label != "Normal" || got.Confidence != 100 {
		t.Fatalf("got %+v", got)
	}

	p, _ = NewPredictor(stubClassifier{class: 2, proba: []float64{0.1, 0.2, 0.7}}, enc, nil)
	got, err = p.Predict(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "Severe" || got.Confidence != 70 {
		t.Fatalf("got %+v", got)
	}

	p, _ = NewPredictor(stubClassifier{class: 9}, enc, nil)
	if _, err := p.Predict(context.Background(), nil); err == nil {
		t.Fatal("expected decode error")
	}

	p, _ = NewPredictor(stubClassifier{err: errors.New("boom")}, enc, nil)
	if _, err := p.Predict(context.Background(), nil); err == nil {
		t.Fatal("expected classifier error")
	}
}

func TestNewPredictor_ClassCountMismatch(t *testing.T) {
	f, err := LoadForest(writeArtifact(t, "rf.json", testForest))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewPredictor(f, NewLabelEncoder([]string{"Mild", "Normal"}), nil)
	if !errors.Is(err, common.ErrArtifactMissing) {
		t.Fatalf("expected ArtifactMissing, got %v", err)
	}
}

func TestLoadClassifier(t *testing.T) {
	clf, err := LoadClassifier(LoadConfig{ModelPath: writeArtifact(t, "rf.json", testForest)}, nil)
	if err != nil {
		t.Fatalf("LoadClassifier() error = %v", err)
	}
	if _, ok := clf.(*Forest); !ok {
		t.Fatalf("expected *Forest, got %T", clf)
	}

	_, err = LoadClassifier(LoadConfig{ModelPath: filepath.Join(t.TempDir(), "rf.onnx")}, nil)
	if !errors.Is(err, common.ErrArtifactMissing) {
		t.Fatalf("missing onnx model must be ArtifactMissing, got %v", err)
	}
}
