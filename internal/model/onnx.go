package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/joseph-ayodele/bloodwork/constants"
)

// ONNXConfig names the runtime library and graph endpoints of a classifier
// exported with skl2onnx (zipmap disabled).
type ONNXConfig struct {
	LibraryPath string // onnxruntime shared library; empty uses the platform default
	InputName   string // default "float_input"
	LabelOutput string // default "output_label"
	ProbaOutput string // default "output_probability"; "-" disables probabilities
}

var ortInit struct {
	sync.Mutex
	done bool
}

func initRuntime(libPath string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ortInit.done || ort.IsInitialized() {
		ortInit.done = true
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	ortInit.done = true
	return nil
}

// ONNXClassifier runs a classifier graph through onnxruntime. The session is
// safe for concurrent Run calls.
type ONNXClassifier struct {
	session  *ort.DynamicAdvancedSession
	features []constants.Feature
	withProb bool
}

// LoadONNX opens the model at path. Features fixes the input column order,
// since the graph only carries a single float tensor input.
func LoadONNX(path string, features []constants.Feature, cfg ONNXConfig) (*ONNXClassifier, error) {
	if err := statArtifact(path); err != nil {
		return nil, err
	}
	if cfg.InputName == "" {
		cfg.InputName = "float_input"
	}
	if cfg.LabelOutput == "" {
		cfg.LabelOutput = "output_label"
	}
	if cfg.ProbaOutput == "" {
		cfg.ProbaOutput = "output_probability"
	}
	withProb := cfg.ProbaOutput != "-"

	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, artifactError(err)
	}
	outputs := []string{cfg.LabelOutput}
	if withProb {
		outputs = append(outputs, cfg.ProbaOutput)
	}
	session, err := ort.NewDynamicAdvancedSession(path, []string{cfg.InputName}, outputs, nil)
	if err != nil {
		return nil, artifactError(fmt.Errorf("create session: %w", err))
	}
	return &ONNXClassifier{
		session:  session,
		features: append([]constants.Feature(nil), features...),
		withProb: withProb,
	}, nil
}

func (o *ONNXClassifier) FeatureNames() []constants.Feature {
	out := make([]constants.Feature, len(o.features))
	copy(out, o.features)
	return out
}

// Predict implements Classifier.
func (o *ONNXClassifier) Predict(ctx context.Context, x []float64) (int, []float64, error) {
	if len(x) != len(o.features) {
		return 0, nil, fmt.Errorf("model expects %d features, got %d", len(o.features), len(x))
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	data := make([]float32, len(x))
	for i, v := range x {
		data[i] = float32(v)
	}
	input, err := ort.NewTensor(ort.NewShape(1, int64(len(x))), data)
	if err != nil {
		return 0, nil, fmt.Errorf("input tensor: %w", err)
	}
	defer input.Destroy()

	// nil outputs are allocated by the runtime
	outputs := make([]ort.Value, 1, 2)
	if o.withProb {
		outputs = append(outputs, nil)
	}
	if err := o.session.Run([]ort.Value{input}, outputs); err != nil {
		return 0, nil, fmt.Errorf("run session: %w", err)
	}
	for _, v := range outputs {
		if v != nil {
			defer v.Destroy()
		}
	}

	labels, ok := outputs[0].(*ort.Tensor[int64])
	if !ok || len(labels.GetData()) == 0 {
		return 0, nil, fmt.Errorf("unexpected label output %T", outputs[0])
	}
	class := int(labels.GetData()[0])
	if !o.withProb {
		return class, nil, nil
	}

	probs, ok := outputs[1].(*ort.Tensor[float32])
	if !ok {
		return 0, nil, fmt.Errorf("unexpected probability output %T; export the model with zipmap disabled", outputs[1])
	}
	raw := probs.GetData()
	proba := make([]float64, len(raw))
	for i, p := range raw {
		proba[i] = float64(p)
	}
	return class, proba, nil
}

// Close releases the session.
func (o *ONNXClassifier) Close() error {
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}
