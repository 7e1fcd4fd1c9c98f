package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/impute"
	"github.com/joseph-ayodele/bloodwork/internal/model"
)

// previewLen is how much normalized OCR text a missing-value failure carries.
const previewLen = 500

// FeatureValue is one final input value.
type FeatureValue struct {
	Feature constants.Feature
	Value   float64
}

// ExtractedData keeps features in model order and marshals as a JSON object
// with the keys in that order.
type ExtractedData []FeatureValue

func (d ExtractedData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fv := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(fv.Feature))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(fv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the success record for one document.
type Result struct {
	Prediction    string        `json:"prediction"`
	Confidence    float64       `json:"confidence"`
	ExtractedData ExtractedData `json:"extracted_data"`
	ImputedFields []string      `json:"imputed_fields"`
}

// Assemble packages a prediction and the vector it was made from.
func Assemble(pred model.Prediction, completed impute.Completed) Result {
	data := make(ExtractedData, len(completed.Features))
	for i, f := range completed.Features {
		data[i] = FeatureValue{Feature: f, Value: completed.Values[i]}
	}
	imputed := make([]string, 0, len(completed.Imputed))
	for _, f := range completed.Imputed {
		imputed = append(imputed, string(f))
	}
	return Result{
		Prediction:    pred.Label,
		Confidence:    pred.Confidence,
		ExtractedData: data,
		ImputedFields: imputed,
	}
}

// AsMap converts r into plain JSON values.
func (r Result) AsMap() map[string]any {
	fields := make(map[string]any, len(r.ExtractedData))
	for _, fv := range r.ExtractedData {
		fields[string(fv.Feature)] = fv.Value
	}
	imputed := make([]any, len(r.ImputedFields))
	for i, f := range r.ImputedFields {
		imputed[i] = f
	}
	return map[string]any{
		"prediction":     r.Prediction,
		"confidence":     r.Confidence,
		"extracted_data": fields,
		"imputed_fields": imputed,
	}
}

// Failure is the record emitted instead of a Result when processing fails.
type Failure struct {
	Error          string  `json:"error"`
	Trace          string  `json:"trace,omitempty"`
	OCRTextPreview *string `json:"ocr_text_preview,omitempty"`

	Kind common.Kind `json:"-"`
}

// FailureFrom converts any processing error into a Failure. Missing-value
// failures carry the start of the normalized OCR text so the operator can
// see what the extractor was given.
func FailureFrom(err error) Failure {
	f := Failure{Kind: common.KindOf(err)}

	var pe *PanicError
	if errors.As(err, &pe) {
		f.Error = "Processing failed: " + pe.Error()
		f.Trace = string(pe.Stack)
		return f
	}

	var ae *common.AppError
	if errors.As(err, &ae) {
		f.Error = common.MessageOf(err)
	} else {
		f.Error = "Processing failed: " + err.Error()
	}

	var se *StageError
	if f.Kind == common.KindCriticalMissingValue && errors.As(err, &se) {
		p := preview(se.Text)
		f.OCRTextPreview = &p
	}
	return f
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r)
}
