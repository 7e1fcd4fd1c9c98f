package model

import (
	"encoding/json"
	"fmt"
)

// LabelEncoder maps encoded class indices back to severity labels.
type LabelEncoder struct {
	classes []string
}

// LoadLabelEncoder reads a label encoder export of the form
// {"classes": ["Mild", "Moderate", ...]}.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	b, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema("label_encoder.json", encoderSchema(), b); err != nil {
		return nil, artifactError(err)
	}
	var raw struct {
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, artifactError(err)
	}
	return NewLabelEncoder(raw.Classes), nil
}

func NewLabelEncoder(classes []string) *LabelEncoder {
	return &LabelEncoder{classes: append([]string(nil), classes...)}
}

// Decode is the inverse transform for a single class index.
func (l *LabelEncoder) Decode(class int) (string, error) {
	if class < 0 || class >= len(l.classes) {
		return "", fmt.Errorf("class %d is outside the encoder's %d labels", class, len(l.classes))
	}
	return l.classes[class], nil
}

func (l *LabelEncoder) Len() int { return len(l.classes) }
