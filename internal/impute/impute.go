package impute

import (
	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/fields"
)

// Completed is a feature vector with every position filled.
type Completed struct {
	Features []constants.Feature
	Values   []float64
	// Imputed lists, in feature order, the features whose value came from
	// the median table.
	Imputed []constants.Feature
}

// Value returns the final value for f.
func (c Completed) Value(f constants.Feature) (float64, bool) {
	for i, x := range c.Features {
		if x == f {
			return c.Values[i], true
		}
	}
	return 0, false
}

// Impute fills every missing entry of vec from medians. It fails with a
// CRITICAL_MISSING_VALUE error on the first missing feature that has no
// median; the result is then unusable.
func Impute(vec fields.Vector, medians MedianTable) (Completed, error) {
	out := Completed{
		Features: make([]constants.Feature, len(vec)),
		Values:   make([]float64, len(vec)),
		Imputed:  []constants.Feature{},
	}
	for i, v := range vec {
		out.Features[i] = v.Feature
		if v.Value != nil {
			out.Values[i] = *v.Value
			continue
		}
		m, ok := medians.Lookup(v.Feature)
		if !ok {
			return Completed{}, common.MissingValueError(string(v.Feature))
		}
		out.Values[i] = m
		out.Imputed = append(out.Imputed, v.Feature)
	}
	return out, nil
}
