package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/bloodwork/constants"
)

type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

type forestFile struct {
	FeatureNames []string `json:"feature_names"`
	NClasses     int      `json:"n_classes"`
	Classes      []int    `json:"classes"`
	Trees        []tree   `json:"trees"`
}

// Forest is a random-forest classifier evaluated from its JSON export. It
// follows scikit-learn semantics: a sample goes left when
// x[feature] <= threshold, each tree votes with its normalized leaf
// distribution, and the predicted class is the argmax of the mean vote.
type Forest struct {
	features []constants.Feature
	classes  []int
	trees    []tree
}

// LoadForest reads and validates a forest export.
func LoadForest(path string) (*Forest, error) {
	b, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema("forest.json", forestSchema(), b); err != nil {
		return nil, artifactError(err)
	}
	var ff forestFile
	if err := json.Unmarshal(b, &ff); err != nil {
		return nil, artifactError(err)
	}
	f, err := newForest(ff)
	if err != nil {
		return nil, artifactError(err)
	}
	return f, nil
}

func newForest(ff forestFile) (*Forest, error) {
	classes := ff.Classes
	if len(classes) == 0 {
		classes = make([]int, ff.NClasses)
		for i := range classes {
			classes[i] = i
		}
	}
	if len(classes) != ff.NClasses {
		return nil, fmt.Errorf("classes has %d entries, n_classes is %d", len(classes), ff.NClasses)
	}
	for ti, t := range ff.Trees {
		if err := checkTree(t, len(ff.FeatureNames), ff.NClasses); err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
	}
	return &Forest{
		features: constants.FeaturesFromStrings(ff.FeatureNames),
		classes:  classes,
		trees:    ff.Trees,
	}, nil
}

// checkTree verifies node references. Children must come after their parent,
// which rules out cycles.
func checkTree(t tree, nFeatures, nClasses int) error {
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			if len(n.Value) != nClasses {
				return fmt.Errorf("leaf %d has %d class weights, want %d", i, len(n.Value), nClasses)
			}
			continue
		}
		if n.Feature >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, nFeatures)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// FeatureNames returns the order in which Predict expects its input.
func (f *Forest) FeatureNames() []constants.Feature {
	out := make([]constants.Feature, len(f.features))
	copy(out, f.features)
	return out
}

// Classes returns the number of classes the forest predicts.
func (f *Forest) Classes() int { return len(f.classes) }

// Predict implements Classifier.
func (f *Forest) Predict(ctx context.Context, x []float64) (int, []float64, error) {
	if len(x) != len(f.features) {
		return 0, nil, fmt.Errorf("forest expects %d features, got %d", len(f.features), len(x))
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	proba := make([]float64, len(f.classes))
	for _, t := range f.trees {
		leaf := t.leaf(x)
		var sum float64
		for _, w := range leaf.Value {
			sum += w
		}
		if sum == 0 {
			continue
		}
		for i, w := range leaf.Value {
			proba[i] += w / sum
		}
	}
	for i := range proba {
		proba[i] /= float64(len(f.trees))
	}

	best := 0
	for i := 1; i < len(proba); i++ {
		if proba[i] > proba[best] {
			best = i
		}
	}
	return f.classes[best], proba, nil
}

func (t tree) leaf(x []float64) treeNode {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
