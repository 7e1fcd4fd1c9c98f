package constants

// Feature is the canonical name of one measured lab value, exactly as the
// classifier was trained on it.
type Feature string

const (
	Hemoglobin    Feature = "Hemoglobin (g/dL)"
	WBC           Feature = "WBC (cells/µL)"
	RBC           Feature = "RBC (million/µL)"
	Hematocrit    Feature = "Hematocrit (%)"
	MCV           Feature = "MCV (fL)"
	MCH           Feature = "MCH (pg)"
	MCHC          Feature = "MCHC (g/dL)"
	PlateletCount Feature = "Platelet Count (cells/µL)"
	RDW           Feature = "RDW (%)"
	Neutrophils   Feature = "Neutrophils (%)"
	Lymphocytes   Feature = "Lymphocytes (%)"
	Monocytes     Feature = "Monocytes (%)"
	Eosinophils   Feature = "Eosinophils (%)"
	Basophils     Feature = "Basophils (%)"
)

// allFeatures is the default trained ordering. Artifacts that declare their
// own feature_names override it.
var allFeatures = []Feature{
	Hemoglobin,
	WBC,
	RBC,
	Hematocrit,
	MCV,
	MCH,
	MCHC,
	PlateletCount,
	RDW,
	Neutrophils,
	Lymphocytes,
	Monocytes,
	Eosinophils,
	Basophils,
}

// DefaultFeatures returns a copy of the default feature ordering.
func DefaultFeatures() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// IsKnownFeature reports whether name is one of the canonical features.
func IsKnownFeature(name string) bool {
	for _, f := range allFeatures {
		if string(f) == name {
			return true
		}
	}
	return false
}

// FeaturesFromStrings converts raw names to Features preserving order.
func FeaturesFromStrings(names []string) []Feature {
	out := make([]Feature, len(names))
	for i, n := range names {
		out[i] = Feature(n)
	}
	return out
}
