package fields

import "github.com/joseph-ayodele/bloodwork/constants"

// Alias lists the text labels that may precede a feature's value in a report.
// Patterns are regular expressions and are tried in slice order.
type Alias struct {
	Feature  constants.Feature
	Patterns []string
}

// AliasSet is the ordered lookup table used by the Extractor. The order of
// Patterns inside each entry is the resolution priority: the first pattern
// that yields a parseable number wins, even if a later pattern occurs earlier
// in the document.
type AliasSet []Alias

// DefaultAliases returns the alias table for the standard CBC panel.
func DefaultAliases() AliasSet {
	return AliasSet{
		{constants.Hemoglobin, []string{`Hemoglobin`, `Hb`, `Hgb`}},
		{constants.WBC, []string{`WBC`, `White Blood Cell`, `TLC`, `Total Leucocyte Count`}},
		{constants.RBC, []string{`RBC`, `Red Blood Cell`, `Total RBC`, `Erythrocyte Count`}},
		{constants.Hematocrit, []string{`Hematocrit`, `PCV`, `Packed Cell Volume`, `Hct`}},
		{constants.MCV, []string{`MCV`, `Mean Corpuscular Volume`}},
		{constants.MCH, []string{`MCH`, `Mean Corpuscular Hemoglobin`}},
		{constants.MCHC, []string{`MCHC`, `Mean Corpuscular Hemoglobin Concentration`}},
		{constants.PlateletCount, []string{`Platelet Count`, `PLT`, `Platelets`, `Thrombocyte Count`}},
		{constants.RDW, []string{`RDW`, `Red Cell Distribution Width`}},
		{constants.Neutrophils, []string{`Neutrophils`, `Polymorphs`}},
		{constants.Lymphocytes, []string{`Lymphocytes`}},
		{constants.Monocytes, []string{`Monocytes`}},
		{constants.Eosinophils, []string{`Eosinophils`}},
		{constants.Basophils, []string{`Basophils`}},
	}
}

// Lookup returns the patterns declared for f.
func (s AliasSet) Lookup(f constants.Feature) ([]string, bool) {
	for _, a := range s {
		if a.Feature == f {
			return a.Patterns, true
		}
	}
	return nil, false
}
