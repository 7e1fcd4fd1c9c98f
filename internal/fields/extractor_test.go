package fields

import (
	"context"
	"strings"
	"testing"

	"github.com/joseph-ayodele/bloodwork/constants"
)

func mustExtractor(t *testing.T, aliases AliasSet) *Extractor {
	t.Helper()
	e, err := NewExtractor(aliases, nil)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	return e
}

func valueOf(t *testing.T, v Vector, f constants.Feature) *float64 {
	t.Helper()
	for _, x := range v {
		if x.Feature == f {
			return x.Value
		}
	}
	t.Fatalf("feature %s not in vector", f)
	return nil
}

func TestExtract_SingleFeature(t *testing.T) {
	e := mustExtractor(t, DefaultAliases())

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"colon and unit", "Hemoglobin: 13.5 g/dL", 13.5},
		{"comma decimal", "Hemoglobin 13,5 g/dL", 13.5},
		{"trailing dot", "Hemoglobin was 14.", 14},
		{"short alias", "Hgb .... 12.1", 12.1},
		{"case insensitive", "HEMOGLOBIN - 9.8", 9.8},
		{"leftmost occurrence", "Hemoglobin 11\nHemoglobin 15", 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Extract(context.Background(), tt.text, []constants.Feature{constants.Hemoglobin})
			got := valueOf(t, v, constants.Hemoglobin)
			if got == nil || *got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_AliasPriorityBeatsPosition(t *testing.T) {
	e := mustExtractor(t, AliasSet{{constants.Hemoglobin, []string{`Hemoglobin`, `Hb`}}})

	v := e.Extract(context.Background(), "Hb 10\nsome other line\nHemoglobin 12", []constants.Feature{constants.Hemoglobin})
	got := valueOf(t, v, constants.Hemoglobin)
	if got == nil || *got != 12 {
		t.Fatalf("declared-first alias must win, got %v", got)
	}
}

func TestExtract_ValueMustBeOnSameLine(t *testing.T) {
	e := mustExtractor(t, DefaultAliases())

	v := e.Extract(context.Background(), "Basophils\n1.0", []constants.Feature{constants.Basophils})
	if got := valueOf(t, v, constants.Basophils); got != nil {
		t.Fatalf("value on the next line must not match, got %v", *got)
	}
}

func TestExtract_ParseFailureFallsThrough(t *testing.T) {
	e := mustExtractor(t, AliasSet{{constants.Hemoglobin, []string{`Hemoglobin`, `Hb`}}})

	huge := "Hemoglobin " + strings.Repeat("9", 400) + "\nHb 12.5"
	v := e.Extract(context.Background(), huge, []constants.Feature{constants.Hemoglobin})
	got := valueOf(t, v, constants.Hemoglobin)
	if got == nil || *got != 12.5 {
		t.Fatalf("expected fall-through to next alias, got %v", got)
	}
}

func TestExtract_MissingIsNil(t *testing.T) {
	e := mustExtractor(t, DefaultAliases())

	v := e.Extract(context.Background(), "WBC 9000 cells/µL", constants.DefaultFeatures())
	if len(v) != len(constants.DefaultFeatures()) {
		t.Fatalf("vector length = %d", len(v))
	}
	if got := valueOf(t, v, constants.WBC); got == nil || *got != 9000 {
		t.Fatalf("WBC = %v", got)
	}
	missing := v.Missing()
	if len(missing) != len(v)-1 {
		t.Fatalf("expected %d missing, got %v", len(v)-1, missing)
	}
	for _, f := range missing {
		if f == constants.WBC {
			t.Fatal("WBC reported missing")
		}
	}
}

func TestExtract_PreservesRequestedOrder(t *testing.T) {
	e := mustExtractor(t, DefaultAliases())
	order := []constants.Feature{constants.RDW, constants.Hemoglobin, constants.WBC}

	v := e.Extract(context.Background(), "Hemoglobin 13 WBC 7000 RDW 12.5", order)
	for i, f := range v.Features() {
		if f != order[i] {
			t.Fatalf("position %d = %s, want %s", i, f, order[i])
		}
	}
}

func TestExtract_FallbackToLiteralFeatureName(t *testing.T) {
	e := mustExtractor(t, DefaultAliases())
	f := constants.Feature("Reticulocytes (%)")

	v := e.Extract(context.Background(), "Reticulocytes (%) 1.2", []constants.Feature{f})
	got := valueOf(t, v, f)
	if got == nil || *got != 1.2 {
		t.Fatalf("got %v", got)
	}

	v = e.Extract(context.Background(), "Reticulocytes 1.2", []constants.Feature{f})
	if got := valueOf(t, v, f); got != nil {
		t.Fatalf("literal name must be matched exactly, got %v", *got)
	}
}

func TestExtract_FullReport(t *testing.T) {
	e := mustExtractor(t, DefaultAliases())
	text := strings.Join([]string{
		"COMPLETE BLOOD COUNT",
		"Hemoglobin 11.2 g/dL",
		"Total Leucocyte Count 9000 cells/µL",
		"Total RBC 4.1 million/µL",
		"Packed Cell Volume 36 %",
		"MCV 88 fL",
		"MCH 29.5 pg",
		"MCHC 33 g/dL",
		"Platelet Count 250000 cells/µL",
		"RDW 13.1 %",
		"Polymorphs 62 %",
		"Lymphocytes 30 %",
		"Monocytes 5 %",
		"Eosinophils 2 %",
		"Basophils 1 %",
	}, "\n")

	want := map[constants.Feature]float64{
		constants.Hemoglobin:    11.2,
		constants.WBC:           9000,
		constants.RBC:           4.1,
		constants.Hematocrit:    36,
		constants.MCV:           88,
		constants.MCH:           29.5,
		constants.MCHC:          33,
		constants.PlateletCount: 250000,
		constants.RDW:           13.1,
		constants.Neutrophils:   62,
		constants.Lymphocytes:   30,
		constants.Monocytes:     5,
		constants.Eosinophils:   2,
		constants.Basophils:     1,
	}
	v := e.Extract(context.Background(), text, constants.DefaultFeatures())
	for f, w := range want {
		got := valueOf(t, v, f)
		if got == nil || *got != w {
			t.Errorf("%s = %v, want %v", f, got, w)
		}
	}
}

func TestNewExtractor_InvalidPattern(t *testing.T) {
	if _, err := NewExtractor(AliasSet{{constants.RDW, []string{`RDW(`}}}, nil); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestAliasSet_Lookup(t *testing.T) {
	s := DefaultAliases()
	p, ok := s.Lookup(constants.PlateletCount)
	if !ok || p[0] != "Platelet Count" {
		t.Fatalf("Lookup(PlateletCount) = %v, %v", p, ok)
	}
	if _, ok := s.Lookup("nope"); ok {
		t.Fatal("unexpected alias for unknown feature")
	}
	if len(s) != len(constants.DefaultFeatures()) {
		t.Fatalf("default table covers %d features", len(s))
	}
}
