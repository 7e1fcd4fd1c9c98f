package ocr

import "testing"

func TestNormalizeUnits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WBC 9000 cells/ul", "WBC 9000 cells/µL"},
		{"WBC 9000 Cells / UL", "WBC 9000 cells/µL"},
		{"Platelets 250000 cells/pl", "Platelets 250000 cells/µL"},
		{"RBC 4.5 million/ul", "RBC 4.5 million/µL"},
		{"RBC 4.5 MILLION / μL", "RBC 4.5 million/µL"},
		{"MCV 88 fl", "MCV 88 fL"},
		{"Hemoglobin 11.2 g/dl", "Hemoglobin 11.2 g/dL"},
		{"Hemoglobin 11.2 G/DL", "Hemoglobin 11.2 g/dL"},
		{"line one\r\nline two\rline three", "line one\nline two\nline three"},
		{"flow 12 fluid", "flow 12 fluid"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUnits(tt.in); got != tt.want {
			t.Errorf("NormalizeUnits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeUnits_Idempotent(t *testing.T) {
	inputs := []string{
		"WBC 9000 cells/ul, Hemoglobin 11.2 g/dl, Platelet Count 250000",
		"RBC 4.5 million / UL\r\r\nMCV 88 FL",
		"cells/µL million/µL fL g/dL",
		"Neutrophils 60 %\nLymphocytes 30%",
		"cells//ul cells/l",
	}
	for _, in := range inputs {
		once := NormalizeUnits(in)
		if twice := NormalizeUnits(once); twice != once {
			t.Errorf("not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestNormalizeUnits_LeavesDigitsAlone(t *testing.T) {
	in := "Hb 13,5 g/dl WBC 7.800 cells/ul PLT 1,50,000"
	out := NormalizeUnits(in)
	digits := func(s string) string {
		var b []rune
		for _, r := range s {
			if r >= '0' && r <= '9' || r == '.' || r == ',' {
				b = append(b, r)
			}
		}
		return string(b)
	}
	if digits(in) != digits(out) {
		t.Errorf("digit sequence changed: %q -> %q", digits(in), digits(out))
	}
}
