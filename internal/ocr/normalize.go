package ocr

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

var reCR = regexp.MustCompile(`\r\n?`)

type unitRule struct {
	re   *regexp.Regexp
	repl string
}

// unitRules rewrite OCR spellings of unit labels to the canonical form. They
// run in order, match case-insensitively and never touch digits. Every
// replacement matches its own pattern, so rewriting is a fixed point.
var unitRules = []unitRule{
	{regexp.MustCompile(`(?i)cells\s*/\s*[pPμµuU]?[lL]`), "cells/µL"},
	{regexp.MustCompile(`(?i)million\s*/\s*[pPμµuU]?[lL]`), "million/µL"},
	{regexp.MustCompile(`(?i)\bfl\b`), "fL"},
	{regexp.MustCompile(`(?i)\bg/dl\b`), "g/dL"},
}

// NormalizeUnits canonicalizes unit-label noise in OCR output before numeric
// extraction. It is idempotent.
func NormalizeUnits(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = reCR.ReplaceAllString(s, "\n")
	for _, r := range unitRules {
		s = r.re.ReplaceAllLiteralString(s, r.repl)
	}
	return s
}
