package fields

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
)

// valueSuffix follows an alias: anything on the same line, then the first
// number. A number is digits with at most one '.' or ',' decimal separator.
const valueSuffix = `.*?(\d+[.,]?\d*)`

// Value is one extracted measurement. A nil Value means no alias matched a
// parseable number.
type Value struct {
	Feature constants.Feature
	Value   *float64
}

// Vector holds extracted values aligned with the requested feature order.
type Vector []Value

// Missing returns the features without a value, in vector order.
func (v Vector) Missing() []constants.Feature {
	var out []constants.Feature
	for _, x := range v {
		if x.Value == nil {
			out = append(out, x.Feature)
		}
	}
	return out
}

// Features returns the feature order of v.
func (v Vector) Features() []constants.Feature {
	out := make([]constants.Feature, len(v))
	for i, x := range v {
		out[i] = x.Feature
	}
	return out
}

type compiledAlias struct {
	pattern string
	re      *regexp.Regexp
}

// Extractor finds feature values in normalized OCR text. Patterns are compiled
// once in NewExtractor; an Extractor is safe for concurrent use.
type Extractor struct {
	rules    map[constants.Feature][]compiledAlias
	fallback sync.Map // constants.Feature -> []compiledAlias
	logger   *slog.Logger
}

// NewExtractor compiles every pattern in aliases. An invalid pattern is a
// configuration error.
func NewExtractor(aliases AliasSet, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{rules: make(map[constants.Feature][]compiledAlias, len(aliases)), logger: logger}
	for _, a := range aliases {
		compiled := make([]compiledAlias, 0, len(a.Patterns))
		for _, p := range a.Patterns {
			re, err := compile(p)
			if err != nil {
				return nil, fmt.Errorf("alias %q for %s: %w", p, a.Feature, err)
			}
			compiled = append(compiled, compiledAlias{pattern: p, re: re})
		}
		e.rules[a.Feature] = compiled
	}
	return e, nil
}

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)` + pattern + valueSuffix)
}

// Extract returns one Value per feature, in the order given. For each feature
// the declared aliases are tried in order and the first one whose leftmost
// match parses as a number wins. A feature with no alias entry is searched by
// its own name taken literally.
func (e *Extractor) Extract(ctx context.Context, text string, features []constants.Feature) Vector {
	logger := common.LoggerFromContext(ctx, e.logger)

	out := make(Vector, 0, len(features))
	for _, f := range features {
		var val *float64
		for _, a := range e.aliasesFor(f) {
			m := a.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			v, err := parseNumber(m[1])
			if err != nil {
				logger.Debug("alias matched but value did not parse", "feature", f, "alias", a.pattern, "raw", m[1])
				continue
			}
			logger.Debug("found value", "feature", f, "alias", a.pattern, "value", v)
			val = &v
			break
		}
		if val == nil {
			logger.Info("missing value", "feature", f)
		}
		out = append(out, Value{Feature: f, Value: val})
	}
	return out
}

func (e *Extractor) aliasesFor(f constants.Feature) []compiledAlias {
	if rules, ok := e.rules[f]; ok {
		return rules
	}
	if cached, ok := e.fallback.Load(f); ok {
		return cached.([]compiledAlias)
	}
	p := regexp.QuoteMeta(string(f))
	rules := []compiledAlias{{pattern: p, re: regexp.MustCompile(`(?i)` + p + valueSuffix)}}
	e.fallback.Store(f, rules)
	return rules
}

// parseNumber accepts ',' as the decimal separator and ignores a trailing
// separator picked up from sentence punctuation.
func parseNumber(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, ",", ".")
	s = strings.TrimRight(s, ".")
	return strconv.ParseFloat(s, 64)
}
