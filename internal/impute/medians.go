package impute

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bloodwork/constants"
)

// MedianTable maps a feature to the median observed in the reference dataset.
// It is built once at startup and only read afterwards.
type MedianTable map[constants.Feature]float64

// Lookup returns the median for f, if the dataset had one.
func (m MedianTable) Lookup(f constants.Feature) (float64, bool) {
	v, ok := m[f]
	return v, ok
}

// ComputeMedians reads the reference dataset at path (CSV, or XLSX by
// extension) and returns the median of every column whose header is one of
// features. Cells that are empty or not numeric are ignored. A dataset that
// cannot be read yields an empty table and a warning; it is never fatal.
func ComputeMedians(path string, features []constants.Feature, logger *slog.Logger) MedianTable {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		logger.Warn("no reference dataset configured; imputation disabled")
		return MedianTable{}
	}

	header, rows, err := readDataset(path)
	if err != nil {
		logger.Warn("could not calculate medians from dataset", "path", path, "error", err)
		return MedianTable{}
	}

	wanted := make(map[string]constants.Feature, len(features))
	for _, f := range features {
		wanted[string(f)] = f
	}

	out := MedianTable{}
	for col, name := range header {
		f, ok := wanted[name]
		if !ok {
			continue
		}
		var vals []float64
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			v, ok := parseCell(row[col])
			if !ok {
				continue
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			logger.Warn("dataset column has no numeric values", "column", name)
			continue
		}
		out[f] = median(vals)
	}
	logger.Info("computed feature medians", "path", path, "rows", len(rows), "features", len(out))
	return out
}

func readDataset(path string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([]string, [][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("dataset is empty")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return header, rows, nil
}

// readXLSX reads the first sheet of the workbook; its first row is the header.
func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("dataset is empty")
	}
	header := all[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, all[1:], nil
}

func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
