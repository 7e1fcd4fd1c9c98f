package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Engine turns one page image into text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Rasterizer renders every page of a PDF into outDir and returns the image
// paths in page order.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// EngineFactory builds an Engine from the extractor configuration.
type EngineFactory func(cfg Config, r Runner, logger *slog.Logger) Engine

// RasterizerFactory builds a Rasterizer from the extractor configuration.
type RasterizerFactory func(cfg Config, r Runner, logger *slog.Logger) Rasterizer

var (
	registryMu  sync.RWMutex
	engines     = map[string]EngineFactory{}
	rasterizers = map[string]RasterizerFactory{}
)

func init() {
	RegisterEngine("tesseract", func(cfg Config, r Runner, _ *slog.Logger) Engine {
		return &tesseractEngine{cfg: cfg, runner: r}
	})
	RegisterRasterizer("pdftoppm", func(cfg Config, r Runner, _ *slog.Logger) Rasterizer {
		return &pdftoppmRasterizer{cfg: cfg, runner: r}
	})
	RegisterRasterizer("fitz", func(cfg Config, _ Runner, _ *slog.Logger) Rasterizer {
		return &fitzRasterizer{dpi: cfg.DPI, maxPages: cfg.MaxPages}
	})
}

// RegisterEngine makes an OCR engine selectable by name.
func RegisterEngine(name string, f EngineFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	engines[name] = f
}

// RegisterRasterizer makes a PDF rasterizer selectable by name.
func RegisterRasterizer(name string, f RasterizerFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	rasterizers[name] = f
}

// Engines lists the registered engine names.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(engines))
	for k := range engines {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookupEngine(name string) (EngineFactory, error) {
	registryMu.RLock()
	f, ok := engines[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ocr engine %q is not available in this build (available: %s)", name, strings.Join(Engines(), ", "))
	}
	return f, nil
}

func lookupRasterizer(name string) (RasterizerFactory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := rasterizers[name]
	if !ok {
		return nil, fmt.Errorf("pdf rasterizer %q is not available in this build", name)
	}
	return f, nil
}

var rePageNumber = regexp.MustCompile(`-(\d+)\.png$`)

// sortPages orders rendered page images by their numeric page suffix.
func sortPages(paths []string) {
	num := func(p string) int {
		m := rePageNumber.FindStringSubmatch(p)
		if m == nil {
			return 0
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.SliceStable(paths, func(i, j int) bool { return num(paths[i]) < num(paths[j]) })
}
