// tilegen - compiles tile layouts into textured, bevelled brushes.
//
// Build:
//   go build -o tilegen ./cmd/tilegen
//
// Usage:
//   tilegen -layout chamber.yaml -pdf planes.pdf -xlsx brushes.xlsx
//   tilegen -layout chamber.yaml -seed chamber_04 -workers 4 -json > scene.json

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/piwi3910/tilegen/internal/config"
	"github.com/piwi3910/tilegen/internal/engine"
	"github.com/piwi3910/tilegen/internal/export"
	"github.com/piwi3910/tilegen/internal/importer"
	"github.com/piwi3910/tilegen/internal/logger"
	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/scene"
	"github.com/piwi3910/tilegen/internal/texturing"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// output is what -json writes.
type output struct {
	Result   *model.CompileResult `json:"result"`
	Solids   []*scene.Solid       `json:"solids"`
	Overlays []*scene.Overlay     `json:"overlays"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tilegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagConfig  = fs.String("config", config.DefaultConfigPath(), "Path to config file")
		flagLayout  = fs.String("layout", "", "Layout file to compile (required)")
		flagCatalog = fs.String("catalog", "", "Texture catalog file (default: built-in)")
		flagSeed    = fs.String("seed", "", "Master seed for texture choices")
		flagWorkers = fs.Int("workers", 0, "Planes laid out in parallel (-1: one per CPU)")
		flagDebug   = fs.Bool("debug", false, "Enable debug logging")
		flagPDF     = fs.String("pdf", "", "Write a PDF plane report")
		flagLabels  = fs.String("labels", "", "Write a PDF of brush labels")
		flagDXF     = fs.String("dxf", "", "Write a DXF drawing of the brushes")
		flagXLSX    = fs.String("xlsx", "", "Write an Excel brush list")
		flagJSON    = fs.Bool("json", false, "Print the compiled scene as JSON")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *flagLayout == "" {
		fmt.Fprintln(stderr, "tilegen: -layout is required")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(stderr, "tilegen: %v\n", err)
		return 1
	}

	// Flags override the config file.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagCatalog != "" {
		cfg.Catalog.Path = *flagCatalog
	}
	if *flagSeed != "" {
		cfg.Compile.Seed = *flagSeed
	}
	if set["workers"] {
		cfg.Compile.Workers = *flagWorkers
	}
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{*flagPDF, &cfg.Export.PDF},
		{*flagLabels, &cfg.Export.Labels},
		{*flagDXF, &cfg.Export.DXF},
		{*flagXLSX, &cfg.Export.XLSX},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}

	log := logger.FromConfig(cfg.Logging)
	defer logger.Sync()

	out, err := compile(cfg, *flagLayout, log)
	if err != nil {
		fmt.Fprintf(stderr, "tilegen: %v\n", err)
		return 1
	}

	if err := exportAll(cfg.Export, out.Result, log); err != nil {
		fmt.Fprintf(stderr, "tilegen: %v\n", err)
		return 1
	}

	if *flagJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(stderr, "tilegen: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprintf(stdout, "%d planes, %d brushes, %d cells, %d overlays removed\n",
			len(out.Result.Planes), out.Result.RegionCount(), out.Result.CellCount(),
			len(out.Result.RemovedOverlays))
	}

	// Only remember layouts for users who keep a config file.
	if _, err := os.Stat(*flagConfig); err == nil {
		cfg.AddRecentLayout(*flagLayout)
		if err := cfg.SaveTo(*flagConfig); err != nil {
			log.Warn("could not update config", zap.Error(err))
		}
	}
	return 0
}

// compile imports a layout and compiles it into a fresh scene.
func compile(cfg *config.Config, layoutPath string, log *zap.Logger) (*output, error) {
	var catalog *texturing.Catalog
	if cfg.Catalog.Path != "" {
		c, err := texturing.LoadCatalog(cfg.Catalog.Path, log)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		catalog = c
	} else {
		catalog = texturing.DefaultCatalog(log)
	}

	layout := importer.ImportLayout(layoutPath)
	for _, w := range layout.Warnings {
		log.Warn(w, zap.String("layout", layoutPath))
	}
	if !layout.OK() {
		for _, e := range layout.Errors {
			log.Error(e, zap.String("layout", layoutPath))
		}
		return nil, fmt.Errorf("%s: %d import errors", layoutPath, len(layout.Errors))
	}

	sc := scene.New()
	bindings := importer.Bind(sc, layout.Overlays)
	result, err := engine.New(cfg.Compile, catalog, sc, log).Compile(layout.Units(), bindings)
	if err != nil {
		return nil, err
	}
	return &output{Result: result, Solids: sc.Solids(), Overlays: sc.Overlays()}, nil
}

func exportAll(paths config.ExportConfig, result *model.CompileResult, log *zap.Logger) error {
	exports := []struct {
		name string
		path string
		fn   func(string, *model.CompileResult) error
	}{
		{"pdf", paths.PDF, export.ExportPDF},
		{"labels", paths.Labels, export.ExportLabels},
		{"dxf", paths.DXF, export.ExportDXF},
		{"xlsx", paths.XLSX, export.ExportXLSX},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.fn(e.path, result); err != nil {
			return fmt.Errorf("export %s: %w", e.name, err)
		}
		log.Info("exported", zap.String("format", e.name), zap.String("path", e.path))
	}
	return nil
}
