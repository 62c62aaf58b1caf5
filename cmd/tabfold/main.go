package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tabfold/tabfold/cache"
	"github.com/tabfold/tabfold/extract"
	"github.com/tabfold/tabfold/model"
	"github.com/tabfold/tabfold/sink"
	"github.com/tabfold/tabfold/transform"
)

type options struct {
	rawPath    string
	specPath   string
	scriptPath string
	engine     string
	format     string
	outPath    string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tabfold: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "tabfold: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: tabfold [flags] <raw-tables.json>\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Reshapes a raw extraction dump into logical rows.\n")
		flag.PrintDefaults()
	}
	spec := flag.String("spec", "", "YAML transform spec to apply")
	script := flag.String("script", "", "Script file to apply instead of a transform spec")
	engine := flag.String("engine", "ecmascript", "Script engine: ecmascript, jsonnet, or lua")
	format := flag.String("format", "csv", "Output format: csv, json, or yaml")
	out := flag.String("out", "", "Output file (default stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return opts, fmt.Errorf("expected exactly one raw-tables file")
	}
	opts.rawPath = flag.Arg(0)
	opts.specPath = *spec
	opts.scriptPath = *script
	opts.engine = *engine
	opts.format = *format
	opts.outPath = *out
	switch opts.format {
	case "csv", "json", "yaml":
	default:
		return opts, fmt.Errorf("unknown output format %q", opts.format)
	}
	return opts, nil
}

func run(opts options) error {
	raws, err := loadRawTables(opts.rawPath)
	if err != nil {
		return err
	}
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	// The raw dump stands in for the external locator, so the reader just
	// replays it; the cache layer is not useful for a one-shot replay.
	reader := cache.RawReaderFunc(func(context.Context, string, io.Reader) ([]model.RawTable, error) {
		return raws, nil
	})
	res, err := extract.New(reader).Table(context.Background(), opts.rawPath, bytes.NewReader(nil), cfg)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("nothing to do: pass -spec or -script")
	}
	return write(opts, res)
}

func loadRawTables(path string) ([]model.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raws []model.RawTable
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return raws, nil
}

func buildConfig(opts options) (extract.TableConfig, error) {
	cfg := extract.TableConfig{Name: opts.rawPath}
	if opts.specPath != "" && opts.scriptPath != "" {
		return cfg, fmt.Errorf("-spec and -script are mutually exclusive")
	}
	if opts.specPath != "" {
		data, err := os.ReadFile(opts.specPath)
		if err != nil {
			return cfg, err
		}
		var spec transform.Spec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return cfg, err
		}
		if spec == nil {
			spec = transform.Spec{}
		}
		cfg.Transforms = spec
	}
	if opts.scriptPath != "" {
		src, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return cfg, err
		}
		cfg.Script = &extract.ScriptConfig{Engine: opts.engine, Source: string(src)}
	}
	return cfg, nil
}

func write(opts options, res *extract.Result) error {
	var w io.Writer = os.Stdout
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch opts.format {
	case "csv":
		return sink.WriteCSV(w, res.Rows)
	case "json":
		return sink.WriteJSON(w, res.Pages, res.Rows)
	case "yaml":
		return sink.WriteYAML(w, res.Pages, res.Rows)
	}
	return nil
}
