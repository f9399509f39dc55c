// Command segnet evaluates a scene script of walls and roads and writes the
// generated meshes as JSON.
//
// Usage:
//
//	segnet [-config file] [-o out.json] [-zstd] scene.segnet
//
// The script is read from stdin when no path (or "-") is given.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/segnet/pkg/config"
	"github.com/chazu/segnet/pkg/logging"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

var errEvaluation = errors.New("scene has errors")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "segnet:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("segnet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (default $"+config.EnvPath+")")
	outPath := fs.String("o", "", "output file (default stdout)")
	compress := fs.Bool("zstd", false, "zstd-compress the output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	source, name, err := readSource(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	result := NewApp(cfg, logger).Evaluate(source)
	if s := result.Summary(); s != "" {
		fmt.Fprint(stderr, s)
	}

	out := stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	zst := *compress || cfg.Output.Compress || strings.HasSuffix(*outPath, ".zst")
	if err := writeResult(out, result, zst); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Debug("wrote result",
		zap.String("source", name),
		zap.String("output", *outPath),
		zap.Bool("zstd", zst))

	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: %w", name, errEvaluation)
	}
	return nil
}

func readSource(path string, stdin io.Reader) (source, name string, err error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), path, nil
}

// writeResult encodes result as indented JSON, optionally zstd-compressed.
func writeResult(w io.Writer, result EvalResult, compress bool) error {
	if !compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(result); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
