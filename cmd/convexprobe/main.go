// Command convexprobe evaluates a chamfer-cylinder probe script and writes a
// report of the placed bodies and every shape query the script ran.
//
// Usage:
//
//	convexprobe -script wheel.convex [-out report.json] [-format json|msgpack]
//	            [-meshes dir] [-reference]
//
// Flags override the CONVEX_* environment configuration. A script path of
// "-" reads from stdin.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/convex/internal/config"
	"github.com/chazu/convex/pkg/collision"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.LoadProbeConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	fs := flag.NewFlagSet("convexprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	script := fs.String("script", "-", "probe script path, or - for stdin")
	out := fs.String("out", "", "report path (default stdout)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "report format: json or msgpack")
	fs.StringVar(&cfg.MeshDir, "meshes", cfg.MeshDir, "write per-body mesh files to this directory")
	fs.BoolVar(&cfg.Reference, "reference", cfg.Reference, "also mesh bodies with the reference kernel")
	fs.IntVar(&cfg.ReferenceCells, "cells", cfg.ReferenceCells, "reference kernel mesh resolution")
	fs.DurationVar(&cfg.EvalTimeout, "timeout", cfg.EvalTimeout, "script evaluation timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	collision.SetLogger(logger)

	source, err := readScript(*script, stdin)
	if err != nil {
		logger.Error("read script", "path", *script, "err", err)
		return 2
	}

	app := NewApp(cfg, logger)
	report := app.Evaluate(source)

	if cfg.MeshDir != "" && len(report.Meshes) > 0 {
		paths, err := WriteMeshes(cfg.MeshDir, report.Meshes)
		if err != nil {
			logger.Error("write meshes", "dir", cfg.MeshDir, "err", err)
			return 1
		}
		logger.Info("wrote meshes", "dir", cfg.MeshDir, "count", len(paths))
	}

	if *out == "" {
		err = WriteReport(stdout, report, cfg.Format)
	} else {
		var f *os.File
		if f, err = os.Create(*out); err == nil {
			err = writeAndClose(f, report, cfg.Format)
		}
	}
	if err != nil {
		logger.Error("write report", "path", *out, "err", err)
		return 1
	}

	for _, e := range report.Warnings {
		logger.Warn(e.Message, "run", report.RunID)
	}
	if report.HasErrors() {
		for _, e := range report.Errors {
			logger.Error(e.Message, "run", report.RunID, "line", e.Line)
		}
		return 1
	}
	return 0
}

// writeAndClose writes the report and closes w. A failed close is an error:
// buffered bytes may not have reached the file.
func writeAndClose(w io.WriteCloser, r Report, format string) error {
	if err := WriteReport(w, r, format); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

func readScript(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
