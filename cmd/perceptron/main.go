// Package main provides the perceptron CLI.
//
// Usage:
//
//	perceptron train [-v] [-log-format text|json] -config run.yaml
//	perceptron train run.cfg
//	perceptron infer [-no-verify] [-lenient] -weights weights.born < inputs.txt
//	perceptron infer -layers 2-2-1 -weights weights.txt < inputs.txt
//	perceptron version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/born-ml/perceptron/internal/config"
	"github.com/born-ml/perceptron/internal/driver"
	"github.com/born-ml/perceptron/internal/mlp"
	"github.com/born-ml/perceptron/internal/serialization"
)

const version = "v0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "perceptron: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return flag.ErrHelp
	}

	switch args[0] {
	case "train":
		return trainCmd(ctx, args[1:], stdout, stderr)
	case "infer":
		return inferCmd(args[1:], stdin, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "perceptron %s\n", version)
		return nil
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "perceptron - multilayer perceptron trainer")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train a network from a configuration file")
	fmt.Fprintln(w, "  infer      Run saved weights on input vectors read from stdin")
	fmt.Fprintln(w, "  version    Show version")
}

func trainCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to the run configuration (.yaml/.yml or line format)")
	verbose := fs.Bool("v", false, "Log epoch progress")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *configPath
	if path == "" && fs.NArg() == 1 {
		path = fs.Arg(0)
	}
	if path == "" || fs.NArg() > 1 || (*configPath != "" && fs.NArg() > 0) {
		return errors.New("train: expected exactly one configuration file")
	}

	logger, err := newLogger(stderr, *logFormat, *verbose)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	report, err := driver.Run(ctx, cfg, driver.Deps{Logger: logger})
	if report != nil {
		if werr := driver.WriteReport(stdout, report); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func inferCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	weights := fs.String("weights", "", "Weight file (.born or text)")
	layers := fs.String("layers", "", "Layer widths, e.g. 2-2-1 (required for text weights)")
	configPath := fs.String("config", "", "Take the layer widths from a run configuration")
	noVerify := fs.Bool("no-verify", false, "Skip the .born data checksum")
	lenient := fs.Bool("lenient", false, "Accept .born tensors in any order, as long as each fits the data section")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *weights == "" {
		return errors.New("infer: -weights is required")
	}

	var topo mlp.Topology
	switch {
	case *layers != "" && *configPath != "":
		return errors.New("infer: use either -layers or -config")
	case *layers != "":
		t, err := mlp.ParseTopology(*layers)
		if err != nil {
			return err
		}
		topo = t
	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		if topo, err = cfg.Topology(); err != nil {
			return err
		}
	}

	opts := serialization.ReaderOptions{SkipChecksumValidation: *noVerify}
	if *lenient {
		opts.ValidationLevel = serialization.ValidationNormal
	}
	net, err := driver.LoadNetwork(*weights, topo, opts)
	if err != nil {
		return err
	}
	return driver.Infer(net, stdin, stdout)
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", format)
	}
}
