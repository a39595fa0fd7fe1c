package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/next-exp/lheutils/lhef"
	lheutils "github.com/next-exp/lheutils/pkg"
)

var configuration lheutils.Configuration

var (
	logger         lheutils.StdLogger
	VerbosityLevel int
)

func init() {
	logger = lheutils.NewStdLogger()
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	version := flag.Bool("version", false, "Print version and exit")
	output := flag.String("o", "", "Output LHE file (default: stdout, a .gz name compresses)")
	weightFormat := flag.String("weight-format", "rwgt", "Weight format: rwgt, weights or none")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lhemerge [flags] file1 file2 [file...]\n\nConcatenate LHE files that share the same init block.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lhemerge %s\n", lheutils.Version)
		return
	}

	var err error
	configuration, err = lheutils.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if setFlags["o"] {
		configuration.FileOut = *output
	}
	if setFlags["weight-format"] {
		configuration.WeightFormat = *weightFormat
	}

	// keep the event stream clean when it goes to stdout
	if configuration.FileOut == "" || configuration.FileOut == "-" {
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		logger.InfoLog = slog.New(lheutils.NewHandler(os.Stderr, opts))
	}
	lheutils.SetConfiguration(configuration)
	lheutils.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		lheutils.PrintConfiguration(configuration, logger)
	}

	mode, err := lhef.ParseWeightMode(configuration.WeightFormat)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	merged, err := lheutils.Merge(flag.Args()...)
	if err != nil {
		message := fmt.Errorf("Error merging files: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	defer merged.Close()

	if configuration.FileOut != "" && configuration.FileOut != "-" {
		if err := os.MkdirAll(filepath.Dir(configuration.FileOut), 0o755); err != nil {
			message := fmt.Errorf("Error creating output directory: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}

	opts := lheutils.WriteOptions{Mode: mode}
	res, err := lheutils.WriteOutput(configuration.FileOut, merged.Init(), merged, opts)
	if err != nil {
		message := fmt.Errorf("Error merging files: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Merged %d files with %d total events", flag.NArg(), res.Events)
		logger.Info(message, "main")
	}
}
