package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

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
	input := flag.String("i", "", "Input LHE file (default: stdin)")
	output := flag.String("o", "", "Base name for the numbered output files, extension included")
	weightFormat := flag.String("weight-format", "rwgt", "Weight format: rwgt, weights or none")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lhesplit [flags] -o base events_per_file\n\nSplit an LHE file into numbered files of a fixed number of events.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lhesplit %s\n", lheutils.Version)
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
	if setFlags["i"] {
		configuration.FileIn = *input
	}
	if setFlags["o"] {
		configuration.FileOut = *output
	}
	if setFlags["weight-format"] {
		configuration.WeightFormat = *weightFormat
	}

	lheutils.SetConfiguration(configuration)
	lheutils.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		lheutils.PrintConfiguration(configuration, logger)
	}

	if configuration.FileOut == "" || configuration.FileOut == "-" {
		logger.Error("Error: -o base name for the output files is required")
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		logger.Error("Error: the number of events per file is required")
		os.Exit(1)
	}
	size, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		message := fmt.Sprintf("Error: invalid number of events per file %q", flag.Arg(0))
		logger.Error(message)
		os.Exit(1)
	}

	mode, err := lhef.ParseWeightMode(configuration.WeightFormat)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	reader, err := lheutils.OpenInput(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening input: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	defer reader.Close()

	source := configuration.FileIn
	if source == "" || source == "-" {
		source = "<stdin>"
	}

	stream := lheutils.Limit(reader, configuration.MaxEvents)
	opts := lheutils.WriteOptions{Mode: mode}
	if _, err := lheutils.Split(reader.Init(), stream, configuration.FileOut, size, opts); err != nil {
		message := fmt.Errorf("Error splitting %s: %w", source, err)
		logger.Error(message.Error())
		os.Exit(1)
	}
}
