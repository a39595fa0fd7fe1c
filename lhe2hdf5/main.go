package main

import (
	"flag"
	"fmt"
	"os"

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
	output := flag.String("o", "", "Output HDF5 file")
	maxEvents := flag.Int("max-events", 0, "Stop after converting this many events")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lhe2hdf5 [flags] -o out.h5\n\nExport LHE events to columnar HDF5 tables.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lhe2hdf5 %s\n", lheutils.Version)
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
	if setFlags["max-events"] {
		configuration.MaxEvents = *maxEvents
	}

	lheutils.SetConfiguration(configuration)
	lheutils.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		lheutils.PrintConfiguration(configuration, logger)
	}

	if configuration.FileOut == "" || configuration.FileOut == "-" {
		logger.Error("Error: -o output file is required")
		os.Exit(1)
	}

	reader, err := lheutils.OpenInput(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening input: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	defer reader.Close()

	stream := lheutils.Limit(reader, configuration.MaxEvents)
	count, err := lheutils.ExportHDF5(reader.Init(), stream, configuration.FileOut)
	if err != nil {
		message := fmt.Errorf("Error exporting to HDF5: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Converted %d events to %s", count, configuration.FileOut)
		logger.Info(message, "main")
	}
}
