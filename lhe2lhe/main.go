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
	compress := flag.Bool("compress", false, "Compress the output file")
	weightFormat := flag.String("weight-format", "rwgt", "Weight format: rwgt, weights or none")
	appendGroup := flag.String("append-weight-group", "", "Weight group receiving the appended weight")
	appendID := flag.String("append-weight-id", "", "Copy the central weight of every event into this new weight id")
	appendText := flag.String("append-weight-text", "", "Display text of the appended weight")
	onlyID := flag.String("only-weight-id", "", "Keep only this weight, promoting it to the central weight")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lhe2lhe [flags] [input [output]]\n\nConvert an LHE file, controlling compression and the weight blocks.\nWithout arguments it reads stdin and writes stdout.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lhe2lhe %s\n", lheutils.Version)
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
	if setFlags["compress"] {
		configuration.Compress = *compress
	}
	if setFlags["weight-format"] {
		configuration.WeightFormat = *weightFormat
	}
	if flag.NArg() > 0 {
		configuration.FileIn = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		configuration.FileOut = flag.Arg(1)
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
	if (*appendID == "") != (*appendGroup == "") {
		logger.Error("Error: -append-weight-group and -append-weight-id must be given together")
		os.Exit(1)
	}

	reader, err := lheutils.OpenInput(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening input: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	defer reader.Close()

	init := reader.Init()
	if *appendID != "" || *onlyID != "" {
		init = init.Clone()
	}

	var transforms []lheutils.Transform
	if *appendID != "" {
		if _, err := lheutils.AddWeight(init, *appendGroup, *appendID, *appendText); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		transforms = append(transforms, lheutils.AppendWeight(*appendID))
	}
	if *onlyID != "" {
		if err := lheutils.RestrictTo(init, *onlyID); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		transforms = append(transforms, lheutils.RestrictWeight(*onlyID))
	}

	var stream lheutils.EventStream = reader
	if len(transforms) > 0 {
		stream = lheutils.NewTransformStream(stream, transforms...)
	}
	stream = lheutils.Limit(stream, configuration.MaxEvents)

	if configuration.FileOut != "" && configuration.FileOut != "-" {
		if err := os.MkdirAll(filepath.Dir(configuration.FileOut), 0o755); err != nil {
			message := fmt.Errorf("Error creating output directory: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}

	opts := lheutils.WriteOptions{Compress: configuration.Compress, Mode: mode}
	res, err := lheutils.WriteOutput(configuration.FileOut, init, stream, opts)
	if err != nil {
		message := fmt.Errorf("Error during conversion: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Converted %d events", res.Events)
		logger.Info(message, "main")
	}
}
