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
	where := flag.String("where", "", "Selection expression, e.g. 'proc_id == 1 && 6 in outgoing'")
	compress := flag.Bool("compress", false, "Compress the output file")
	weightFormat := flag.String("weight-format", "rwgt", "Weight format: rwgt, weights or none")
	maxEvents := flag.Int("max-events", 0, "Stop after writing this many selected events")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lhefilter -where EXPR [flags] [input [output]]\n\nKeep the events matching a boolean selection expression.\nWithout arguments it reads stdin and writes stdout.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lhefilter %s\n", lheutils.Version)
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
	if setFlags["max-events"] {
		configuration.MaxEvents = *maxEvents
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

	if *where == "" {
		logger.Error("Error: -where selection expression is required")
		os.Exit(1)
	}
	selection, err := lheutils.CompileFilter(*where)
	if err != nil {
		logger.Error(err.Error())
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

	var stream lheutils.EventStream = lheutils.NewTransformStream(reader, selection)
	stream = lheutils.Limit(stream, configuration.MaxEvents)

	if configuration.FileOut != "" && configuration.FileOut != "-" {
		if err := os.MkdirAll(filepath.Dir(configuration.FileOut), 0o755); err != nil {
			message := fmt.Errorf("Error creating output directory: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}

	opts := lheutils.WriteOptions{Compress: configuration.Compress, Mode: mode}
	res, err := lheutils.WriteOutput(configuration.FileOut, reader.Init(), stream, opts)
	if err != nil {
		message := fmt.Errorf("Error filtering events: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Selected %d events", res.Events)
		logger.Info(message, "main")
	}
}
