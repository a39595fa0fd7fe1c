package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/hepmc"

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
	output := flag.String("o", "", "Output HepMC file (default: stdout)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lhe2hepmc [flags]\n\nConvert LHE events to the HepMC2 ASCII format.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lhe2hepmc %s\n", lheutils.Version)
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

	reader, err := lheutils.OpenInput(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening input: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	defer reader.Close()

	out := os.Stdout
	if configuration.FileOut != "" && configuration.FileOut != "-" {
		if err := os.MkdirAll(filepath.Dir(configuration.FileOut), 0o755); err != nil {
			message := fmt.Errorf("Error creating output directory: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		f, err := os.Create(configuration.FileOut)
		if err != nil {
			message := fmt.Errorf("Error creating output file: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	enc := hepmc.NewEncoder(w)

	number := 0
	stream := lheutils.Limit(reader, configuration.MaxEvents)
	for stream.Next() {
		number++
		evt, err := lheutils.ToHepMC(reader.Init(), stream.Event(), number)
		if err != nil {
			message := fmt.Errorf("Error converting event %d: %w", number, err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		err = enc.Encode(evt)
		hepmc.Delete(evt)
		if err != nil {
			message := fmt.Errorf("Error encoding event %d: %w", number, err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}
	if err := stream.Err(); err != nil {
		message := fmt.Errorf("Error reading events: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}

	if err := enc.Close(); err != nil {
		message := fmt.Errorf("Error closing output: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		message := fmt.Errorf("Error closing output: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Converted %d events", number)
		logger.Info(message, "main")
	}
}
