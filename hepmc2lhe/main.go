package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/hepmc"

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
	input := flag.String("i", "", "Input HepMC file (default: stdin)")
	output := flag.String("o", "", "Output LHE file (default: stdout)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: hepmc2lhe [flags]\n\nConvert HepMC2 ASCII events to the LHE format.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("hepmc2lhe %s\n", lheutils.Version)
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

	in := os.Stdin
	if configuration.FileIn != "" && configuration.FileIn != "-" {
		f, err := os.Open(configuration.FileIn)
		if err != nil {
			message := fmt.Errorf("Error opening input: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if configuration.FileOut != "" && configuration.FileOut != "-" {
		if err := os.MkdirAll(filepath.Dir(configuration.FileOut), 0o755); err != nil {
			message := fmt.Errorf("Error creating output directory: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}

	stream := &hepmcStream{dec: hepmc.NewDecoder(bufio.NewReader(in))}
	opts := lheutils.WriteOptions{Compress: configuration.Compress}
	res, err := lheutils.WriteOutput(configuration.FileOut, lheutils.SyntheticInit(),
		lheutils.Limit(stream, configuration.MaxEvents), opts)
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

// hepmcStream adapts a HepMC decoder to the event stream the LHE writer
// pulls from.
type hepmcStream struct {
	dec *hepmc.Decoder
	evt *lhef.Event
	err error
}

func (s *hepmcStream) Next() bool {
	if s.err != nil {
		return false
	}
	var evt hepmc.Event
	if err := s.dec.Decode(&evt); err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	converted, err := lheutils.FromHepMC(&evt)
	hepmc.Delete(&evt)
	if err != nil {
		s.err = err
		return false
	}
	s.evt = converted
	return true
}

func (s *hepmcStream) Event() *lhef.Event {
	return s.evt
}

func (s *hepmcStream) Err() error {
	return s.err
}
