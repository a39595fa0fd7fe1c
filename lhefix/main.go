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
	suffix := flag.String("suffix", ".fix.lhe.gz", "Suffix replacing the input extension on fixed files")
	compress := flag.Bool("compress", false, "Compress output files regardless of suffix")
	weightFormat := flag.String("weight-format", "rwgt", "Weight format: rwgt, weights or none")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lhefix [flags] [file...]\n\nRewrite truncated LHE files with a proper closing tag.\nWithout arguments it repairs stdin onto stdout.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lhefix %s\n", lheutils.Version)
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

	// with no file arguments the repaired stream goes to stdout
	if flag.NArg() == 0 {
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
	opts := lheutils.WriteOptions{Compress: configuration.Compress, Mode: mode, Repair: true}

	if flag.NArg() == 0 {
		if err := fixStdin(mode); err != nil {
			message := fmt.Errorf("Error processing stdin: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		return
	}

	failed := false
	for _, name := range flag.Args() {
		if err := fixFile(name, *suffix, opts); err != nil {
			message := fmt.Errorf("Error fixing %s: %w", name, err)
			logger.Error(message.Error())
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// fixStdin repairs a stream without any reporting, so lhefix can sit in the
// middle of a pipe.
func fixStdin(mode lhef.WeightMode) error {
	reader, err := lhef.NewReader(os.Stdin)
	if err != nil {
		return err
	}
	opts := lheutils.WriteOptions{Mode: mode, Repair: true}
	_, err = lheutils.Write(os.Stdout, reader.Init(), reader, opts)
	return err
}

func fixFile(name, suffix string, opts lheutils.WriteOptions) error {
	reader, err := lheutils.OpenInput(name)
	if err != nil {
		return err
	}
	defer reader.Close()

	// fixed files keep the permissions of the file they were derived from
	if st, err := os.Stat(name); err == nil {
		opts.FileMode = st.Mode()
	}

	output := fixedName(name, suffix)
	res, err := lheutils.WriteFile(output, reader.Init(), reader, opts)
	if err != nil {
		return err
	}
	if res.Truncated {
		fmt.Printf("%s terminating LHE file at event %d due to: %v\n", name, res.Events, res.Cause)
	}
	fmt.Printf("%s fixed: processed %d events -> %s\n", name, res.Events, output)
	return nil
}

// fixedName swaps the last extension of name for suffix, so run.lhe becomes
// run.fix.lhe.gz and run.lhe.gz becomes run.lhe.fix.lhe.gz.
func fixedName(name, suffix string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)] + suffix
}
