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
	eventNumber := flag.Int("event", 0, "Show the Nth event (1-indexed)")
	showInit := flag.Bool("init", false, "Show the init block")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lheshow [flags] [file...]\n\nPrint the init block or a single event of LHE files.\nWithout arguments it reads stdin.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lheshow %s\n", lheutils.Version)
		return
	}

	var err error
	configuration, err = lheutils.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	lheutils.SetConfiguration(configuration)
	lheutils.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		lheutils.PrintConfiguration(configuration, logger)
	}

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if setFlags["event"] == setFlags["init"] {
		logger.Error("Error: exactly one of -event N or -init is required")
		os.Exit(1)
	}
	if setFlags["event"] && *eventNumber < 1 {
		message := fmt.Sprintf("Error: Event number must be positive (got %d)", *eventNumber)
		logger.Error(message)
		os.Exit(1)
	}

	names := flag.Args()
	if len(names) == 0 {
		names = []string{""} // stdin
	}
	banner := len(names) > 1

	for _, name := range names {
		var err error
		if *showInit {
			err = printInit(name, banner)
		} else {
			err = printEvent(name, *eventNumber, banner)
		}
		if err != nil {
			logger.Error("Error: " + err.Error())
			os.Exit(1)
		}
	}
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "<stdin>"
	}
	return name
}

func printInit(name string, banner bool) error {
	reader, err := lheutils.OpenInput(name)
	if err != nil {
		return err
	}
	defer reader.Close()

	if banner {
		fmt.Printf("=== %s ===\n", displayName(name))
	}
	fmt.Print(reader.Init().String())
	return nil
}

func printEvent(name string, number int, banner bool) error {
	reader, err := lheutils.OpenInput(name)
	if err != nil {
		return err
	}
	defer reader.Close()

	count := 0
	for reader.Next() {
		count++
		if count == number {
			if banner {
				fmt.Printf("=== %s ===\n", displayName(name))
			}
			fmt.Print(reader.Event().String())
			return nil
		}
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return fmt.Errorf("Event %d not found in %s. File has %d events.",
		number, displayName(name), count)
}
