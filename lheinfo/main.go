package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	sqlx "github.com/jmoiron/sqlx"

	lheutils "github.com/next-exp/lheutils/pkg"
)

var dbConn *sqlx.DB
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
	catalog := flag.Bool("catalog", false, "Record the per-file summaries in the catalog database")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: lheinfo [flags] [file...]\n\nPrint beam, cross-section and channel summaries of LHE files.\nWithout arguments it reads stdin.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("lheinfo %s\n", lheutils.Version)
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
	if setFlags["catalog"] {
		configuration.NoDB = !*catalog
	}

	lheutils.SetConfiguration(configuration)
	lheutils.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		lheutils.PrintConfiguration(configuration, logger)
	}

	if !configuration.NoDB {
		dbConn, err = lheutils.ConnectToCatalog(configuration)
		if err != nil {
			message := fmt.Errorf("Error connecting to catalog: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		defer dbConn.Close()
		if err := lheutils.CreateCatalogTables(dbConn); err != nil {
			message := fmt.Errorf("Error creating catalog tables: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}

	names := flag.Args()
	if len(names) == 0 {
		names = []string{""} // stdin
	}

	total := &lheutils.Summary{}
	failed := false
	for _, name := range names {
		fi, err := summarize(name)
		if err != nil {
			message := fmt.Errorf("Error reading %s: %w", displayName(name), err)
			logger.Error(message.Error())
			failed = true
			continue
		}
		printFileInfo(fi)
		total.Add(fi.Summary())
		if dbConn != nil {
			if err := lheutils.RecordFileInfo(dbConn, fi); err != nil {
				message := fmt.Errorf("Error recording %s in catalog: %w", fi.Name, err)
				logger.Error(message.Error())
				failed = true
			}
		}
	}

	// with the catalog enabled the closing block accumulates everything ever
	// recorded, not just this invocation
	if dbConn != nil {
		catalogTotal, err := lheutils.AccumulateCatalog(dbConn)
		if err != nil {
			message := fmt.Errorf("Error accumulating catalog: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		total = catalogTotal
	}
	printSummary(total)

	if failed {
		os.Exit(1)
	}
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "<stdin>"
	}
	return name
}

func summarize(name string) (*lheutils.FileInfo, error) {
	reader, err := lheutils.OpenInput(name)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return lheutils.Summarize(displayName(name), reader.Init(), reader)
}

func printFileInfo(fi *lheutils.FileInfo) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("File: %s\n", fi.Name)

	info := fi.Init.InitInfo
	fmt.Printf("Beam A: %d (PDF: %d) @ %v GeV\n", info.BeamA, info.PDFSetA, info.EnergyA)
	fmt.Printf("Beam B: %d (PDF: %d) @ %v GeV\n", info.BeamB, info.PDFSetB, info.EnergyB)
	if len(fi.Init.WeightGroups) > 0 {
		fmt.Println("  Weight Groups:")
		for _, wg := range fi.Init.WeightGroups {
			fmt.Printf("    %s: %d weights\n", wg.Name, len(wg.Weights))
		}
	}
	fmt.Printf("Number of events: %d (negative: %.2f%%)\n", fi.Events, 100*fi.NegativeRatio())

	for _, proc := range fi.Processes {
		fmt.Printf("Process %d cross-section: (%.3e +- %.3e) pb\n", proc.ProcID, proc.XSection, proc.XError)
		channels := append([]lheutils.Channel(nil), proc.Channels...)
		lheutils.SortChannelsByEvents(channels)
		for _, ch := range channels {
			fmt.Printf("  %s\n", channelLine(ch, fi.Events))
		}
	}
}

func printSummary(s *lheutils.Summary) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total number of events: %d (negative: %.2f%%)\n", s.Events, 100*s.NegativeRatio())
	channels := append([]lheutils.Channel(nil), s.Channels...)
	lheutils.SortChannelsByEvents(channels)
	for _, ch := range channels {
		fmt.Println(channelLine(ch, s.Events))
	}
	fmt.Println(strings.Repeat("=", 60))
}

func channelLine(ch lheutils.Channel, total int) string {
	share := 0.0
	if total > 0 {
		share = 100 * float64(ch.Events) / float64(total)
	}
	return fmt.Sprintf("%s -> %s: %s events (%.1f%%, negative: %.2f%%)",
		formatIDs(ch.Incoming), formatIDs(ch.Outgoing),
		humanize.Comma(int64(ch.Events)), share, 100*ch.NegativeRatio())
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
