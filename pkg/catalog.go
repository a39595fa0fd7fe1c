package lheutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

// ConnectToCatalog opens the summary catalog selected by the configuration.
// The sqlite driver keeps the catalog in a local file, the mysql driver
// connects to a shared server.
func ConnectToCatalog(config Configuration) (*sqlx.DB, error) {
	switch config.DBDriver {
	case "sqlite":
		if config.Verbosity > 0 {
			message := fmt.Sprintf("Opening catalog %s", config.DBPath)
			logInfo(message, "database")
		}
		return sqlx.Connect("sqlite", config.DBPath)
	case "mysql":
		port := "3306"
		dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true",
			config.User, config.Passwd, config.Host, port, config.DBName)
		if config.Verbosity > 0 {
			message := fmt.Sprintf("Connecting to catalog on %s", config.Host)
			logInfo(message, "database")
		}
		return sqlx.Connect("mysql", dbURI)
	}
	return nil, fmt.Errorf("unknown catalog driver: %q", config.DBDriver)
}

// Table definitions use only types both drivers understand.
const createFilesTable = `
CREATE TABLE IF NOT EXISTS lhe_files (
	filename  VARCHAR(512) NOT NULL,
	beam_a    BIGINT NOT NULL,
	beam_b    BIGINT NOT NULL,
	energy_a  DOUBLE PRECISION NOT NULL,
	energy_b  DOUBLE PRECISION NOT NULL,
	pdf_set_a BIGINT NOT NULL,
	pdf_set_b BIGINT NOT NULL,
	strategy  BIGINT NOT NULL,
	events    BIGINT NOT NULL,
	negative  BIGINT NOT NULL,
	recorded  VARCHAR(64) NOT NULL,
	PRIMARY KEY (filename)
)`

const createChannelsTable = `
CREATE TABLE IF NOT EXISTS lhe_channels (
	filename VARCHAR(512) NOT NULL,
	proc_id  BIGINT NOT NULL,
	incoming VARCHAR(255) NOT NULL,
	outgoing VARCHAR(255) NOT NULL,
	events   BIGINT NOT NULL,
	negative BIGINT NOT NULL,
	PRIMARY KEY (filename, proc_id, incoming, outgoing)
)`

func CreateCatalogTables(db *sqlx.DB) error {
	if _, err := db.Exec(createFilesTable); err != nil {
		return &ErrCreateTable{TableName: "lhe_files", Err: err}
	}
	if _, err := db.Exec(createChannelsTable); err != nil {
		return &ErrCreateTable{TableName: "lhe_channels", Err: err}
	}
	return nil
}

// FileRow is one lhe_files record.
type FileRow struct {
	Filename string  `db:"filename"`
	BeamA    int64   `db:"beam_a"`
	BeamB    int64   `db:"beam_b"`
	EnergyA  float64 `db:"energy_a"`
	EnergyB  float64 `db:"energy_b"`
	PDFSetA  int64   `db:"pdf_set_a"`
	PDFSetB  int64   `db:"pdf_set_b"`
	Strategy int64   `db:"strategy"`
	Events   int64   `db:"events"`
	Negative int64   `db:"negative"`
	Recorded string  `db:"recorded"`
}

// ChannelRow is one lhe_channels record. Incoming and Outgoing hold the
// sorted PDG ids joined with commas.
type ChannelRow struct {
	Filename string `db:"filename"`
	ProcID   int64  `db:"proc_id"`
	Incoming string `db:"incoming"`
	Outgoing string `db:"outgoing"`
	Events   int64  `db:"events"`
	Negative int64  `db:"negative"`
}

const insertFileRow = `
INSERT INTO lhe_files
	(filename, beam_a, beam_b, energy_a, energy_b, pdf_set_a, pdf_set_b, strategy, events, negative, recorded)
VALUES
	(:filename, :beam_a, :beam_b, :energy_a, :energy_b, :pdf_set_a, :pdf_set_b, :strategy, :events, :negative, :recorded)`

const insertChannelRow = `
INSERT INTO lhe_channels
	(filename, proc_id, incoming, outgoing, events, negative)
VALUES
	(:filename, :proc_id, :incoming, :outgoing, :events, :negative)`

// RecordFileInfo stores the summary of one file, replacing any previous
// record for the same filename.
func RecordFileInfo(db *sqlx.DB, fi *FileInfo) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("error starting catalog transaction: %w", err)
	}
	if err := recordFileInfo(tx, fi); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing catalog transaction: %w", err)
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Recorded %s in catalog", fi.Name)
		logInfo(message, "database")
	}
	return nil
}

func recordFileInfo(tx *sqlx.Tx, fi *FileInfo) error {
	if _, err := tx.Exec("DELETE FROM lhe_files WHERE filename = ?", fi.Name); err != nil {
		return fmt.Errorf("error clearing previous file record: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM lhe_channels WHERE filename = ?", fi.Name); err != nil {
		return fmt.Errorf("error clearing previous channel records: %w", err)
	}

	info := fi.Init.InitInfo
	row := FileRow{
		Filename: fi.Name,
		BeamA:    info.BeamA,
		BeamB:    info.BeamB,
		EnergyA:  info.EnergyA,
		EnergyB:  info.EnergyB,
		PDFSetA:  info.PDFSetA,
		PDFSetB:  info.PDFSetB,
		Strategy: info.WeightingStrategy,
		Events:   int64(fi.Events),
		Negative: int64(fi.Negative),
		Recorded: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := tx.NamedExec(insertFileRow, row); err != nil {
		return fmt.Errorf("error inserting file record: %w", err)
	}

	for _, ps := range fi.Processes {
		for _, ch := range ps.Channels {
			crow := ChannelRow{
				Filename: fi.Name,
				ProcID:   ps.ProcID,
				Incoming: idKey(ch.Incoming),
				Outgoing: idKey(ch.Outgoing),
				Events:   int64(ch.Events),
				Negative: int64(ch.Negative),
			}
			if _, err := tx.NamedExec(insertChannelRow, crow); err != nil {
				return fmt.Errorf("error inserting channel record: %w", err)
			}
		}
	}
	return nil
}

// CatalogFiles lists every recorded file, oldest name first.
func CatalogFiles(db *sqlx.DB) ([]FileRow, error) {
	query := "SELECT * FROM lhe_files ORDER BY filename"
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logInfo(message, "database")
	}
	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	var files []FileRow
	for rows.Next() {
		result := FileRow{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		files = append(files, result)
	}
	return files, rows.Err()
}

// AccumulateCatalog folds every recorded file into one Summary without
// re-reading event data. Channels merge on particle content, the same way
// Summary.Add combines fresh summaries.
func AccumulateCatalog(db *sqlx.DB) (*Summary, error) {
	totals := struct {
		Events   int64 `db:"events"`
		Negative int64 `db:"negative"`
	}{}
	query := "SELECT COALESCE(SUM(events), 0) AS events, COALESCE(SUM(negative), 0) AS negative FROM lhe_files"
	if err := db.Get(&totals, query); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	rows, err := db.Queryx("SELECT * FROM lhe_channels ORDER BY filename")
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		result := ChannelRow{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		incoming, err := parseIDList(result.Incoming)
		if err != nil {
			return nil, err
		}
		outgoing, err := parseIDList(result.Outgoing)
		if err != nil {
			return nil, err
		}
		channels = append(channels, Channel{
			Incoming: incoming,
			Outgoing: outgoing,
			Events:   int(result.Events),
			Negative: int(result.Negative),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Summary{
		Events:   int(totals.Events),
		Negative: int(totals.Negative),
		Channels: mergeChannels(channels),
	}, nil
}

// parseIDList reverses idKey.
func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing PDG id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CatalogChannels lists the channels recorded for one file.
func CatalogChannels(db *sqlx.DB, filename string) ([]ChannelRow, error) {
	query := "SELECT * FROM lhe_channels WHERE filename = ? ORDER BY events DESC"
	rows, err := db.Queryx(query, filename)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	var channels []ChannelRow
	for rows.Next() {
		result := ChannelRow{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		channels = append(channels, result)
	}
	return channels, rows.Err()
}
