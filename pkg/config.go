package lheutils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

type Configuration struct {
	Verbosity        int    `json:"verbosity" env:"LHEUTILS_VERBOSITY"`
	FileIn           string `json:"file_in"`
	FileOut          string `json:"file_out"`
	Compress         bool   `json:"compress"`
	CompressionLevel int    `json:"compression_level" env:"LHEUTILS_COMPRESSION_LEVEL"`
	WeightFormat     string `json:"weight_format"`
	MaxEvents        int    `json:"max_events"`
	NoDB             bool   `json:"no_db" env:"LHEUTILS_NO_DB"`
	DBDriver         string `json:"db_driver" env:"LHEUTILS_DB_DRIVER"`
	DBPath           string `json:"db_path" env:"LHEUTILS_DB_PATH"`
	Host             string `json:"host" env:"LHEUTILS_DB_HOST"`
	User             string `json:"user" env:"LHEUTILS_DB_USER"`
	Passwd           string `json:"pass" env:"LHEUTILS_DB_PASS"`
	DBName           string `json:"dbname" env:"LHEUTILS_DB_NAME"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// LoadConfiguration builds the tool configuration: defaults, then the
// optional JSON file, then environment overrides.
func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.Verbosity = 0
	config.CompressionLevel = 4
	config.WeightFormat = "rwgt"
	config.MaxEvents = 1000000000
	config.NoDB = true
	config.DBDriver = "sqlite"
	config.DBPath = "lheutils.db"
	config.Host = "localhost"
	config.User = "lhereader"
	config.Passwd = ""
	config.DBName = "LHECATALOG"

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return config, err
		}
		err = json.Unmarshal(data, &config)
		if err != nil {
			return config, err
		}
	}

	err := env.Parse(&config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Compress: %t", config.Compress), "config")
	logger.Info(fmt.Sprintf("Weight format: %s", config.WeightFormat), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
}
