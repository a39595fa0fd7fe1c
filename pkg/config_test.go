package lheutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lheutils "github.com/next-exp/lheutils/pkg"
)

func TestLoadConfiguration_Defaults(t *testing.T) {
	config, err := lheutils.LoadConfiguration("")
	require.NoError(t, err)

	require.Equal(t, 0, config.Verbosity)
	require.Equal(t, "rwgt", config.WeightFormat)
	require.Equal(t, 1000000000, config.MaxEvents)
	require.Equal(t, 4, config.CompressionLevel)
	require.True(t, config.NoDB)
	require.Equal(t, "sqlite", config.DBDriver)
	require.Equal(t, "lheutils.db", config.DBPath)
	require.Equal(t, "localhost", config.Host)
	require.Equal(t, "LHECATALOG", config.DBName)
}

func TestLoadConfiguration_File(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json")
	body := `{"verbosity": 2, "weight_format": "weights", "compress": true, "max_events": 500}`
	require.NoError(t, os.WriteFile(name, []byte(body), 0o644))

	config, err := lheutils.LoadConfiguration(name)
	require.NoError(t, err)

	require.Equal(t, 2, config.Verbosity)
	require.Equal(t, "weights", config.WeightFormat)
	require.True(t, config.Compress)
	require.Equal(t, 500, config.MaxEvents)
	// untouched keys keep their defaults
	require.Equal(t, "sqlite", config.DBDriver)
}

func TestLoadConfiguration_EnvOverridesFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(name, []byte(`{"verbosity": 1}`), 0o644))
	t.Setenv("LHEUTILS_VERBOSITY", "3")
	t.Setenv("LHEUTILS_DB_DRIVER", "mysql")

	config, err := lheutils.LoadConfiguration(name)
	require.NoError(t, err)

	require.Equal(t, 3, config.Verbosity)
	require.Equal(t, "mysql", config.DBDriver)
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := lheutils.LoadConfiguration(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
