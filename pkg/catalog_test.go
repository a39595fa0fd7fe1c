package lheutils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lheutils "github.com/next-exp/lheutils/pkg"
)

func TestCatalog_RecordAndList(t *testing.T) {
	config := lheutils.Configuration{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "catalog.db"),
	}
	db, err := lheutils.ConnectToCatalog(config)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, lheutils.CreateCatalogTables(db))

	fi, err := lheutils.Summarize("run1.lhe", sampleInit(),
		lheutils.NewSliceStream(ttbarEvent(0.002), ttbarEvent(-0.001), zmumuEvent(0.004)))
	require.NoError(t, err)
	require.NoError(t, lheutils.RecordFileInfo(db, fi))

	files, err := lheutils.CatalogFiles(db)
	require.NoError(t, err)
	require.Len(t, files, 1)
	row := files[0]
	require.Equal(t, "run1.lhe", row.Filename)
	require.Equal(t, int64(2212), row.BeamA)
	require.Equal(t, 6500.0, row.EnergyA)
	require.Equal(t, int64(247000), row.PDFSetA)
	require.Equal(t, int64(-4), row.Strategy)
	require.Equal(t, int64(3), row.Events)
	require.Equal(t, int64(1), row.Negative)
	require.NotEmpty(t, row.Recorded)

	channels, err := lheutils.CatalogChannels(db, "run1.lhe")
	require.NoError(t, err)
	require.Len(t, channels, 2)
	// ordered by event count, busiest first
	require.Equal(t, "21,21", channels[0].Incoming)
	require.Equal(t, "-6,6", channels[0].Outgoing)
	require.Equal(t, int64(2), channels[0].Events)
	require.Equal(t, int64(1), channels[0].Negative)
	require.Equal(t, int64(1), channels[0].ProcID)
	require.Equal(t, "-13,13", channels[1].Outgoing)
	require.Equal(t, int64(2), channels[1].ProcID)
}

func TestCatalog_RecordReplacesPreviousRun(t *testing.T) {
	config := lheutils.Configuration{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "catalog.db"),
	}
	db, err := lheutils.ConnectToCatalog(config)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, lheutils.CreateCatalogTables(db))

	fi, err := lheutils.Summarize("run1.lhe", sampleInit(),
		lheutils.NewSliceStream(ttbarEvent(0.002)))
	require.NoError(t, err)
	require.NoError(t, lheutils.RecordFileInfo(db, fi))

	// record the same file again with more events
	fi, err = lheutils.Summarize("run1.lhe", sampleInit(),
		lheutils.NewSliceStream(ttbarEvent(0.002), zmumuEvent(0.003)))
	require.NoError(t, err)
	require.NoError(t, lheutils.RecordFileInfo(db, fi))

	files, err := lheutils.CatalogFiles(db)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, int64(2), files[0].Events)

	channels, err := lheutils.CatalogChannels(db, "run1.lhe")
	require.NoError(t, err)
	require.Len(t, channels, 2)
}

func TestCatalog_Accumulate(t *testing.T) {
	config := lheutils.Configuration{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "catalog.db"),
	}
	db, err := lheutils.ConnectToCatalog(config)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, lheutils.CreateCatalogTables(db))

	fi, err := lheutils.Summarize("run1.lhe", sampleInit(),
		lheutils.NewSliceStream(ttbarEvent(0.002), ttbarEvent(-0.001)))
	require.NoError(t, err)
	require.NoError(t, lheutils.RecordFileInfo(db, fi))

	fi, err = lheutils.Summarize("run2.lhe", sampleInit(),
		lheutils.NewSliceStream(ttbarEvent(0.005), zmumuEvent(0.004)))
	require.NoError(t, err)
	require.NoError(t, lheutils.RecordFileInfo(db, fi))

	sum, err := lheutils.AccumulateCatalog(db)
	require.NoError(t, err)
	require.Equal(t, 4, sum.Events)
	require.Equal(t, 1, sum.Negative)
	require.Len(t, sum.Channels, 2)

	lheutils.SortChannelsByEvents(sum.Channels)
	require.Equal(t, []int64{21, 21}, sum.Channels[0].Incoming)
	require.Equal(t, []int64{-6, 6}, sum.Channels[0].Outgoing)
	require.Equal(t, 3, sum.Channels[0].Events)
	require.Equal(t, 1, sum.Channels[0].Negative)
	require.Equal(t, []int64{-13, 13}, sum.Channels[1].Outgoing)
	require.Equal(t, 1, sum.Channels[1].Events)
}

func TestCatalog_UnknownDriver(t *testing.T) {
	_, err := lheutils.ConnectToCatalog(lheutils.Configuration{DBDriver: "oracle"})
	require.Error(t, err)
}
