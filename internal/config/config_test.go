package config

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	var c Config
	parser := flags.NewParser(&c, flags.Default&^flags.HelpFlag)
	_, err := parser.ParseArgs(nil)
	require.NoError(t, err)

	require.Equal(t, "snomed-data/import", c.Snomed.ImportDirectory)
	require.Equal(t, "900000000000509007", c.Snomed.DialectRefsetID)
	require.True(t, c.Snomed.ActiveOnly)
	require.Equal(t, 1000, c.Snomed.BatchSize)
	require.False(t, c.Snomed.EnableSemanticNormalization)
	require.Equal(t, 10000, c.Snomed.ProgressLogInterval)
	require.Equal(t, 8080, c.Server.Port)
	require.Equal(t, "info", c.Log.Level)

	require.Equal(t, "snomed-data/import/Snapshot", c.Snomed.SnapshotDirectory())
}

func TestConfig_FlagsOverrideDefaults(t *testing.T) {
	var c Config
	parser := flags.NewParser(&c, flags.Default&^flags.HelpFlag)
	_, err := parser.ParseArgs([]string{
		"--snomed.import-directory=/data/snomed",
		"--snomed.active-only=false",
		"--snomed.batch-size=500",
	})
	require.NoError(t, err)

	require.Equal(t, "/data/snomed", c.Snomed.ImportDirectory)
	require.False(t, c.Snomed.ActiveOnly)
	require.Equal(t, 500, c.Snomed.BatchSize)
	require.Equal(t, "/data/snomed/Snapshot", c.Snomed.SnapshotDirectory())
}
