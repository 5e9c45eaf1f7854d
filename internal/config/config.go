// Package config declares the process configuration surface, parsed by
// jessevdk/go-flags from CLI flags and environment variables (§6.5).
package config

import "path/filepath"

// Config is the top-level configuration object.
type Config struct {
	Snomed SnomedConfig `group:"SNOMED CT ingestion" namespace:"snomed" env-namespace:"SNOMED"`
	Server ServerConfig `group:"HTTP server" namespace:"server" env-namespace:"SERVER"`
	Log    LogConfig    `group:"Logging" namespace:"log" env-namespace:"LOG"`
}

// SnomedConfig is the `Snomed` configuration section (§6.5). Every field
// named there is present, including EnableSemanticNormalization, which the
// ingestion core parses but never consumes — it belongs to the
// out-of-scope semantic search subsystem.
type SnomedConfig struct {
	ImportDirectory string `long:"import-directory" env:"IMPORT_DIRECTORY" default:"snomed-data/import" description:"root directory containing the RF2 Snapshot/ distribution"`

	TerminologyVersion string `long:"terminology-version" env:"TERMINOLOGY_VERSION" description:"informational SNOMED CT edition/version label, not interpreted by the core"`

	DialectRefsetID string `long:"dialect-refset-id" env:"DIALECT_REFSET_ID" default:"900000000000509007" description:"language refset id used to resolve each concept's preferred term"`

	ActiveOnly bool `long:"active-only" env:"ACTIVE_ONLY" default:"true" description:"skip inactive RF2 rows when seeding"`

	BatchSize int `long:"batch-size" env:"BATCH_SIZE" default:"1000" description:"concept upsert batch size for Phase 1"`

	EnableSemanticNormalization bool `long:"enable-semantic-normalization" env:"ENABLE_SEMANTIC_NORMALIZATION" description:"reserved for the semantic search subsystem; not consumed by the ingestion core"`

	ProgressLogInterval int `long:"progress-log-interval" env:"PROGRESS_LOG_INTERVAL" default:"10000" description:"log a progress line every N seeded/processed records"`
}

// SnapshotDirectory is the derived Snapshot/ path beneath ImportDirectory
// (§6.1, §6.5).
func (c SnomedConfig) SnapshotDirectory() string {
	return filepath.Join(c.ImportDirectory, "Snapshot")
}

// ServerConfig configures the HTTP control surface's listener.
type ServerConfig struct {
	Port int `long:"port" env:"PORT" default:"8080" description:"HTTP listen port for the control surface"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level string `long:"level" env:"LEVEL" default:"info" description:"logrus level: trace, debug, info, warn, error"`
}
