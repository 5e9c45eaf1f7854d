// Package seed implements the multi-phase SNOMED CT seeding pipeline (C5):
// Concepts, Descriptions, and Relationships phases plus a non-fatal
// Verification phase, resumable via the checkpoint store and cooperatively
// pausable at row and batch boundaries.
package seed

// defaultBatchSize is used when Options.BatchSize is zero (§4.4.1).
const defaultBatchSize = 1000

// defaultProgressLogInterval is used when Options.ProgressLogInterval is
// zero (§4.4.1).
const defaultProgressLogInterval = 10_000

// defaultDialectRefsetID is the US English language refset, used when
// Options.DialectRefsetID is empty (§6.5).
const defaultDialectRefsetID = "900000000000509007"

// flushConcurrency is the fixed semaphore ceiling for Phase 1's batched
// upserts (§4.4.1, §5).
const flushConcurrency = 16

// Options configures a single Seed invocation (§4.4, §6.5).
type Options struct {
	// SnapshotDirectory is the RF2 Snapshot directory containing
	// Terminology/ and Refset/Language/ (§6.1). It is also the
	// checkpoint's rf2Directory.
	SnapshotDirectory string

	ActiveOnly          bool
	BatchSize           int
	DialectRefsetID     string
	ProgressLogInterval int
	VerifyAfterSeed     bool

	// StrictEdgeDedup opts into the process-local edge dedup described in
	// SPEC_FULL.md's Open Question resolution: duplicates are suppressed
	// only within the current run, not across a prior crash.
	StrictEdgeDedup bool
}

// withDefaults returns a copy of o with zero-valued fields replaced by
// their specification defaults.
func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.ProgressLogInterval <= 0 {
		o.ProgressLogInterval = defaultProgressLogInterval
	}
	if o.DialectRefsetID == "" {
		o.DialectRefsetID = defaultDialectRefsetID
	}
	return o
}
