package seed

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/graph"
	"github.com/estuary/snomed-seed/internal/rf2"
)

// Pipeline drives the three seeding phases plus Verification against a
// graph.Repository, checkpointing progress after each Phase 1 batch flush,
// every progress interval in Phase 3, at the end of Phase 2, and on pause
// (§4.4).
type Pipeline struct {
	Repo graph.Repository

	// Skipped counts relationship rows dropped because an endpoint vertex
	// was absent (§3 invariant 4). It is reset at the start of every Seed
	// call; it is diagnostic only and not part of Result.
	Skipped int64
}

// NewPipeline returns a Pipeline backed by repo.
func NewPipeline(repo graph.Repository) *Pipeline {
	return &Pipeline{Repo: repo}
}

// Seed runs the pipeline to completion or to the next pause/failure point
// (§4.4). If forceRestart is set, any existing checkpoint for
// opts.SnapshotDirectory is cleared before (re)starting.
func (p *Pipeline) Seed(ctx context.Context, store *checkpoint.Store, opts Options, forceRestart bool) Result {
	opts = opts.withDefaults()
	p.Skipped = 0
	start := time.Now()

	if forceRestart {
		store.ClearCheckpoint(opts.SnapshotDirectory)
	}

	cpOpts := checkpoint.Options{
		ActiveOnly:          opts.ActiveOnly,
		BatchSize:           opts.BatchSize,
		DialectRefsetID:     opts.DialectRefsetID,
		ProgressLogInterval: opts.ProgressLogInterval,
		VerifyAfterSeed:     opts.VerifyAfterSeed,
		StrictEdgeDedup:     opts.StrictEdgeDedup,
	}

	cp, err := store.GetOrCreate(opts.SnapshotDirectory, cpOpts)
	if err != nil {
		return p.fail(store, start, err)
	}

	fs, err := rf2.Locate(opts.SnapshotDirectory)
	if err != nil {
		return p.fail(store, start, err)
	}

	resumePhase := resumePhaseFor(cp)

	concepts := cp.ConceptsSeeded
	descriptions := cp.DescriptionsProcessed
	relationships := cp.RelationshipsSeeded

	log.WithFields(log.Fields{
		"jobId":       cp.JobID,
		"resumePhase": resumePhase.String(),
		"directory":   opts.SnapshotDirectory,
	}).Info("starting snomed seed")

	if resumePhase <= checkpoint.Concepts {
		store.AdvancePhase(checkpoint.Concepts)
		resumeFromLine := 0
		if resumePhase == checkpoint.Concepts {
			resumeFromLine = cp.LastProcessedLine
		}

		var paused bool
		concepts, paused, err = p.runConcepts(ctx, fs.ConceptFile, store, opts, resumeFromLine, concepts)
		if err != nil {
			return p.fail(store, start, err)
		}
		if paused {
			return p.pause(store, start, concepts, descriptions, relationships)
		}
	}

	if resumePhase <= checkpoint.Descriptions {
		store.AdvancePhase(checkpoint.Descriptions)

		var paused bool
		descriptions, paused, err = p.runDescriptions(ctx, fs, store, opts)
		if err != nil {
			return p.fail(store, start, err)
		}
		if paused {
			return p.pause(store, start, concepts, descriptions, relationships)
		}
	}

	if resumePhase <= checkpoint.Relationships {
		store.AdvancePhase(checkpoint.Relationships)
		resumeFromLine := 0
		if resumePhase == checkpoint.Relationships {
			resumeFromLine = cp.LastProcessedLine
		}

		var paused bool
		relationships, paused, err = p.runRelationships(ctx, fs.RelationshipFile, store, opts, resumeFromLine, relationships)
		if err != nil {
			return p.fail(store, start, err)
		}
		if paused {
			return p.pause(store, start, concepts, descriptions, relationships)
		}
	}

	if opts.VerifyAfterSeed {
		store.AdvancePhase(checkpoint.Verification)
		if v, err := Verify(ctx, p.Repo); err != nil {
			log.WithError(err).Warn("post-seed verification failed to run")
		} else if len(v.Errors) > 0 {
			log.WithField("errors", v.Errors).Warn("post-seed verification reported issues")
		}
	}

	store.MarkCompleted(time.Since(start))

	return Result{
		OK:            true,
		Concepts:      concepts,
		Descriptions:  descriptions,
		Relationships: relationships,
		Duration:      time.Since(start),
	}
}

// resumePhaseFor computes where a (re)started run should pick up (§4.4).
func resumePhaseFor(cp checkpoint.Checkpoint) checkpoint.Phase {
	switch cp.Phase {
	case checkpoint.NotStarted:
		return checkpoint.Concepts
	case checkpoint.Paused, checkpoint.Failed:
		switch {
		case cp.RelationshipsSeeded > 0:
			return checkpoint.Relationships
		case cp.DescriptionsProcessed > 0:
			return checkpoint.Descriptions
		case cp.ConceptsSeeded > 0:
			return checkpoint.Concepts
		default:
			return checkpoint.Concepts
		}
	default:
		return cp.Phase
	}
}

func (p *Pipeline) pause(store *checkpoint.Store, start time.Time, concepts, descriptions, relationships int64) Result {
	store.MarkPaused(time.Since(start))
	return Result{
		OK:            true,
		Error:         "Paused",
		Concepts:      concepts,
		Descriptions:  descriptions,
		Relationships: relationships,
		Duration:      time.Since(start),
	}
}

func (p *Pipeline) fail(store *checkpoint.Store, start time.Time, err error) Result {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		store.MarkPaused(time.Since(start))
		return Result{OK: true, Error: "Paused", Duration: time.Since(start)}
	}

	log.WithError(err).Error("snomed seed failed")
	store.MarkFailed(err.Error(), time.Since(start))
	return Result{OK: false, Error: err.Error(), Duration: time.Since(start)}
}
