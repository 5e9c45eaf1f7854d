package seed

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/rf2"
)

// conceptBatch is a batch of concept vertex upserts awaiting flush.
type conceptBatch struct {
	items []conceptBatchItem
}

type conceptBatchItem struct {
	conceptID string
	props     map[string]any
}

func (b *conceptBatch) add(item conceptBatchItem) { b.items = append(b.items, item) }
func (b *conceptBatch) full(size int) bool        { return len(b.items) >= size }
func (b *conceptBatch) reset()                    { b.items = b.items[:0] }

// runConcepts executes Phase 1 (§4.4.1): streaming ConceptFile into
// SnomedConcept vertices with bounded-parallel batch flushes, honoring
// line-resume and cooperative pause.
func (p *Pipeline) runConcepts(
	ctx context.Context,
	path string,
	store *checkpoint.Store,
	opts Options,
	resumeFromLine int,
	startCount int64,
) (int64, bool, error) {
	it, err := rf2.OpenConceptFile(path)
	if err != nil {
		return startCount, false, err
	}
	defer it.Close()

	var (
		lineNumber int
		seeded     = startCount
		batch      conceptBatch
		lastLogged = seeded
	)

	flush := func() error {
		if len(batch.items) == 0 {
			return nil
		}
		if err := p.flushConceptBatch(ctx, batch.items); err != nil {
			return err
		}
		seeded += int64(len(batch.items))
		batch.reset()
		store.UpdateConceptsProgress(lineNumber, seeded)

		if seeded-lastLogged >= int64(opts.ProgressLogInterval) {
			log.WithFields(log.Fields{"phase": "Concepts", "conceptsSeeded": seeded}).Info("seeding progress")
			lastLogged = seeded
		}
		return nil
	}

	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			// A cancelled context is normalized to a cooperative pause at
			// the call site; treat it identically here. Any other read
			// error fails the phase.
			if ctx.Err() == nil {
				return seeded, false, err
			}
			if err := flush(); err != nil {
				return seeded, false, err
			}
			return seeded, true, nil
		}
		if !ok {
			break
		}

		lineNumber++
		if lineNumber <= resumeFromLine {
			continue
		}

		if store.IsPauseRequested() {
			if err := flush(); err != nil {
				return seeded, false, err
			}
			store.UpdateConceptsProgress(lineNumber-1, seeded)
			return seeded, true, nil
		}

		if opts.ActiveOnly && !row.Active {
			continue
		}

		batch.add(conceptBatchItem{
			conceptID: row.ID,
			props: map[string]any{
				"conceptId":     row.ID,
				"active":        row.Active,
				"moduleId":      row.ModuleID,
				"effectiveTime": row.EffectiveTime,
			},
		})

		if batch.full(opts.BatchSize) {
			if err := flush(); err != nil {
				return seeded, false, err
			}
		}
	}

	if err := flush(); err != nil {
		return seeded, false, err
	}

	return seeded, false, nil
}

// flushConceptBatch upserts every item in items with a fixed concurrency
// ceiling of flushConcurrency (§4.4.1, §5). Any upsert error aborts the
// flush and propagates; already-committed upserts are tolerated because
// upserts are idempotent on re-run (§4.4.1).
func (p *Pipeline) flushConceptBatch(ctx context.Context, items []conceptBatchItem) error {
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(flushConcurrency)

	for _, item := range items {
		item := item
		grp.Go(func() error {
			_, err := p.Repo.UpsertVertexAndReturnIDAsync(gctx, vertexLabelConcept, "conceptId", item.conceptID, item.props)
			return err
		})
	}

	return grp.Wait()
}

const vertexLabelConcept = "SnomedConcept"
