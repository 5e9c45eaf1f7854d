package seed

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/rf2"
)

// descriptionSlots accumulates the at-most-one fsn and at-most-one
// preferredTerm per concept (§3 invariant 5); last write wins for each
// slot independently.
type descriptionSlots struct {
	fsn           string
	hasFSN        bool
	preferredTerm string
	hasPreferred  bool
}

// runDescriptions executes Phase 2 (§4.4.2): a two-pass in-memory join
// against the language refset, followed by a vertex-update pass. It is not
// line-resumable; any resume restarts from the beginning of both input
// streams, per the specification's Open Question resolution (kept
// as-is — see SPEC_FULL.md).
func (p *Pipeline) runDescriptions(
	ctx context.Context,
	fs rf2.FileSet,
	store *checkpoint.Store,
	opts Options,
) (int64, bool, error) {
	preferredIDs, paused, err := p.buildPreferredIDs(ctx, fs.LanguageRefsetFile, store, opts)
	if err != nil {
		return 0, false, err
	}
	if paused {
		markDescriptionsInProgress(store, 0)
		return 0, true, nil
	}

	descriptions, processed, paused, err := p.buildConceptDescriptions(ctx, fs.DescriptionFile, preferredIDs, store, opts)
	if err != nil {
		return processed, false, err
	}
	if paused {
		markDescriptionsInProgress(store, processed)
		return processed, true, nil
	}

	paused, err = p.applyConceptDescriptions(ctx, descriptions, store, opts, processed)
	if err != nil {
		return processed, false, err
	}
	if paused {
		markDescriptionsInProgress(store, processed)
		return processed, true, nil
	}

	return processed, false, nil
}

// markDescriptionsInProgress persists processed, or a sentinel of 1 when
// processed is still zero, so a pause landing anywhere in Phase 2 leaves
// resumePhaseFor routing back into Descriptions instead of falling through
// to Concepts (§4.4.2).
func markDescriptionsInProgress(store *checkpoint.Store, processed int64) {
	if processed == 0 {
		processed = 1
	}
	store.UpdateDescriptionsProgress(processed)
}

// buildPreferredIDs is Pass A (§4.4.2): the set of description ids accepted
// as Preferred in the configured dialect. Absent a language refset file,
// the set is empty and no preferred term will be resolved.
func (p *Pipeline) buildPreferredIDs(ctx context.Context, path string, store *checkpoint.Store, opts Options) (map[string]struct{}, bool, error) {
	ids := make(map[string]struct{})
	if path == "" {
		return ids, false, nil
	}

	it, err := rf2.OpenLanguageRefsetFile(path)
	if err != nil {
		return nil, false, err
	}
	defer it.Close()

	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return ids, true, nil
		}
		if !ok {
			break
		}

		if store.IsPauseRequested() {
			return ids, true, nil
		}

		if row.Active && row.RefsetID == opts.DialectRefsetID && row.AcceptabilityID == rf2.AcceptabilityPreferred {
			ids[row.ReferencedComponentID] = struct{}{}
		}
	}

	return ids, false, nil
}

// buildConceptDescriptions is Pass B (§4.4.2): per-concept fsn/preferredTerm
// slots, honoring activeOnly.
func (p *Pipeline) buildConceptDescriptions(
	ctx context.Context,
	path string,
	preferredIDs map[string]struct{},
	store *checkpoint.Store,
	opts Options,
) (map[string]*descriptionSlots, int64, bool, error) {
	descriptions := make(map[string]*descriptionSlots)

	it, err := rf2.OpenDescriptionFile(path)
	if err != nil {
		return nil, 0, false, err
	}
	defer it.Close()

	var processed int64
	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return descriptions, processed, true, nil
		}
		if !ok {
			break
		}

		if store.IsPauseRequested() {
			return descriptions, processed, true, nil
		}

		if opts.ActiveOnly && !row.Active {
			continue
		}

		processed++

		slots := descriptions[row.ConceptID]
		if slots == nil {
			slots = &descriptionSlots{}
			descriptions[row.ConceptID] = slots
		}

		switch {
		case row.TypeID == rf2.TypeIDFSN:
			slots.fsn, slots.hasFSN = row.Term, true
		case row.TypeID == rf2.TypeIDSynonym:
			if _, preferred := preferredIDs[row.ID]; preferred {
				slots.preferredTerm, slots.hasPreferred = row.Term, true
			}
		}

		if processed%int64(opts.ProgressLogInterval) == 0 {
			log.WithFields(log.Fields{"phase": "Descriptions", "descriptionsProcessed": processed}).Info("seeding progress")
		}
	}

	return descriptions, processed, false, nil
}

// applyConceptDescriptions is Pass C (§4.4.2): updates each known
// SnomedConcept vertex with its resolved fsn/preferredTerm. Concepts with
// no vertex (e.g. dropped by activeOnly in Phase 1) are silently skipped.
func (p *Pipeline) applyConceptDescriptions(
	ctx context.Context,
	descriptions map[string]*descriptionSlots,
	store *checkpoint.Store,
	opts Options,
	processed int64,
) (bool, error) {
	for conceptID, slots := range descriptions {
		if !slots.hasFSN && !slots.hasPreferred {
			continue
		}

		if store.IsPauseRequested() {
			return true, nil
		}

		vertexID, err := p.Repo.GetVertexIDByLabelAndPropertyAsync(ctx, vertexLabelConcept, "conceptId", conceptID)
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return false, err
		}
		if vertexID == "" {
			continue
		}

		props := map[string]any{}
		if slots.hasFSN {
			props["fsn"] = slots.fsn
		}
		if slots.hasPreferred {
			props["preferredTerm"] = slots.preferredTerm
		}

		if _, err := p.Repo.UpdateVertexPropertiesAsync(ctx, vertexID, props); err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return false, err
		}
	}

	store.UpdateDescriptionsProgress(processed)
	return false, nil
}
