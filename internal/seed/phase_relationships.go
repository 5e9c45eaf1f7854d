package seed

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/rf2"
)

// edgeDefiningRel is the edge label for every inferred relationship other
// than IS_A (§3 invariant 3).
const (
	edgeIsA         = "IS_A"
	edgeDefiningRel = "DEFINING_REL"
)

// runRelationships executes Phase 3 (§4.4.3): streaming RelationshipFile
// into IS_A/DEFINING_REL edges, sequentially awaited, with the same
// line-resume and pause discipline as Phase 1. Missing endpoints are
// skipped, not errors (§3 invariant 4).
func (p *Pipeline) runRelationships(
	ctx context.Context,
	path string,
	store *checkpoint.Store,
	opts Options,
	resumeFromLine int,
	startCount int64,
) (int64, bool, error) {
	it, err := rf2.OpenRelationshipFile(path)
	if err != nil {
		return startCount, false, err
	}
	defer it.Close()

	var (
		lineNumber int
		seeded     = startCount
		lastLogged = seeded
		seen       map[edgeKey]struct{}
	)
	if opts.StrictEdgeDedup {
		seen = make(map[edgeKey]struct{})
	}

	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			store.UpdateRelationshipsProgress(lineNumber, seeded)
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
			store.UpdateRelationshipsProgress(lineNumber-1, seeded)
			return seeded, true, nil
		}

		if opts.ActiveOnly && !row.Active {
			continue
		}
		if row.CharacteristicTypeID != rf2.CharacteristicInferred {
			continue
		}

		created, err := p.seedOneRelationship(ctx, row, seen)
		if err != nil {
			if ctx.Err() != nil {
				store.UpdateRelationshipsProgress(lineNumber, seeded)
				return seeded, true, nil
			}
			return seeded, false, err
		}
		if !created {
			continue
		}

		seeded++
		if seeded-lastLogged >= int64(opts.ProgressLogInterval) {
			store.UpdateRelationshipsProgress(lineNumber, seeded)
			log.WithFields(log.Fields{"phase": "Relationships", "relationshipsSeeded": seeded}).Info("seeding progress")
			lastLogged = seeded
		}
	}

	store.UpdateRelationshipsProgress(lineNumber, seeded)
	return seeded, false, nil
}

type edgeKey struct {
	sourceID, destID, label, relationshipTypeID string
}

// seedOneRelationship looks up both endpoints and, if present, creates the
// appropriate edge. It returns created=false (not an error) when either
// endpoint is missing (§3 invariant 4) or the edge was already created this
// run under StrictEdgeDedup.
func (p *Pipeline) seedOneRelationship(ctx context.Context, row rf2.RelationshipRow, seen map[edgeKey]struct{}) (bool, error) {
	sourceID, err := p.Repo.GetVertexIDByLabelAndPropertyAsync(ctx, vertexLabelConcept, "conceptId", row.SourceID)
	if err != nil {
		return false, err
	}
	destID, err := p.Repo.GetVertexIDByLabelAndPropertyAsync(ctx, vertexLabelConcept, "conceptId", row.DestinationID)
	if err != nil {
		return false, err
	}
	if sourceID == "" || destID == "" {
		p.Skipped++
		return false, nil
	}

	label := edgeDefiningRel
	var props map[string]any
	if row.TypeID == rf2.TypeIDIsA {
		label = edgeIsA
	} else {
		props = map[string]any{"relationshipTypeId": row.TypeID}
	}

	if seen != nil {
		key := edgeKey{row.SourceID, row.DestinationID, label, row.TypeID}
		if _, dup := seen[key]; dup {
			return false, nil
		}
		seen[key] = struct{}{}
	}

	if _, err := p.Repo.AddEdgeAsync(ctx, label, sourceID, destID, props); err != nil {
		return false, err
	}
	return true, nil
}
