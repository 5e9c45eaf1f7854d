package seed

import (
	"context"
	"fmt"

	"github.com/estuary/snomed-seed/internal/graph"
	"github.com/estuary/snomed-seed/internal/rf2"
)

// Verify executes Phase 4 (§4.4.4): sanity counts and presence checks
// against the graph. Missing presence conditions are accumulated into the
// errors list but never fail the call itself (§7) — total/active
// relationship counts are reported as 0, a known limitation: the consumed
// Repository interface has no per-label edge count primitive (§4.4.4).
func Verify(ctx context.Context, repo graph.Repository) (Verification, error) {
	v := Verification{Errors: []string{}}

	total, err := repo.CountVerticesByLabelAsync(ctx, vertexLabelConcept, nil)
	if err != nil {
		return v, fmt.Errorf("counting concepts: %w", err)
	}
	v.TotalConcepts = total

	active, err := repo.CountVerticesByLabelAsync(ctx, vertexLabelConcept, &graph.CountFilter{Property: "active", Value: true})
	if err != nil {
		return v, fmt.Errorf("counting active concepts: %w", err)
	}
	v.ActiveConcepts = active

	root, err := repo.GetVertexIDByLabelAndPropertyAsync(ctx, vertexLabelConcept, "conceptId", rf2.ConceptRootSCTID)
	if err != nil {
		return v, fmt.Errorf("looking up root concept: %w", err)
	}
	v.HasRootConcept = root != ""
	if !v.HasRootConcept {
		v.Errors = append(v.Errors, "root concept 138875005 not found")
	}

	finding, err := repo.GetVertexIDByLabelAndPropertyAsync(ctx, vertexLabelConcept, "conceptId", rf2.ConceptClinicalFindingSCTID)
	if err != nil {
		return v, fmt.Errorf("looking up clinical finding concept: %w", err)
	}
	v.HasClinicalFinding = finding != ""
	if !v.HasClinicalFinding {
		v.Errors = append(v.Errors, "clinical finding concept 404684003 not found")
	}

	return v, nil
}
