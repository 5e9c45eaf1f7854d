package rf2

import (
	"context"
	"errors"
	"io"
)

// conceptColumns is the RF2 Concept file column count (§3):
// id, effectiveTime, active, moduleId, definitionStatusId.
const conceptColumns = 5

// ConceptIterator streams ConceptRow values from a sct2_Concept_Snapshot
// file, one row per non-blank line after the header.
type ConceptIterator struct{ r *lineReader }

// OpenConceptFile opens path for streaming. The caller must Close it.
func OpenConceptFile(path string) (*ConceptIterator, error) {
	r, err := openLineReader(path)
	if err != nil {
		return nil, err
	}
	return &ConceptIterator{r: r}, nil
}

// Next returns the next valid ConceptRow, or ok=false at end of file.
// Malformed or short lines are skipped internally and never surfaced.
func (it *ConceptIterator) Next(ctx context.Context) (ConceptRow, bool, error) {
	for {
		line, err := it.r.next(ctx)
		if errors.Is(err, io.EOF) {
			return ConceptRow{}, false, nil
		}
		if err != nil {
			return ConceptRow{}, false, err
		}

		cols := splitColumns(line)
		if len(cols) < conceptColumns {
			continue
		}
		active, ok := parseActive(cols[2])
		if !ok {
			continue
		}

		it.r.Yielded++
		return ConceptRow{
			ID:                 cols[0],
			EffectiveTime:      cols[1],
			Active:             active,
			ModuleID:           cols[3],
			DefinitionStatusID: cols[4],
		}, true, nil
	}
}

// Close releases the underlying file handle.
func (it *ConceptIterator) Close() error { return it.r.close() }
