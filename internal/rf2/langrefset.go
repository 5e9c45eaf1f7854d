package rf2

import (
	"context"
	"errors"
	"io"
)

// languageRefsetColumns is the RF2 Language Refset file column count (§3):
// id, effectiveTime, active, moduleId, refsetId, referencedComponentId,
// acceptabilityId.
const languageRefsetColumns = 7

// LanguageRefsetIterator streams LanguageRefsetRow values from a
// der2_cRefset_LanguageSnapshot file.
type LanguageRefsetIterator struct{ r *lineReader }

// OpenLanguageRefsetFile opens path for streaming. The caller must Close it.
func OpenLanguageRefsetFile(path string) (*LanguageRefsetIterator, error) {
	r, err := openLineReader(path)
	if err != nil {
		return nil, err
	}
	return &LanguageRefsetIterator{r: r}, nil
}

// Next returns the next valid LanguageRefsetRow, or ok=false at end of file.
func (it *LanguageRefsetIterator) Next(ctx context.Context) (LanguageRefsetRow, bool, error) {
	for {
		line, err := it.r.next(ctx)
		if errors.Is(err, io.EOF) {
			return LanguageRefsetRow{}, false, nil
		}
		if err != nil {
			return LanguageRefsetRow{}, false, err
		}

		cols := splitColumns(line)
		if len(cols) < languageRefsetColumns {
			continue
		}
		active, ok := parseActive(cols[2])
		if !ok {
			continue
		}

		it.r.Yielded++
		return LanguageRefsetRow{
			ID:                    cols[0],
			EffectiveTime:         cols[1],
			Active:                active,
			ModuleID:              cols[3],
			RefsetID:              cols[4],
			ReferencedComponentID: cols[5],
			AcceptabilityID:       cols[6],
		}, true, nil
	}
}

// Close releases the underlying file handle.
func (it *LanguageRefsetIterator) Close() error { return it.r.close() }
