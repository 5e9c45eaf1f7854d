package rf2

import (
	"context"
	"errors"
	"io"
)

// descriptionColumns is the RF2 Description file column count (§3): id,
// effectiveTime, active, moduleId, conceptId, languageCode, typeId, term,
// caseSignificanceId.
const descriptionColumns = 9

// DescriptionIterator streams DescriptionRow values from a
// sct2_Description_Snapshot file.
type DescriptionIterator struct{ r *lineReader }

// OpenDescriptionFile opens path for streaming. The caller must Close it.
func OpenDescriptionFile(path string) (*DescriptionIterator, error) {
	r, err := openLineReader(path)
	if err != nil {
		return nil, err
	}
	return &DescriptionIterator{r: r}, nil
}

// Next returns the next valid DescriptionRow, or ok=false at end of file.
func (it *DescriptionIterator) Next(ctx context.Context) (DescriptionRow, bool, error) {
	for {
		line, err := it.r.next(ctx)
		if errors.Is(err, io.EOF) {
			return DescriptionRow{}, false, nil
		}
		if err != nil {
			return DescriptionRow{}, false, err
		}

		cols := splitColumns(line)
		if len(cols) < descriptionColumns {
			continue
		}
		active, ok := parseActive(cols[2])
		if !ok {
			continue
		}

		it.r.Yielded++
		return DescriptionRow{
			ID:                 cols[0],
			EffectiveTime:      cols[1],
			Active:             active,
			ModuleID:           cols[3],
			ConceptID:          cols[4],
			LanguageCode:       cols[5],
			TypeID:             cols[6],
			Term:               cols[7],
			CaseSignificanceID: cols[8],
		}, true, nil
	}
}

// Close releases the underlying file handle.
func (it *DescriptionIterator) Close() error { return it.r.close() }
