package rf2

import (
	"context"
	"errors"
	"io"
)

// relationshipColumns is the RF2 Relationship file column count (§3): id,
// effectiveTime, active, moduleId, sourceId, destinationId,
// relationshipGroup, typeId, characteristicTypeId, modifierId.
const relationshipColumns = 10

// RelationshipIterator streams RelationshipRow values from a
// sct2_Relationship_Snapshot file.
type RelationshipIterator struct{ r *lineReader }

// OpenRelationshipFile opens path for streaming. The caller must Close it.
func OpenRelationshipFile(path string) (*RelationshipIterator, error) {
	r, err := openLineReader(path)
	if err != nil {
		return nil, err
	}
	return &RelationshipIterator{r: r}, nil
}

// Next returns the next valid RelationshipRow, or ok=false at end of file.
func (it *RelationshipIterator) Next(ctx context.Context) (RelationshipRow, bool, error) {
	for {
		line, err := it.r.next(ctx)
		if errors.Is(err, io.EOF) {
			return RelationshipRow{}, false, nil
		}
		if err != nil {
			return RelationshipRow{}, false, err
		}

		cols := splitColumns(line)
		if len(cols) < relationshipColumns {
			continue
		}
		active, ok := parseActive(cols[2])
		if !ok {
			continue
		}

		it.r.Yielded++
		return RelationshipRow{
			ID:                   cols[0],
			EffectiveTime:        cols[1],
			Active:               active,
			ModuleID:             cols[3],
			SourceID:             cols[4],
			DestinationID:        cols[5],
			RelationshipGroup:    parseGroup(cols[6]),
			TypeID:               cols[7],
			CharacteristicTypeID: cols[8],
			ModifierID:           cols[9],
		}, true, nil
	}
}

// Close releases the underlying file handle.
func (it *RelationshipIterator) Close() error { return it.r.close() }
