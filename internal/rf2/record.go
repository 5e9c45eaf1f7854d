// Package rf2 streams the four RF2 Snapshot file families into typed
// records. Readers are line-at-a-time and retain no memory proportional to
// file size; callers drive them with a context.Context for cooperative
// cancellation between rows.
package rf2

// ConceptRow is one row of sct2_Concept_Snapshot*.txt.
type ConceptRow struct {
	ID                  string
	EffectiveTime       string
	Active              bool
	ModuleID            string
	DefinitionStatusID  string
}

// DescriptionRow is one row of sct2_Description_Snapshot*.txt.
type DescriptionRow struct {
	ID                 string
	EffectiveTime      string
	Active             bool
	ModuleID           string
	ConceptID          string
	LanguageCode       string
	TypeID             string
	Term               string
	CaseSignificanceID string
}

// RelationshipRow is one row of sct2_Relationship_Snapshot*.txt.
type RelationshipRow struct {
	ID                   string
	EffectiveTime        string
	Active               bool
	ModuleID             string
	SourceID             string
	DestinationID        string
	RelationshipGroup    int
	TypeID               string
	CharacteristicTypeID string
	ModifierID           string
}

// LanguageRefsetRow is one row of der2_cRefset_LanguageSnapshot*.txt.
type LanguageRefsetRow struct {
	ID                    string
	EffectiveTime         string
	Active                bool
	ModuleID              string
	RefsetID              string
	ReferencedComponentID string
	AcceptabilityID       string
}

// Well-known SCTIDs the seeding pipeline dispatches on.
const (
	TypeIDFSN           = "900000000000003001"
	TypeIDSynonym       = "900000000000013009"
	TypeIDIsA           = "116680003"
	CharacteristicInferred = "900000000000011006"
	AcceptabilityPreferred = "900000000000548007"

	ConceptRootSCTID           = "138875005"
	ConceptClinicalFindingSCTID = "404684003"
)
