// Package checkpoint persists and mutates the seeding job's resumable
// state, per §4.3 of the ingestion core specification.
package checkpoint

import "time"

// Phase is the totally ordered seeding phase enum (§3). Paused and Failed
// are sink states outside the main ordering.
type Phase int

const (
	NotStarted Phase = iota
	Concepts
	Descriptions
	Relationships
	Verification
	Completed
	Paused
	Failed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "NotStarted"
	case Concepts:
		return "Concepts"
	case Descriptions:
		return "Descriptions"
	case Relationships:
		return "Relationships"
	case Verification:
		return "Verification"
	case Completed:
		return "Completed"
	case Paused:
		return "Paused"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MarshalJSON serializes Phase as its name, spelled as String returns it
// (e.g. "NotStarted", "Concepts").
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON accepts the phase name; unknown names map to NotStarted so
// a forward-compatible reader never fails on an unrecognized phase (§6.2).
func (p *Phase) UnmarshalJSON(data []byte) error {
	name := string(data)
	name = name[1 : len(name)-1] // strip quotes
	for candidate := NotStarted; candidate <= Failed; candidate++ {
		if candidate.String() == name {
			*p = candidate
			return nil
		}
	}
	*p = NotStarted
	return nil
}

// Options configures a seeding run; it is the `options` member of the
// persisted checkpoint (§3) and is echoed back on resume.
type Options struct {
	ActiveOnly       bool   `json:"activeOnly"`
	BatchSize        int    `json:"batchSize"`
	DialectRefsetID  string `json:"dialectRefsetId"`
	ProgressLogInterval int `json:"progressLogInterval"`
	VerifyAfterSeed  bool   `json:"verifyAfterSeed"`
	StrictEdgeDedup  bool   `json:"strictEdgeDedup"`
}

// Checkpoint is the on-disk and in-memory resumable job state (§3, §6.2).
type Checkpoint struct {
	JobID                 string    `json:"jobId"`
	Phase                  Phase     `json:"phase"`
	RF2Directory           string    `json:"rf2Directory"`
	LastProcessedLine      int       `json:"lastProcessedLine"`
	LastConceptID          string    `json:"lastConceptId,omitempty"`
	ConceptsSeeded         int64     `json:"conceptsSeeded"`
	DescriptionsProcessed  int64     `json:"descriptionsProcessed"`
	RelationshipsSeeded    int64     `json:"relationshipsSeeded"`
	StartedAt              time.Time `json:"startedAt"`
	LastUpdatedAt          time.Time `json:"lastUpdatedAt"`
	ElapsedTime            time.Duration `json:"elapsedTime"`
	ErrorMessage           string    `json:"errorMessage,omitempty"`
	PauseRequested         bool      `json:"pauseRequested"`
	Options                Options   `json:"options"`
}

// Clone returns a deep-enough copy for safe handoff outside the store's
// mutex (Checkpoint has no reference fields besides strings, which are
// immutable in Go).
func (c Checkpoint) Clone() Checkpoint { return c }
