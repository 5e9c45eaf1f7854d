package checkpoint

import "time"

// Status is the externally visible view of a seeding job, derived from
// either the live in-memory checkpoint or the on-disk one (§4.3, §4.5).
type Status struct {
	JobID                 string        `json:"jobId"`
	Phase                 Phase         `json:"phase"`
	RF2Directory          string        `json:"rf2Directory"`
	LastProcessedLine     int           `json:"lastProcessedLine"`
	ConceptsSeeded        int64         `json:"conceptsSeeded"`
	DescriptionsProcessed int64         `json:"descriptionsProcessed"`
	RelationshipsSeeded   int64         `json:"relationshipsSeeded"`
	StartedAt             time.Time     `json:"startedAt"`
	LastUpdatedAt         time.Time     `json:"lastUpdatedAt"`
	ElapsedTime           time.Duration `json:"elapsedTime"`
	ErrorMessage          string        `json:"errorMessage,omitempty"`
	PauseRequested        bool          `json:"pauseRequested"`

	// Derived flags (§4.5).
	IsRunning   bool `json:"isRunning"`
	IsPaused    bool `json:"isPaused"`
	IsCompleted bool `json:"isCompleted"`
	IsFailed    bool `json:"isFailed"`
}

// deriveStatus builds a Status from a Checkpoint and whether the owning
// manager considers it the live, actively-running job.
func deriveStatus(c Checkpoint, active bool) Status {
	running := active && (c.Phase == Concepts || c.Phase == Descriptions ||
		c.Phase == Relationships || c.Phase == Verification)

	return Status{
		JobID:                 c.JobID,
		Phase:                 c.Phase,
		RF2Directory:          c.RF2Directory,
		LastProcessedLine:     c.LastProcessedLine,
		ConceptsSeeded:        c.ConceptsSeeded,
		DescriptionsProcessed: c.DescriptionsProcessed,
		RelationshipsSeeded:   c.RelationshipsSeeded,
		StartedAt:             c.StartedAt,
		LastUpdatedAt:         c.LastUpdatedAt,
		ElapsedTime:           c.ElapsedTime,
		ErrorMessage:          c.ErrorMessage,
		PauseRequested:        c.PauseRequested,
		IsRunning:             running,
		IsPaused:              c.Phase == Paused,
		IsCompleted:           c.Phase == Completed,
		IsFailed:              c.Phase == Failed,
	}
}
