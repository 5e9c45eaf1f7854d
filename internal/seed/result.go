package seed

import "time"

// Result is the outcome of a Seed invocation (§4.4).
type Result struct {
	OK            bool
	Error         string
	Concepts      int64
	Descriptions  int64
	Relationships int64
	Duration      time.Duration
}

// Verification is the outcome of the Verification phase (§4.4.4), also
// returned directly by GET /api/snomed/verify (§6.3).
type Verification struct {
	TotalConcepts         int64    `json:"totalConcepts"`
	ActiveConcepts        int64    `json:"activeConcepts"`
	TotalRelationships    int64    `json:"totalRelationships"`
	ActiveRelationships   int64    `json:"activeRelationships"`
	HasRootConcept        bool     `json:"hasRootConcept"`
	HasClinicalFinding    bool     `json:"hasClinicalFinding"`
	Errors                []string `json:"errors"`
}
