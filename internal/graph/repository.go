// Package graph defines the property-graph contract the seeding pipeline
// consumes. The graph back end itself (a Gremlin-compatible store) is an
// external collaborator; this package pins only the operations the core
// actually calls.
package graph

import "context"

// Vertex is a graph vertex as returned by the Repository.
type Vertex struct {
	ID         string
	Label      string
	Properties map[string]any
}

// Edge is a graph edge as returned by the Repository.
type Edge struct {
	ID         string
	Label      string
	OutID      string
	InID       string
	Properties map[string]any
}

// CountFilter narrows CountVerticesByLabelAsync / GetVerticesByLabelAsync to
// vertices whose property equals value.
type CountFilter struct {
	Property string
	Value    any
}

// Repository is the property-graph contract consumed by the seeding
// pipeline (§6.4 of the ingestion core specification). It is a single
// pinned contract, so it also names operations the core never calls: the
// seeding and verification code uses only UpsertVertexAndReturnIDAsync,
// GetVertexIDByLabelAndPropertyAsync, UpdateVertexPropertiesAsync,
// AddEdgeAsync and CountVerticesByLabelAsync.
type Repository interface {
	AddVertexAsync(ctx context.Context, label string, props map[string]any) (Vertex, error)
	AddEdgeAsync(ctx context.Context, label, outID, inID string, props map[string]any) (Edge, error)
	GetVertexByIDAsync(ctx context.Context, id string) (*Vertex, error)
	UpdateVertexPropertiesAsync(ctx context.Context, id string, props map[string]any) (bool, error)

	// UpsertVertexAndReturnIDAsync is idempotent on (label, key, value): if a
	// vertex with that label/key/value exists, its id is returned unchanged;
	// otherwise a new vertex is created with props and its id returned.
	UpsertVertexAndReturnIDAsync(ctx context.Context, label, key string, value any, props map[string]any) (string, error)

	GetVertexIDByLabelAndPropertyAsync(ctx context.Context, label, key string, value any) (string, error)
	GetVertexByLabelAndPropertyAsync(ctx context.Context, label, key string, value any) (*Vertex, error)

	CountVerticesByLabelAsync(ctx context.Context, label string, filter *CountFilter) (int64, error)
	GetVerticesByLabelAsync(ctx context.Context, label string, filter *CountFilter, count, offset int) ([]Vertex, error)
}
