package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemory is a process-local Repository used by the pipeline's own test
// suite. It is not a substitute for the real Gremlin-compatible store;
// it exists so Seed's phase logic can be exercised without one.
type InMemory struct {
	mu sync.Mutex

	vertices map[string]*Vertex
	edges    []*Edge

	// index[label][key][fmt.Sprint(value)] = vertexID
	index map[string]map[string]map[string]string
}

// NewInMemory returns an empty in-memory Repository.
func NewInMemory() *InMemory {
	return &InMemory{
		vertices: make(map[string]*Vertex),
		index:    make(map[string]map[string]map[string]string),
	}
}

func (m *InMemory) AddVertexAsync(_ context.Context, label string, props map[string]any) (Vertex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	v := &Vertex{ID: id, Label: label, Properties: cloneProps(props)}
	m.vertices[id] = v
	return *v, nil
}

func (m *InMemory) AddEdgeAsync(_ context.Context, label, outID, inID string, props map[string]any) (Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vertices[outID]; !ok {
		return Edge{}, fmt.Errorf("add edge: out vertex %q not found", outID)
	}
	if _, ok := m.vertices[inID]; !ok {
		return Edge{}, fmt.Errorf("add edge: in vertex %q not found", inID)
	}

	e := &Edge{ID: uuid.NewString(), Label: label, OutID: outID, InID: inID, Properties: cloneProps(props)}
	m.edges = append(m.edges, e)
	return *e, nil
}

func (m *InMemory) GetVertexByIDAsync(_ context.Context, id string) (*Vertex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vertices[id]
	if !ok {
		return nil, nil
	}
	out := *v
	out.Properties = cloneProps(v.Properties)
	return &out, nil
}

func (m *InMemory) UpdateVertexPropertiesAsync(_ context.Context, id string, props map[string]any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vertices[id]
	if !ok {
		return false, nil
	}
	for k, val := range props {
		v.Properties[k] = val
	}
	return true, nil
}

func (m *InMemory) UpsertVertexAndReturnIDAsync(_ context.Context, label, key string, value any, props map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.lookup(label, key, value); ok {
		return id, nil
	}

	id := uuid.NewString()
	m.vertices[id] = &Vertex{ID: id, Label: label, Properties: cloneProps(props)}
	m.addIndex(label, key, value, id)
	return id, nil
}

func (m *InMemory) GetVertexIDByLabelAndPropertyAsync(_ context.Context, label, key string, value any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.lookup(label, key, value)
	if !ok {
		return "", nil
	}
	return id, nil
}

func (m *InMemory) GetVertexByLabelAndPropertyAsync(ctx context.Context, label, key string, value any) (*Vertex, error) {
	id, err := m.GetVertexIDByLabelAndPropertyAsync(ctx, label, key, value)
	if err != nil || id == "" {
		return nil, err
	}
	return m.GetVertexByIDAsync(ctx, id)
}

func (m *InMemory) CountVerticesByLabelAsync(_ context.Context, label string, filter *CountFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, v := range m.vertices {
		if v.Label != label {
			continue
		}
		if filter != nil && fmt.Sprint(v.Properties[filter.Property]) != fmt.Sprint(filter.Value) {
			continue
		}
		count++
	}
	return count, nil
}

func (m *InMemory) GetVerticesByLabelAsync(_ context.Context, label string, filter *CountFilter, count, offset int) ([]Vertex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Vertex
	var skipped int
	for _, v := range m.vertices {
		if v.Label != label {
			continue
		}
		if filter != nil && fmt.Sprint(v.Properties[filter.Property]) != fmt.Sprint(filter.Value) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) >= count {
			break
		}
		out = append(out, *v)
	}
	return out, nil
}

// EdgeCount returns the number of edges carrying label, for test assertions.
func (m *InMemory) EdgeCount(label string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, e := range m.edges {
		if e.Label == label {
			n++
		}
	}
	return n
}

func (m *InMemory) lookup(label, key string, value any) (string, bool) {
	byKey, ok := m.index[label]
	if !ok {
		return "", false
	}
	byVal, ok := byKey[key]
	if !ok {
		return "", false
	}
	id, ok := byVal[fmt.Sprint(value)]
	return id, ok
}

func (m *InMemory) addIndex(label, key string, value any, id string) {
	byKey, ok := m.index[label]
	if !ok {
		byKey = make(map[string]map[string]string)
		m.index[label] = byKey
	}
	byVal, ok := byKey[key]
	if !ok {
		byVal = make(map[string]string)
		byKey[key] = byVal
	}
	byVal[fmt.Sprint(value)] = id
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
