package job

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/graph"
	"github.com/estuary/snomed-seed/internal/seed"
)

const (
	conceptHeader      = "id\teffectiveTime\tactive\tmoduleId\tdefinitionStatusId\n"
	descriptionHeader  = "id\teffectiveTime\tactive\tmoduleId\tconceptId\tlanguageCode\ttypeId\tterm\tcaseSignificanceId\n"
	relationshipHeader = "id\teffectiveTime\tactive\tmoduleId\tsourceId\tdestinationId\trelationshipGroup\ttypeId\tcharacteristicTypeId\tmodifierId\n"
)

func snapshotDir(t *testing.T, concepts string) string {
	t.Helper()
	root := t.TempDir()
	snap := filepath.Join(root, "Snapshot")
	term := filepath.Join(snap, "Terminology")
	require.NoError(t, os.MkdirAll(term, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(term, "sct2_Concept_Snapshot_INT.txt"), []byte(concepts), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(term, "sct2_Description_Snapshot_INT.txt"), []byte(descriptionHeader), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(term, "sct2_Relationship_Snapshot_INT.txt"), []byte(relationshipHeader), 0o644))
	return snap
}

func waitUntilDone(t *testing.T, c *Controller) {
	t.Helper()
	require.Eventually(t, func() bool { return !c.IsRunning() }, time.Second, time.Millisecond)
}

func TestController_StartSeed_MissingSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Snapshot")
	c := NewController(graph.NewInMemory(), checkpoint.NewStore(), dir)

	err := c.StartSeed(seed.Options{SnapshotDirectory: dir}, false)
	require.Error(t, err)
	require.False(t, c.IsRunning())
}

func TestController_StartSeed_SingleJobInvariant(t *testing.T) {
	dir := snapshotDir(t, conceptHeader+"A\t20240101\t1\tM\tD\n")
	c := NewController(graph.NewInMemory(), checkpoint.NewStore(), dir)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.StartSeed(seed.Options{SnapshotDirectory: dir}, false)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			require.ErrorIs(t, err, ErrAlreadyRunning)
		}
	}
	require.Equal(t, 1, accepted)

	waitUntilDone(t, c)
}

func TestController_RequestPause_NotRunning(t *testing.T) {
	dir := snapshotDir(t, conceptHeader)
	c := NewController(graph.NewInMemory(), checkpoint.NewStore(), dir)

	require.ErrorIs(t, c.RequestPause(), ErrNoCheckpoint)
}

func TestController_Resume_NoCheckpoint(t *testing.T) {
	dir := snapshotDir(t, conceptHeader)
	c := NewController(graph.NewInMemory(), checkpoint.NewStore(), dir)

	err := c.Resume(seed.Options{SnapshotDirectory: dir})
	require.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestController_Status_ReflectsCompletion(t *testing.T) {
	dir := snapshotDir(t, conceptHeader+"A\t20240101\t1\tM\tD\n")
	c := NewController(graph.NewInMemory(), checkpoint.NewStore(), dir)

	require.NoError(t, c.StartSeed(seed.Options{SnapshotDirectory: dir}, false))
	waitUntilDone(t, c)

	// A completed job leaves no checkpoint file, so Status is nil (§4.5).
	require.Nil(t, c.Status())
}

func TestController_Verify(t *testing.T) {
	dir := snapshotDir(t, conceptHeader+"138875005\t20240101\t1\tM\tD\n")
	c := NewController(graph.NewInMemory(), checkpoint.NewStore(), dir)

	require.NoError(t, c.StartSeed(seed.Options{SnapshotDirectory: dir}, false))
	waitUntilDone(t, c)

	v, err := c.Verify(context.Background())
	require.NoError(t, err)
	require.True(t, v.HasRootConcept)
	require.False(t, v.HasClinicalFinding)
}
