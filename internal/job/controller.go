// Package job implements the single-writer job controller (C6): it wraps a
// checkpoint.Store and a seed.Pipeline and enforces that at most one seeding
// task is in flight at a time, launching accepted runs on a background
// goroutine detached from any request context (§4.5, §4.6).
package job

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/graph"
	"github.com/estuary/snomed-seed/internal/rf2"
	"github.com/estuary/snomed-seed/internal/seed"
)

// ErrAlreadyRunning is returned by StartSeed/Resume when a task is already
// in flight (§6.3: 409 on /seed, single-job invariant in §4.5).
var ErrAlreadyRunning = errors.New("a seeding job is already running")

// ErrNoCheckpoint is returned by Resume and RequestPause when there is
// nothing to act on (§6.3: 404 on /pause, /resume).
var ErrNoCheckpoint = errors.New("no checkpoint exists for the configured snapshot directory")

// ErrNotResumable is returned by Resume when the checkpoint's phase is
// neither Paused nor Failed (§6.3: 400 on /resume).
var ErrNotResumable = errors.New("checkpoint phase is not Paused or Failed")

// Controller is the singleton seeding job controller for one configured
// snapshot directory. Its zero value is not usable; construct with
// NewController.
type Controller struct {
	mu       sync.Mutex
	launched bool

	repo      graph.Repository
	store     *checkpoint.Store
	directory string
}

// NewController returns a Controller that seeds repo from the RF2 Snapshot
// at directory, checkpointing through store.
func NewController(repo graph.Repository, store *checkpoint.Store, directory string) *Controller {
	return &Controller{
		repo:      repo,
		store:     store,
		directory: directory,
	}
}

// IsRunning reports whether a background seeding task is currently in
// flight. It is true from the moment StartSeed accepts a launch until the
// task reaches a terminal (Completed/Paused/Failed) outcome, which is
// strictly wider than checkpoint.Status.IsRunning alone — that flag only
// flips true once the task has advanced past NotStarted, leaving a window
// at startup where two racing callers could otherwise both launch.
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.launched
}

// Status derives the externally visible job status, overlaying the
// controller's own launched flag onto whatever the checkpoint store
// reports (§4.5).
func (c *Controller) Status() *checkpoint.Status {
	st := c.store.GetStatus(c.directory)
	if c.IsRunning() {
		if st == nil {
			st = &checkpoint.Status{RF2Directory: c.directory}
		}
		st.IsRunning = true
	}
	return st
}

// StartSeed validates the snapshot directory and, if no task is running,
// launches one on a background goroutine using a process-scoped context
// rather than any caller-supplied one (§4.6, §5: request cancellation must
// never reach the seeding task). Returns ErrAlreadyRunning if a task is
// already in flight.
func (c *Controller) StartSeed(opts seed.Options, forceRestart bool) error {
	if _, err := rf2.Locate(opts.SnapshotDirectory); err != nil {
		return err
	}

	c.mu.Lock()
	if c.launched {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.launched = true
	c.mu.Unlock()

	go c.run(opts, forceRestart)
	return nil
}

// Resume behaves like StartSeed but first requires an existing checkpoint
// in a resumable phase (§6.3: 404/400 on /resume).
func (c *Controller) Resume(opts seed.Options) error {
	st := c.store.GetStatus(c.directory)
	if st == nil {
		return ErrNoCheckpoint
	}
	if st.Phase != checkpoint.Paused && st.Phase != checkpoint.Failed {
		return ErrNotResumable
	}
	return c.StartSeed(opts, false)
}

func (c *Controller) run(opts seed.Options, forceRestart bool) {
	defer func() {
		c.mu.Lock()
		c.launched = false
		c.mu.Unlock()
	}()

	result := seed.NewPipeline(c.repo).Seed(context.Background(), c.store, opts, forceRestart)
	if !result.OK {
		log.WithField("error", result.Error).Error("seeding job ended in failure")
	}
}

// RequestPause asks the in-flight task to stop at its next safe point.
// Returns ErrNoCheckpoint if nothing is running (§6.3: 404 on /pause).
func (c *Controller) RequestPause() error {
	if !c.IsRunning() {
		return ErrNoCheckpoint
	}
	c.store.RequestPause()
	return nil
}

// ClearCheckpoint deletes the persisted checkpoint for the configured
// directory (§6.3: DELETE /checkpoint, always 204).
func (c *Controller) ClearCheckpoint() {
	c.store.ClearCheckpoint(c.directory)
}

// Verify runs the non-fatal Phase 4 checks against the backing repository
// (§6.3: GET /verify).
func (c *Controller) Verify(ctx context.Context) (seed.Verification, error) {
	return seed.Verify(ctx, c.repo)
}
