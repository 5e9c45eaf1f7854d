package checkpoint

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// fileName is the checkpoint's fixed basename under parent(rf2Directory),
// per §6.2.
const fileName = ".snomed-seed-checkpoint.json"

// Store persists, loads, and mutates a single job's checkpoint. Every
// externally visible method acquires a single mutex (§5) and is never held
// across an await point beyond its own body.
type Store struct {
	mu sync.Mutex

	active bool
	path   string
	cp     Checkpoint
}

// NewStore returns an empty, inactive Store.
func NewStore() *Store { return &Store{} }

func pathFor(rf2Directory string) string {
	return filepath.Join(filepath.Dir(rf2Directory), fileName)
}

// GetOrCreate returns the existing checkpoint for dir if one is on disk,
// its stored phase is not Completed, and its rf2Directory matches; else it
// creates a fresh checkpoint with a new jobId and persists it. Marks the
// store active either way (§4.3).
func (s *Store) GetOrCreate(dir string, opts Options) (Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := pathFor(dir)

	if cp, ok := loadFrom(path); ok && cp.Phase != Completed && cp.RF2Directory == dir {
		s.path = path
		s.cp = cp
		s.active = true
		return s.cp.Clone(), nil
	}

	now := time.Now()
	cp := Checkpoint{
		JobID:        newJobID(),
		Phase:        NotStarted,
		RF2Directory: dir,
		StartedAt:    now,
		LastUpdatedAt: now,
		Options:      opts,
	}

	s.path = path
	s.cp = cp
	s.active = true
	s.writeLocked()

	return s.cp.Clone(), nil
}

// Update applies mutator to the in-memory checkpoint and persists it. A
// no-op when the store is inactive (§4.3).
func (s *Store) Update(mutator func(*Checkpoint)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	mutator(&s.cp)
	s.cp.LastUpdatedAt = time.Now()
	s.writeLocked()
}

// AdvancePhase sets the phase and resets lastProcessedLine for the new
// phase (§4.3).
func (s *Store) AdvancePhase(next Phase) {
	s.Update(func(c *Checkpoint) {
		c.Phase = next
		c.LastProcessedLine = 0
	})
}

// UpdateConceptsProgress persists Phase 1 progress: the current line
// position and cumulative concepts seeded (§4.3, §4.4.1). Monotonicity of
// lineNumber within the phase is required of the caller but not enforced
// here.
func (s *Store) UpdateConceptsProgress(lineNumber int, seeded int64) {
	s.Update(func(c *Checkpoint) {
		c.LastProcessedLine = lineNumber
		c.ConceptsSeeded = seeded
	})
}

// UpdateDescriptionsProgress persists Phase 2 progress: the cumulative
// count of descriptions processed (§4.3, §4.4.2). Phase 2 is not
// line-resumable, so no line position is recorded.
func (s *Store) UpdateDescriptionsProgress(processed int64) {
	s.Update(func(c *Checkpoint) {
		c.DescriptionsProcessed = processed
	})
}

// UpdateRelationshipsProgress persists Phase 3 progress: the current line
// position and cumulative relationships seeded (§4.3, §4.4.3).
func (s *Store) UpdateRelationshipsProgress(lineNumber int, seeded int64) {
	s.Update(func(c *Checkpoint) {
		c.LastProcessedLine = lineNumber
		c.RelationshipsSeeded = seeded
	})
}

// MarkCompleted deletes the checkpoint file and deactivates the store
// (§4.3).
func (s *Store) MarkCompleted(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.cp.ElapsedTime = elapsed
	}
	s.deleteLocked()
	s.active = false
	s.cp = Checkpoint{}
}

// MarkPaused sets phase=Paused, clears pauseRequested, persists, and
// deactivates the store so a new seed can be launched once resumed
// (§4.3).
func (s *Store) MarkPaused(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	s.cp.Phase = Paused
	s.cp.PauseRequested = false
	s.cp.ElapsedTime = elapsed
	s.cp.LastUpdatedAt = time.Now()
	s.writeLocked()
	s.active = false
}

// MarkFailed sets phase=Failed, records the error message, persists, and
// deactivates the store (§4.3).
func (s *Store) MarkFailed(errMsg string, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	s.cp.Phase = Failed
	s.cp.ErrorMessage = errMsg
	s.cp.ElapsedTime = elapsed
	s.cp.LastUpdatedAt = time.Now()
	s.writeLocked()
	s.active = false
}

// RequestPause sets pauseRequested in memory only; it is cheap and
// deliberately does not write to disk (§4.3).
func (s *Store) RequestPause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.cp.PauseRequested = true
	}
}

// IsPauseRequested returns false if the store is inactive (§4.3).
func (s *Store) IsPauseRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active && s.cp.PauseRequested
}

// GetStatus derives a Status from the live in-memory checkpoint when
// active and its directory matches dir, otherwise from the on-disk
// checkpoint for dir. Returns nil if neither exists (§4.3).
func (s *Store) GetStatus(dir string) *Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active && s.cp.RF2Directory == dir {
		st := deriveStatus(s.cp, true)
		return &st
	}

	if cp, ok := loadFrom(pathFor(dir)); ok {
		st := deriveStatus(cp, false)
		return &st
	}

	return nil
}

// ClearCheckpoint deletes the checkpoint file and deactivates the store
// (§4.3).
func (s *Store) ClearCheckpoint(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := pathFor(dir)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).WithField("path", path).Warn("failed to remove checkpoint file")
	}

	if s.active && s.cp.RF2Directory == dir {
		s.active = false
		s.cp = Checkpoint{}
	}
}

func (s *Store) writeLocked() {
	data, err := json.MarshalIndent(s.cp, "", "  ")
	if err != nil {
		log.WithError(err).Error("failed to marshal checkpoint")
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.WithError(err).WithField("path", s.path).Error("failed to write checkpoint file")
	}
}

func (s *Store) deleteLocked() {
	if s.path == "" {
		return
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).WithField("path", s.path).Warn("failed to remove checkpoint file")
	}
}

// loadFrom reads and parses the checkpoint at path. A missing or corrupt
// file is logged and treated as "no checkpoint" (§4.3, §7).
func loadFrom(path string) (Checkpoint, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", path).Warn("failed to read checkpoint file")
		}
		return Checkpoint{}, false
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		log.WithError(err).WithField("path", path).Warn("corrupt checkpoint file, treating as absent")
		return Checkpoint{}, false
	}

	return cp, true
}

func newJobID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read on a supported platform never fails; if it
		// somehow does, a timestamp-derived id still keeps jobs distinct.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf[:])
}
