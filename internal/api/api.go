// Package api implements the HTTP control surface (C7): idempotent REST
// endpoints under /api/snomed that drive the job controller and query the
// checkpoint store and seeding pipeline (§6.3).
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/config"
	"github.com/estuary/snomed-seed/internal/job"
	"github.com/estuary/snomed-seed/internal/rf2"
	"github.com/estuary/snomed-seed/internal/seed"
)

// API holds the dependencies shared by every handler.
type API struct {
	controller *job.Controller
	snomed     config.SnomedConfig
}

// New returns an API bound to controller, using snomed for the seeding
// defaults every endpoint falls back to.
func New(controller *job.Controller, snomed config.SnomedConfig) *API {
	return &API{controller: controller, snomed: snomed}
}

// Register mounts every /api/snomed route onto router (§6.3).
func (a *API) Register(router *mux.Router) {
	sub := router.PathPrefix("/api/snomed").Subrouter()

	sub.HandleFunc("/status", a.handleStatus).Methods(http.MethodGet)
	sub.HandleFunc("/job", a.handleJob).Methods(http.MethodGet)
	sub.HandleFunc("/seed", a.handleSeed).Methods(http.MethodPost)
	sub.HandleFunc("/pause", a.handlePause).Methods(http.MethodPost)
	sub.HandleFunc("/resume", a.handleResume).Methods(http.MethodPost)
	sub.HandleFunc("/reseed", a.handleReseed).Methods(http.MethodPost)
	sub.HandleFunc("/checkpoint", a.handleClearCheckpoint).Methods(http.MethodDelete)
	sub.HandleFunc("/verify", a.handleVerify).Methods(http.MethodGet)
}

// FullStatusResponse is the GET /status payload: always 200, present even
// when no job has ever run (§6.3).
type FullStatusResponse struct {
	HasJob bool               `json:"hasJob"`
	Job    *checkpoint.Status `json:"job,omitempty"`
}

// SeedStartedResponse is returned by every endpoint that accepts a
// background seeding task (§6.3).
type SeedStartedResponse struct {
	Message string `json:"message"`
	JobID   string `json:"jobId,omitempty"`
}

// ProblemDetails is the error body shape for 400/404/409 (§6.3, §7).
type ProblemDetails struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to encode response body")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, ProblemDetails{Title: title, Detail: detail, Status: status})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := a.controller.Status()
	writeJSON(w, http.StatusOK, FullStatusResponse{HasJob: st != nil, Job: st})
}

func (a *API) handleJob(w http.ResponseWriter, r *http.Request) {
	st := a.controller.Status()
	if st == nil {
		writeProblem(w, http.StatusNotFound, "no checkpoint", "no checkpoint exists for the configured snapshot directory")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleSeed(w http.ResponseWriter, r *http.Request) {
	opts := a.optionsFromQuery(r)
	forceRestart := parseBoolQuery(r, "forceRestart", false)

	a.startSeed(w, opts, forceRestart)
}

func (a *API) handleReseed(w http.ResponseWriter, r *http.Request) {
	opts := a.optionsFromQuery(r)
	a.startSeed(w, opts, true)
}

func (a *API) startSeed(w http.ResponseWriter, opts seed.Options, forceRestart bool) {
	if err := a.controller.StartSeed(opts, forceRestart); err != nil {
		a.writeStartError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, SeedStartedResponse{Message: "seeding started"})
}

func (a *API) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := a.controller.RequestPause(); err != nil {
		writeProblem(w, http.StatusNotFound, "not running", err.Error())
		return
	}

	st := a.controller.Status()
	resp := struct {
		Message string `json:"message"`
		JobID   string `json:"jobId,omitempty"`
	}{Message: "pause requested"}
	if st != nil {
		resp.JobID = st.JobID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleResume(w http.ResponseWriter, r *http.Request) {
	opts := seed.Options{
		SnapshotDirectory:   a.snomed.SnapshotDirectory(),
		ActiveOnly:          a.snomed.ActiveOnly,
		BatchSize:           a.snomed.BatchSize,
		DialectRefsetID:     a.snomed.DialectRefsetID,
		ProgressLogInterval: a.snomed.ProgressLogInterval,
	}

	if err := a.controller.Resume(opts); err != nil {
		switch {
		case errors.Is(err, job.ErrNoCheckpoint):
			writeProblem(w, http.StatusNotFound, "no checkpoint", err.Error())
		case errors.Is(err, job.ErrNotResumable):
			writeProblem(w, http.StatusBadRequest, "not resumable", err.Error())
		default:
			a.writeStartError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, SeedStartedResponse{Message: "seeding resumed"})
}

func (a *API) handleClearCheckpoint(w http.ResponseWriter, r *http.Request) {
	a.controller.ClearCheckpoint()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	v, err := a.controller.Verify(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "verification failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, job.ErrAlreadyRunning):
		writeProblem(w, http.StatusConflict, "already running", err.Error())
	case errors.Is(err, rf2.ErrMissingInput):
		writeProblem(w, http.StatusBadRequest, "missing input", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// optionsFromQuery builds seed.Options from the request query string,
// falling back to the process configuration's defaults (§6.3: activeOnly,
// batchSize; forceRestart is handled by the caller).
func (a *API) optionsFromQuery(r *http.Request) seed.Options {
	return seed.Options{
		SnapshotDirectory:   a.snomed.SnapshotDirectory(),
		ActiveOnly:          parseBoolQuery(r, "activeOnly", a.snomed.ActiveOnly),
		BatchSize:           parseIntQuery(r, "batchSize", a.snomed.BatchSize),
		DialectRefsetID:     a.snomed.DialectRefsetID,
		ProgressLogInterval: a.snomed.ProgressLogInterval,
	}
}

func parseBoolQuery(r *http.Request, key string, def bool) bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func parseIntQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
