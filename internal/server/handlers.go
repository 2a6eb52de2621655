package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/metrics"
	"github.com/desertthunder/spotlake/internal/models"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxEventBytes = 1 << 20

// Notifier starts a job run for a notification payload. Implemented by relay.Relay.
type Notifier interface {
	Notify(ctx context.Context, payload []byte) (string, error)
	JobName() string
}

// RunReader reads recorded job runs. Implemented by repositories.JobRunRepository.
type RunReader interface {
	Get(ctx context.Context, id string) (*models.JobRun, error)
	List(ctx context.Context, criteria map[string]any) ([]*models.JobRun, error)
}

// EventResponse is returned when a notification has started a job run.
type EventResponse struct {
	JobName string `json:"job_name"`
	RunID   string `json:"run_id"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// EventsHandler accepts object-created webhooks.
type EventsHandler struct {
	notifier Notifier
	logger   *log.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(notifier Notifier, logger *log.Logger) *EventsHandler {
	return &EventsHandler{notifier: notifier, logger: logger}
}

func (h *EventsHandler) Routes() []string {
	return []string{"POST /events"}
}

// ServeHTTP starts one job run per request and answers 202 with its run ID.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		metrics.RecordNotification("http", err)
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("failed to read body: %w", err))
		return
	}

	runID, err := h.notifier.Notify(r.Context(), payload)
	metrics.RecordNotification("http", err)
	if err != nil {
		h.logger.Error("notification failed", "error", err)
		code := http.StatusInternalServerError
		if errors.Is(err, shared.ErrJobNotFound) {
			code = http.StatusNotFound
		}
		writeError(w, code, err)
		return
	}

	writeJSON(w, http.StatusAccepted, EventResponse{
		JobName: h.notifier.JobName(),
		RunID:   runID,
		Message: "job started: " + runID,
	})
}

// RunsHandler serves recorded job runs.
type RunsHandler struct {
	runs RunReader
}

// NewRunsHandler creates a RunsHandler.
func NewRunsHandler(runs RunReader) *RunsHandler {
	return &RunsHandler{runs: runs}
}

func (h *RunsHandler) Routes() []string {
	return []string{"GET /runs", "GET /runs/{id}"}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if id := chi.URLParam(r, "id"); id != "" {
		h.show(w, r, id)
		return
	}
	h.list(w, r)
}

func (h *RunsHandler) show(w http.ResponseWriter, r *http.Request, id string) {
	run, err := h.runs.Get(r.Context(), id)
	if errors.Is(err, shared.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *RunsHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if name := r.URL.Query().Get("job"); name != "" {
		criteria["job_name"] = name
	}
	if status := r.URL.Query().Get("status"); status != "" {
		criteria["status"] = status
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: limit %q", shared.ErrInvalidArgument, raw))
			return
		}
		criteria["limit"] = limit
	}

	runs, err := h.runs.List(r.Context(), criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*models.JobRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// NewRelayRouter wires the relay endpoints, health check and metrics behind logging and metrics middleware.
func NewRelayRouter(notifier Notifier, runs RunReader, logger *log.Logger) *ChiRouter {
	r := NewChiRouter()
	r.Use(Recoverer(), Logging(logger), Metrics())

	r.Handler(NewEventsHandler(notifier, logger))
	r.Handler(NewRunsHandler(runs))
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
