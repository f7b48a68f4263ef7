package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/application/services/orchestration"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/events"
)

// Runner is the part of the orchestrator the handlers use
type Runner interface {
	Run(ctx context.Context) (*orchestration.RunReport, error)
	Last() *orchestration.RunReport
	Store() repositories.RecommendationStore
	Events() events.EventStore
}

var _ Runner = (*orchestration.ETAOrchestrator)(nil)

// Handler holds the dependencies of the HTTP handlers
type Handler struct {
	runner Runner
	logger *zap.Logger
}

func NewHandler(runner Runner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{runner: runner, logger: logger}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRecommendations returns the current snapshot, filtered by the optional
// po, item and warehouse query parameters. Without a store the last run's
// recommendations are served.
func (h *Handler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	var recs []*entities.ETARecommendation
	if store := h.runner.Store(); store != nil {
		var err error
		recs, err = store.Latest(r.Context())
		if err != nil {
			h.logger.Error("failed to read snapshot", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read snapshot", err)
			return
		}
	} else if last := h.runner.Last(); last != nil {
		recs = last.Result.Recommendations
	}

	q := r.URL.Query()
	po, item, wh := q.Get("po"), q.Get("item"), q.Get("warehouse")
	out := make([]*entities.ETARecommendation, 0, len(recs))
	for _, rec := range recs {
		if po != "" && !strings.EqualFold(rec.PONumber, po) {
			continue
		}
		if item != "" && !strings.EqualFold(rec.ItemCode, item) {
			continue
		}
		if wh != "" && !strings.EqualFold(rec.Warehouse, wh) {
			continue
		}
		out = append(out, rec)
	}
	writeJSON(w, http.StatusOK, out)
}

// TriggerRun runs the engine synchronously
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.Run(r.Context())
	if errors.Is(err, orchestration.ErrRunInProgress) {
		writeError(w, http.StatusConflict, "a run is already in progress", nil)
		return
	}
	if err != nil {
		h.logger.Error("triggered run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "run failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRunDTO(report))
}

// LastRun describes the most recent successful run
func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	last := h.runner.Last()
	if last == nil {
		writeError(w, http.StatusNotFound, "no run has completed yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(last))
}

// RunChanges lists the change log written by a run
func (h *Handler) RunChanges(w http.ResponseWriter, r *http.Request) {
	store := h.runner.Store()
	if store == nil {
		writeError(w, http.StatusNotFound, "runs are not persisted", nil)
		return
	}
	changes, err := store.Changes(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read change log", err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeDTOs(changes))
}

// ListEvents replays the run journal after the optional from position,
// limited to one stream when stream is given
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	journal := h.runner.Events()
	if journal == nil {
		writeError(w, http.StatusNotFound, "event journal is disabled", nil)
		return
	}

	from := 0
	if v := r.URL.Query().Get("from"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "from must be a non-negative integer", err)
			return
		}
		from = n
	}

	all, err := journal.ReadAllEvents(from)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read events", err)
		return
	}
	stream := r.URL.Query().Get("stream")
	out := make([]EventDTO, 0, len(all))
	for _, e := range all {
		if stream != "" && e.StreamID() != stream {
			continue
		}
		out = append(out, toEventDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
