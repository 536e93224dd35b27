package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dev-team-404/slea-ssem-sub001/internal/app"
	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/logger"
	"github.com/gorilla/mux"
)

// Handler exposes the assessment use cases as a JSON API.
type Handler struct {
	service *app.AssessmentService
	log     *logger.Logger
}

func NewHandler(service *app.AssessmentService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{service: service, log: log}
}

// Routes registers the API, the grade websocket and the health check.
func (h *Handler) Routes(ws *WSHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if ws != nil {
		r.HandleFunc("/ws", ws.ServeWS)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions/{sessionID}/complete", h.completeRound).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionID}/rounds/{round:[0-9]+}", h.roundResult).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionID}/rounds/{round:[0-9]+}/plan", h.planNextRound).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/grade", h.grade).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/badges", h.badges).Methods(http.MethodGet)
	return r
}

func (h *Handler) completeRound(w http.ResponseWriter, r *http.Request) {
	rr, err := h.service.CompleteRound(r.Context(), mux.Vars(r)["sessionID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

func (h *Handler) roundResult(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	round, err := strconv.Atoi(vars["round"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid round"})
		return
	}
	rr, err := h.service.RoundResult(r.Context(), vars["sessionID"], round)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

func (h *Handler) planNextRound(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	round, err := strconv.Atoi(vars["round"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid round"})
		return
	}
	size := h.service.Settings().DefaultRoundSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid size"})
			return
		}
	}
	plan, err := h.service.PlanNextRound(r.Context(), vars["sessionID"], round, size)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) grade(w http.ResponseWriter, r *http.Request) {
	gr, err := h.service.ComputeGrade(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gr)
}

func (h *Handler) badges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.service.Badges(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, badges)
}

type errorBody struct {
	Error string `json:"error"`
	State string `json:"state,omitempty"`
}

// notAssessed tells presentation layers to render "not yet assessed" rather
// than a zero grade.
const notAssessed = "not_assessed"

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoResult), domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), State: notAssessed})
	case errors.Is(err, domain.ErrInvalidAllocation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidRoundResult), errors.Is(err, domain.ErrNoCategories):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		h.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
