package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
}

type selectResponse struct {
	Accepted bool             `json:"accepted"`
	Snapshot *entity.Snapshot `json:"snapshot"`
}

func (that *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, snapshot)
}

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.GetSnapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) handleSelectCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "card id must be an integer"})
		return
	}

	snapshot, accepted, err := that.sessions.SelectCard(r.Context(), chi.URLParam(r, "sessionID"), cardID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, selectResponse{Accepted: accepted, Snapshot: snapshot})
}

func (that *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.Restart(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		that.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps use case errors onto HTTP statuses.
func (that *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperror.ErrSessionNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}

	that.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"requestID", middleware.GetReqID(r.Context()),
		"error", err,
	)
	that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
