package handler

import (
	"encoding/json"
	"net/http"

	"predictbattle/internal/service"
	"predictbattle/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SessionHandler handles session endpoints.
type SessionHandler struct {
	sessionSvc   *service.SessionService
	createSecret string
}

// NewSessionHandler creates a new session handler. createSecret is the
// shared admission passphrase for session creation; empty disables the
// check.
func NewSessionHandler(sessionSvc *service.SessionService, createSecret string) *SessionHandler {
	return &SessionHandler{
		sessionSvc:   sessionSvc,
		createSecret: createSecret,
	}
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	Title      string `json:"title"`
	MaxPlayers int    `json:"maxPlayers"`
	SecretCode string `json:"secretCode"`
}

// JoinSessionRequest is the request body for joining by code.
type JoinSessionRequest struct {
	Code string `json:"code"`
}

// PredictRequest is the request body for submitting a prediction.
type PredictRequest struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
}

// Create handles POST /api/sessions/create
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Admission policy, not part of the engine.
	if h.createSecret != "" && req.SecretCode != h.createSecret {
		writeError(w, http.StatusForbidden, "incorrect secret code")
		return
	}

	actor := middleware.GetActor(r.Context())
	view, err := h.sessionSvc.Create(r.Context(), actor, req.Title, req.MaxPlayers)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"session": view})
}

// Join handles POST /api/sessions/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := middleware.GetActor(r.Context())
	view, err := h.sessionSvc.Join(r.Context(), actor, req.Code)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": view})
}

// Predict handles POST /api/sessions/predict
func (h *SessionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	actor := middleware.GetActor(r.Context())
	ack, err := h.sessionSvc.SubmitPrediction(r.Context(), actor, req.SessionID, req.Content)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, ack)
}

// Get handles GET /api/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	actor := middleware.GetActor(r.Context())

	view, err := h.sessionSvc.GetView(r.Context(), actor, sessionID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": view})
}

// List handles GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	summaries, err := h.sessionSvc.ListForActor(r.Context(), actor)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": summaries})
}
