package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/parlo-app/srs-engine/internal/api/shared"
	"github.com/parlo-app/srs-engine/internal/domain"
	"github.com/parlo-app/srs-engine/internal/platform/logger"
	"github.com/parlo-app/srs-engine/internal/service/review"
)

// ErrSessionNotFound indicates the referenced review session does not exist
// or has been abandoned.
var ErrSessionNotFound = errors.New("session not found")

// SessionHandler handles review session HTTP requests. Sessions are
// ephemeral and held in memory only; they disappear on restart, which is
// acceptable because any already-graded cards are persisted per card.
type SessionHandler struct {
	service *review.Service
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

// sessionEntry pairs a session with its own lock. The registry mutex guards
// only the map; the session itself expects to be driven serially, and chi
// serves each request on its own goroutine, so every Reveal/Grade/read runs
// under the entry lock.
type sessionEntry struct {
	mu      sync.Mutex
	session *review.Session
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *review.Service, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		service:  service,
		logger:   logger.With(slog.String("component", "session_handler")),
		sessions: make(map[uuid.UUID]*sessionEntry),
	}
}

// StartSession handles POST /sessions requests. The due queue is snapshotted
// at this moment; cards becoming due later are not pulled into the sitting.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StartSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	filter := domain.DeckFilter{
		Tag:        req.DeckTag,
		Difficulty: domain.Difficulty(req.Difficulty),
	}

	session, err := h.service.Start(r.Context(), filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to start review session", err)
		return
	}

	id := uuid.New()
	resp := h.sessionResponse(id, session)
	h.mu.Lock()
	h.sessions[id] = &sessionEntry{session: session}
	h.mu.Unlock()

	log.Debug("started session",
		slog.String("session_id", id.String()),
		slog.String("state", string(session.State())))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// GetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	entry.mu.Lock()
	resp := h.sessionResponse(id, entry.session)
	entry.mu.Unlock()

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Reveal handles POST /sessions/{id}/reveal requests, disclosing the back
// face of the current card.
func (h *SessionHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	entry.mu.Lock()
	err := entry.session.Reveal()
	var resp SessionResponse
	if err == nil {
		resp = h.sessionResponse(id, entry.session)
	}
	entry.mu.Unlock()

	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Grade handles POST /sessions/{id}/grade requests. Both grade buttons and
// swipe gestures in the client funnel into this single entry point.
func (h *SessionHandler) Grade(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome := domain.ReviewOutcome(req.Outcome)
	if !outcome.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid review grade")
		return
	}

	entry.mu.Lock()
	err := entry.session.Grade(r.Context(), outcome)
	var resp SessionResponse
	if err == nil {
		resp = h.sessionResponse(id, entry.session)
	}
	entry.mu.Unlock()

	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// AbandonSession handles DELETE /sessions/{id} requests. Already-graded
// cards remain persisted; only the session statistics are discarded.
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	h.mu.Lock()
	_, existed := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !existed {
		shared.RespondWithError(w, r, http.StatusNotFound, GetSafeErrorMessage(ErrSessionNotFound))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) lookup(
	w http.ResponseWriter,
	r *http.Request,
) (uuid.UUID, *sessionEntry, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, nil, false
	}

	h.mu.Lock()
	entry, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, GetSafeErrorMessage(ErrSessionNotFound))
		return uuid.Nil, nil, false
	}

	return id, entry, true
}

// sessionResponse renders the session state, withholding the back face of
// the current card until it has been revealed.
func (h *SessionHandler) sessionResponse(id uuid.UUID, session *review.Session) SessionResponse {
	resp := SessionResponse{
		ID:        id.String(),
		State:     string(session.State()),
		Remaining: session.Remaining(),
		Summary:   session.Summary(),
	}

	if card, err := session.Current(); err == nil {
		switch session.State() {
		case review.StateRevealed:
			resp.Card = revealedCardToResponse(card)
		default:
			resp.Card = presentedCardToResponse(card)
		}
	}

	return resp
}
