package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/api/middleware"
	"github.com/nico/impostor-party-server/internal/domain"
	"github.com/nico/impostor-party-server/internal/service"
)

// roomSession resolves the caller's session and checks that their token was
// minted for the room in the URL. A token for another room gets the same
// not-found answer as a bad code, so codes stay unguessable.
func roomSession(w http.ResponseWriter, r *http.Request) (*service.Session, string, bool) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, "", false
	}
	code := chi.URLParam(r, "code")
	if sess.RoomCode != code {
		writeGameError(w, domain.ErrRoomNotFound)
		return nil, "", false
	}
	return sess, code, true
}

type RoomHandler struct {
	gameService *service.GameService
}

func NewRoomHandler(gameService *service.GameService) *RoomHandler {
	return &RoomHandler{gameService: gameService}
}

type CreateRoomRequest struct {
	AdminName string `json:"adminName"`
	Category  string `json:"category"`
	ThemeID   string `json:"themeId"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	themeID, ok := optionalUUID(req.ThemeID)
	if !ok {
		http.Error(w, "Invalid theme id", http.StatusBadRequest)
		return
	}

	result, err := h.gameService.CreateRoom(r.Context(), service.CreateRoomInput{
		AdminName: req.AdminName,
		Category:  req.Category,
		ThemeID:   themeID,
	})
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.gameService.Join(r.Context(), code, req.PlayerName)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type RestartRequest struct {
	Category string `json:"category"`
	ThemeID  string `json:"themeId"`
}

func (h *RoomHandler) Restart(w http.ResponseWriter, r *http.Request) {
	sess, code, ok := roomSession(w, r)
	if !ok {
		return
	}

	// The body is optional; a bare restart draws from the default pool.
	var req RestartRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	themeID, valid := optionalUUID(req.ThemeID)
	if !valid {
		http.Error(w, "Invalid theme id", http.StatusBadRequest)
		return
	}

	info, err := h.gameService.Restart(r.Context(), code, sess.PlayerID, req.Category, themeID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *RoomHandler) CallVote(w http.ResponseWriter, r *http.Request) {
	sess, code, ok := roomSession(w, r)
	if !ok {
		return
	}

	if err := h.gameService.CallVote(r.Context(), code, sess.PlayerID); err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "VOTING"})
}

type CastVoteRequest struct {
	TargetID string `json:"targetId"`
}

func (h *RoomHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	sess, code, ok := roomSession(w, r)
	if !ok {
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.gameService.CastVote(r.Context(), code, sess.PlayerID, req.TargetID); err != nil {
		writeGameError(w, err)
		return
	}

	state, err := h.gameService.State(code, sess.PlayerID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *RoomHandler) Continue(w http.ResponseWriter, r *http.Request) {
	sess, code, ok := roomSession(w, r)
	if !ok {
		return
	}

	if err := h.gameService.Continue(r.Context(), code, sess.PlayerID); err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "IN_GAME"})
}

func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	sess, code, ok := roomSession(w, r)
	if !ok {
		return
	}

	state, err := h.gameService.State(code, sess.PlayerID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// optionalUUID parses an optional uuid field; ok is false only when the
// value is present but malformed.
func optionalUUID(s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}
