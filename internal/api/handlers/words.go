package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/selector"
	"github.com/nico/impostor-party-server/internal/service"
)

// WordHandler exposes the content-administration surface and the
// round-feedback calls that tune draw weights.
type WordHandler struct {
	wordService *service.WordService
}

func NewWordHandler(wordService *service.WordService) *WordHandler {
	return &WordHandler{wordService: wordService}
}

func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	words, err := h.wordService.ListWords(r.Context())
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

type AddWordsRequest struct {
	Category string   `json:"category"`
	Words    []string `json:"words"`
}

func (h *WordHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	words, err := h.wordService.AddWords(r.Context(), req.Category, req.Words)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, words)
}

func (h *WordHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid word id", http.StatusBadRequest)
		return
	}

	if err := h.wordService.DeactivateWord(r.Context(), id); err != nil {
		writeGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WordHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	words, err := h.wordService.TopWords(r.Context(), limit)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

func (h *WordHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.wordService.Stats(r.Context())
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type FeedbackRequest struct {
	Outcome string `json:"outcome"`
}

func (h *WordHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid word id", http.StatusBadRequest)
		return
	}

	outcome, ok := parseOutcome(w, r)
	if !ok {
		return
	}

	word, err := h.wordService.Report(r.Context(), id, outcome)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (h *WordHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.wordService.ListThemes(r.Context())
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

type CreateThemeRequest struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func (h *WordHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req CreateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	theme, err := h.wordService.CreateTheme(r.Context(), req.Name, req.Items)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, theme)
}

func (h *WordHandler) ThemeItemFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid theme id", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid item index", http.StatusBadRequest)
		return
	}

	outcome, ok := parseOutcome(w, r)
	if !ok {
		return
	}

	item, err := h.wordService.ReportThemeItem(r.Context(), id, index, outcome)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func parseOutcome(w http.ResponseWriter, r *http.Request) (selector.Outcome, bool) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return "", false
	}

	outcome := selector.Outcome(req.Outcome)
	if !outcome.Valid() {
		http.Error(w, "Outcome must be players_won, impostor_won or abandoned", http.StatusBadRequest)
		return "", false
	}
	return outcome, true
}
