package game

import (
	"sort"
	"time"

	"github.com/nico/impostor-party-server/internal/domain"
)

// PlayerView is the per-player slice of the read model.
type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsAlive  bool   `json:"isAlive"`
	HasVoted bool   `json:"hasVoted"`
}

// StateView is the read model clients poll every few seconds. The word is
// masked for the impostor and for viewers who are not alive-and-playing
// members of the room, so the same shape is safe to push to watchers.
type StateView struct {
	RoomID             string            `json:"roomId"`
	Round              int               `json:"round"`
	Word               string            `json:"word"`
	LastWord           string            `json:"lastWord,omitempty"`
	Category           string            `json:"category"`
	TotalPlayers       int               `json:"totalPlayers"`
	IsAdmin            bool              `json:"isAdmin"`
	Status             domain.RoomStatus `json:"status"`
	NextRoundAt        *time.Time        `json:"nextRoundAt"`
	VotesTally         map[string]int    `json:"votesTally"`
	VotersRemaining    int               `json:"votersRemaining"`
	EliminatedPlayerID string            `json:"eliminatedPlayerId,omitempty"`
	StarterPlayerID    string            `json:"starterPlayerId,omitempty"`
	Winner             domain.Winner     `json:"winner,omitempty"`
	WinReason          string            `json:"winReason,omitempty"`
	Players            []PlayerView      `json:"players"`
}

// Snapshot renders the room as seen by viewerID. An empty or unknown viewer
// gets the masked word.
func (r *Room) Snapshot(viewerID string) StateView {
	r.mu.Lock()
	defer r.mu.Unlock()

	word := domain.MaskedWord
	if _, ok := r.players[viewerID]; ok && viewerID != r.impostorID {
		word = r.word.Text
	}

	tally := make(map[string]int, len(r.votes))
	for target, voters := range r.votes {
		tally[target] = len(voters)
	}

	players := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			IsAlive:  p.IsAlive,
			HasVoted: p.HasVoted,
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })

	var nextRoundAt *time.Time
	if r.nextRoundAt != nil {
		t := *r.nextRoundAt
		nextRoundAt = &t
	}

	return StateView{
		RoomID:             r.code,
		Round:              r.round,
		Word:               word,
		LastWord:           r.lastWord,
		Category:           r.word.Category,
		TotalPlayers:       len(r.players),
		IsAdmin:            viewerID == r.adminID,
		Status:             r.status,
		NextRoundAt:        nextRoundAt,
		VotesTally:         tally,
		VotersRemaining:    r.votersRemaining,
		EliminatedPlayerID: r.eliminatedID,
		StarterPlayerID:    r.starterID,
		Winner:             r.winner,
		WinReason:          r.winReason,
		Players:            players,
	}
}
