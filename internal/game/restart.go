package game

import (
	"math/rand"
	"time"

	"github.com/nico/impostor-party-server/internal/domain"
)

// CountdownInfo is returned to the admin after a restart: the moment the new
// round becomes visible, plus the already-decided content and role picks.
type CountdownInfo struct {
	NextRoundAt     time.Time `json:"nextRoundAt"`
	Word            string    `json:"word"`
	ImpostorID      string    `json:"impostorId"`
	StarterPlayerID string    `json:"starterPlayerId"`
	StarterName     string    `json:"starterName"`
}

// Restart begins the next round. Admin only. It evicts players who have been
// silent longer than cfg.PresenceTimeout, then decides the new word, starter
// and impostor immediately but holds them pending: a deferred task fires at
// nextRoundAt, swaps the pending round in atomically, and advances the round
// counter. Until then every poll sees the old round alongside the countdown
// timestamp, so all clients count down in sync. A newer restart or a room
// deletion supersedes the pending reveal.
//
// The starter pick excludes the previous starter whenever more than one
// player is active; the impostor pick has no such exclusion, and a repeat
// impostor across consecutive rounds is intentional.
func (r *Room) Restart(callerID string, draw WordDraw, cfg Config, onReveal func()) (CountdownInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if callerID != r.adminID {
		return CountdownInfo{}, domain.ErrNotAdmin
	}

	now := time.Now()
	r.sweepPresenceLocked(now, cfg.PresenceTimeout)

	active := sortedPlayerIDs(r.players)

	starterID := pickRandom(excludeID(active, r.starterID))
	impostorID := pickRandom(active)

	for _, p := range r.players {
		p.IsAlive = true
		p.HasVoted = false
	}
	r.status = domain.RoomStatusInGame
	r.votes = make(map[string][]string)
	r.votersRemaining = 0
	r.eliminatedID = ""
	r.winner = domain.WinnerNone
	r.winReason = ""

	next := now.Add(cfg.CountdownDelay)
	r.nextRoundAt = &next
	r.pending = &pendingRound{
		round:      r.round + 1,
		word:       draw,
		impostorID: impostorID,
		starterID:  starterID,
	}
	r.touch(callerID)

	if r.revealTimer != nil {
		r.revealTimer.Stop()
	}
	revealRound := r.pending.round
	r.revealTimer = time.AfterFunc(cfg.CountdownDelay, func() {
		r.reveal(revealRound, onReveal)
	})

	starterName := ""
	if p, ok := r.players[starterID]; ok {
		starterName = p.Name
	}

	return CountdownInfo{
		NextRoundAt:     next,
		Word:            draw.Text,
		ImpostorID:      impostorID,
		StarterPlayerID: starterID,
		StarterName:     starterName,
	}, nil
}

// reveal applies a pending round. It fires exactly once per restart: a stale
// timer whose round no longer matches the pending one is a no-op, as is a
// timer that outlived its room.
func (r *Room) reveal(round int, onReveal func()) {
	r.mu.Lock()
	if r.closed || r.pending == nil || r.pending.round != round {
		r.mu.Unlock()
		return
	}

	p := r.pending
	r.lastWord = r.word.Text
	r.word = p.word
	r.lastStarterID = r.starterID
	r.starterID = p.starterID
	r.impostorID = p.impostorID
	r.round = p.round
	r.nextRoundAt = nil
	r.pending = nil
	r.revealTimer = nil
	r.outcomeReported = false
	r.mu.Unlock()

	if onReveal != nil {
		onReveal()
	}
}

// sweepPresenceLocked drops players whose last heartbeat is older than
// timeout. Eviction is lazy: it only runs here, at restart time, so a silent
// player can still be picked for the round already in progress. Caller holds
// r.mu.
func (r *Room) sweepPresenceLocked(now time.Time, timeout time.Duration) {
	for id, p := range r.players {
		if now.Sub(p.LastSeen) > timeout {
			delete(r.players, id)
		}
	}
}

func excludeID(ids []string, exclude string) []string {
	if len(ids) <= 1 {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return ids
	}
	return out
}

func pickRandom(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[rand.Intn(len(ids))]
}
