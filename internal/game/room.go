package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/domain"
	"github.com/nico/impostor-party-server/internal/selector"
)

// WordDraw is the content handed to a room for one round: the secret text, a
// reference usable to report round feedback, and the pool tag it came from.
type WordDraw struct {
	Ref      string `json:"ref"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// OutcomeReport is produced when a round reaches a terminal result, or when
// an idle room is swept mid-round. The owner of the content pool turns it
// into a weight adjustment.
type OutcomeReport struct {
	Ref      string
	Category string
	Outcome  selector.Outcome
}

// Player is one participant's state, owned exclusively by its Room.
type Player struct {
	ID       string
	Name     string
	IsAlive  bool
	HasVoted bool
	LastSeen time.Time
}

type pendingRound struct {
	round      int
	word       WordDraw
	impostorID string
	starterID  string
}

// Room is the aggregate for one live game. All exported methods lock the
// room; concurrent requests against the same room are serialized here, and
// different rooms never share state.
type Room struct {
	mu sync.Mutex

	code    string
	adminID string

	status domain.RoomStatus
	round  int

	word     WordDraw
	lastWord string

	players map[string]*Player

	impostorID    string
	starterID     string
	lastStarterID string

	votes           map[string][]string // target id -> voter ids
	votersRemaining int
	eliminatedID    string
	winner          domain.Winner
	winReason       string

	nextRoundAt  *time.Time
	lastActivity time.Time

	pending         *pendingRound
	revealTimer     *time.Timer
	outcomeReported bool
	closed          bool
}

func newRoom(code string, adminName string, draw WordDraw, now time.Time) (*Room, *Player) {
	admin := &Player{
		ID:       uuid.New().String(),
		Name:     adminName,
		IsAlive:  true,
		LastSeen: now,
	}

	r := &Room{
		code:         code,
		adminID:      admin.ID,
		status:       domain.RoomStatusInGame,
		round:        1,
		word:         draw,
		players:      map[string]*Player{admin.ID: admin},
		starterID:    admin.ID,
		votes:        make(map[string][]string),
		lastActivity: now,
	}
	return r, admin
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// AdminID returns the id of the player who created the room.
func (r *Room) AdminID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adminID
}

// JoinView is what a joining player learns about the running round.
type JoinView struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Word       string `json:"word"`
	IsImpostor bool   `json:"isImpostor"`
	Round      int    `json:"round"`
}

// Join adds a new player. The impostor for a running round was fixed at the
// last restart, so a mid-round joiner always receives the real word.
func (r *Room) Join(name string) (JoinView, error) {
	if name == "" {
		return JoinView{}, domain.ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p := &Player{
		ID:       uuid.New().String(),
		Name:     name,
		IsAlive:  true,
		LastSeen: now,
	}
	r.players[p.ID] = p
	if r.status == domain.RoomStatusVoting {
		// The joiner is alive and has not voted, so the open tally now
		// waits for them too.
		r.votersRemaining++
	}
	r.lastActivity = now

	return JoinView{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Word:       r.word.Text,
		IsImpostor: false,
		Round:      r.round,
	}, nil
}

// Heartbeat stamps a player's presence without counting as room activity.
func (r *Room) Heartbeat(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok {
		p.LastSeen = time.Now()
	}
}

// CallVote moves the room from IN_GAME to VOTING. Any alive player may call
// it; no quorum is needed to start a vote.
func (r *Room) CallVote(callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	caller, ok := r.players[callerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if !caller.IsAlive {
		return domain.ErrPlayerDead
	}
	// A pending reveal means the room is counting down to the next round;
	// a vote opened now would straddle the word swap.
	if r.status != domain.RoomStatusInGame || r.pending != nil {
		return domain.ErrWrongPhase
	}

	r.status = domain.RoomStatusVoting
	r.votes = make(map[string][]string)
	r.eliminatedID = ""
	alive := 0
	for _, p := range r.players {
		p.HasVoted = false
		if p.IsAlive {
			alive++
		}
	}
	r.votersRemaining = alive
	r.touch(callerID)
	return nil
}

// CastVote records one vote. When the last alive player votes, the tally is
// resolved immediately and the room moves to RESULTS; if the round reached a
// terminal result, the returned report carries the outcome for the content
// pool.
func (r *Room) CastVote(voterID, targetID string) (*OutcomeReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	voter, ok := r.players[voterID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	if !voter.IsAlive {
		return nil, domain.ErrPlayerDead
	}
	if r.status != domain.RoomStatusVoting {
		return nil, domain.ErrWrongPhase
	}
	if voter.HasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	target, ok := r.players[targetID]
	if !ok || !target.IsAlive || targetID == voterID {
		return nil, domain.ErrInvalidTarget
	}

	r.votes[targetID] = append(r.votes[targetID], voterID)
	voter.HasVoted = true
	r.votersRemaining--
	r.touch(voterID)

	if r.votersRemaining > 0 {
		return nil, nil
	}
	return r.resolveVotes(), nil
}

// resolveVotes closes the voting phase. Caller holds r.mu.
func (r *Room) resolveVotes() *OutcomeReport {
	alive := 0
	for _, p := range r.players {
		if p.IsAlive {
			alive++
		}
	}
	threshold := (alive + 1) / 2 // ceil(alive/2)

	topID, topCount, tied := "", 0, false
	for id, voters := range r.votes {
		switch {
		case len(voters) > topCount:
			topID, topCount, tied = id, len(voters), false
		case len(voters) == topCount:
			tied = true
		}
	}

	r.status = domain.RoomStatusResults

	if tied || topCount < threshold {
		// No majority: nobody is eliminated, the round continues.
		r.eliminatedID = ""
		return nil
	}

	r.eliminatedID = topID

	if topID == r.impostorID {
		r.winner = domain.WinnerPlayers
		r.winReason = domain.WinReasonImpostorEliminated
		r.outcomeReported = true
		return &OutcomeReport{Ref: r.word.Ref, Category: r.word.Category, Outcome: selector.OutcomePlayersWon}
	}

	r.players[topID].IsAlive = false

	remaining := 0
	for _, p := range r.players {
		if p.IsAlive {
			remaining++
		}
	}
	if remaining == 2 && r.impostorID != "" {
		// Final-two rule: with two survivors the impostor can no longer be
		// outvoted, so the round ends in their favor.
		r.winner = domain.WinnerImpostor
		r.winReason = domain.WinReasonImpostorSurvived
		r.outcomeReported = true
		return &OutcomeReport{Ref: r.word.Ref, Category: r.word.Category, Outcome: selector.OutcomeImpostorWon}
	}

	return nil
}

// Continue moves the room from RESULTS back to IN_GAME for the same round:
// same word, same impostor, the reduced alive set keeps discussing. Once a
// winner has been decided the round is over and only a restart applies.
func (r *Room) Continue(callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if callerID != r.adminID {
		return domain.ErrNotAdmin
	}
	if r.status != domain.RoomStatusResults || r.winner != domain.WinnerNone {
		return domain.ErrWrongPhase
	}

	r.status = domain.RoomStatusInGame
	r.votes = make(map[string][]string)
	r.votersRemaining = 0
	r.eliminatedID = ""
	for _, p := range r.players {
		p.HasVoted = false
	}
	r.touch(callerID)
	return nil
}

// touch stamps activity and presence for one player. Caller holds r.mu.
func (r *Room) touch(playerID string) {
	now := time.Now()
	r.lastActivity = now
	if p, ok := r.players[playerID]; ok {
		p.LastSeen = now
	}
}

// idleSince reports whether the room has seen no state-changing operation
// for longer than timeout.
func (r *Room) idleSince(now time.Time, timeout time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Sub(r.lastActivity) > timeout
}

// close cancels any pending reveal so a deleted room's timer cannot fire.
// It returns an abandoned-round report when the current word never got a
// terminal result.
func (r *Room) close() *OutcomeReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.revealTimer != nil {
		r.revealTimer.Stop()
		r.revealTimer = nil
	}
	r.pending = nil

	if r.outcomeReported || r.word.Ref == "" {
		return nil
	}
	r.outcomeReported = true
	return &OutcomeReport{Ref: r.word.Ref, Category: r.word.Category, Outcome: selector.OutcomeAbandoned}
}

func sortedPlayerIDs(players map[string]*Player) []string {
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
