package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/game"
	"github.com/nico/impostor-party-server/internal/push"
)

// GameService orchestrates the room engine: it draws content for lifecycle
// operations, mints session tokens, forwards round outcomes to the word
// service, and pushes fresh snapshots to watchers after every mutation.
type GameService struct {
	registry *game.Registry
	words    *WordService
	sessions *SessionService
	hub      *push.Hub
}

func NewGameService(registry *game.Registry, words *WordService, sessions *SessionService, hub *push.Hub) *GameService {
	s := &GameService{
		registry: registry,
		words:    words,
		sessions: sessions,
		hub:      hub,
	}

	registry.OnEvict = func(code string, report *game.OutcomeReport) {
		if report != nil {
			s.reportOutcome(report)
		}
		s.hub.CloseRoom(code)
	}

	return s
}

type CreateRoomInput struct {
	AdminName string
	Category  string
	ThemeID   *uuid.UUID
}

type CreateRoomResult struct {
	RoomID   string `json:"roomId"`
	Word     string `json:"word"`
	Category string `json:"category"`
	Round    int    `json:"round"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

// CreateRoom draws the first word, creates the room with the caller as admin
// and sole player, and mints the admin's session token.
func (s *GameService) CreateRoom(ctx context.Context, input CreateRoomInput) (*CreateRoomResult, error) {
	draw, err := s.draw(ctx, input.Category, input.ThemeID)
	if err != nil {
		return nil, err
	}

	room, admin, err := s.registry.Create(input.AdminName, draw)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.IssueToken(admin.ID, room.Code(), admin.Name)
	if err != nil {
		s.registry.Delete(room.Code())
		return nil, err
	}

	return &CreateRoomResult{
		RoomID:   room.Code(),
		Word:     draw.Text,
		Category: draw.Category,
		Round:    1,
		PlayerID: admin.ID,
		Token:    token,
	}, nil
}

type JoinResult struct {
	game.JoinView
	Token string `json:"token"`
}

// Join adds a player to a room and mints their session token.
func (s *GameService) Join(ctx context.Context, code, playerName string) (*JoinResult, error) {
	room, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}

	view, err := room.Join(playerName)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.IssueToken(view.PlayerID, code, view.PlayerName)
	if err != nil {
		return nil, err
	}

	s.broadcast(room)
	return &JoinResult{JoinView: view, Token: token}, nil
}

// Restart starts the next round: new word, new picks, synchronized countdown.
func (s *GameService) Restart(ctx context.Context, code, callerID string, category string, themeID *uuid.UUID) (game.CountdownInfo, error) {
	room, err := s.registry.Get(code)
	if err != nil {
		return game.CountdownInfo{}, err
	}

	draw, err := s.draw(ctx, category, themeID)
	if err != nil {
		return game.CountdownInfo{}, err
	}

	info, err := room.Restart(callerID, draw, s.registry.Config(), func() {
		s.broadcast(room)
	})
	if err != nil {
		return game.CountdownInfo{}, err
	}

	s.broadcast(room)
	return info, nil
}

// CallVote opens a voting phase.
func (s *GameService) CallVote(ctx context.Context, code, callerID string) error {
	room, err := s.registry.Get(code)
	if err != nil {
		return err
	}
	if err := room.CallVote(callerID); err != nil {
		return err
	}
	s.broadcast(room)
	return nil
}

// CastVote records a vote; when the phase resolves with a terminal result,
// the outcome is reported against the round's content.
func (s *GameService) CastVote(ctx context.Context, code, voterID, targetID string) error {
	room, err := s.registry.Get(code)
	if err != nil {
		return err
	}

	report, err := room.CastVote(voterID, targetID)
	if err != nil {
		return err
	}
	if report != nil {
		s.reportOutcome(report)
	}
	s.broadcast(room)
	return nil
}

// Continue resumes discussion after a non-terminal vote result.
func (s *GameService) Continue(ctx context.Context, code, callerID string) error {
	room, err := s.registry.Get(code)
	if err != nil {
		return err
	}
	if err := room.Continue(callerID); err != nil {
		return err
	}
	s.broadcast(room)
	return nil
}

// State is the polling read model. Reading stamps the viewer's presence but
// does not count as room activity.
func (s *GameService) State(code, viewerID string) (game.StateView, error) {
	room, err := s.registry.Get(code)
	if err != nil {
		return game.StateView{}, err
	}
	room.Heartbeat(viewerID)
	return room.Snapshot(viewerID), nil
}

func (s *GameService) draw(ctx context.Context, category string, themeID *uuid.UUID) (game.WordDraw, error) {
	if themeID != nil {
		return s.words.PickThemeItem(ctx, *themeID)
	}
	return s.words.PickWord(ctx, category)
}

// reportOutcome feeds a round result back into the weighted pool. Feedback
// is best-effort: a stale reference or a storage hiccup is logged, never
// surfaced to the player whose vote happened to close the round.
func (s *GameService) reportOutcome(report *game.OutcomeReport) {
	if err := s.words.ReportRef(context.Background(), report.Ref, report.Outcome); err != nil {
		log.Printf("ERROR [GameService.reportOutcome] report %s for ref %s: %v", report.Outcome, report.Ref, err)
	}
}

func (s *GameService) broadcast(room *game.Room) {
	s.hub.Broadcast(room.Code(), room.Snapshot(""))
}
