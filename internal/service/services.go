package service

import (
	"github.com/nico/impostor-party-server/internal/config"
	"github.com/nico/impostor-party-server/internal/game"
	"github.com/nico/impostor-party-server/internal/push"
	"github.com/nico/impostor-party-server/internal/repository"
)

type Services struct {
	Word    *WordService
	Session *SessionService
	Game    *GameService
}

func NewServices(repos *repository.Repositories, registry *game.Registry, hub *push.Hub, cfg *config.Config) *Services {
	words := NewWordService(repos.Word, repos.Theme, nil)
	sessions := NewSessionService(cfg)
	return &Services{
		Word:    words,
		Session: sessions,
		Game:    NewGameService(registry, words, sessions, hub),
	}
}
