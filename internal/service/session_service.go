package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nico/impostor-party-server/internal/config"
)

// Session is the caller identity carried by the opaque token minted at
// create/join time. There are no accounts; a session is scoped to one player
// in one room.
type Session struct {
	PlayerID   string
	RoomCode   string
	PlayerName string
}

type SessionService struct {
	cfg *config.Config
}

func NewSessionService(cfg *config.Config) *SessionService {
	return &SessionService{cfg: cfg}
}

func (s *SessionService) IssueToken(playerID, roomCode, playerName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  playerID,
		"room": roomCode,
		"name": playerName,
		"exp":  time.Now().Add(time.Duration(s.cfg.SessionExpirationHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

func (s *SessionService) ValidateToken(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	playerID, _ := claims["sub"].(string)
	roomCode, _ := claims["room"].(string)
	playerName, _ := claims["name"].(string)
	if playerID == "" || roomCode == "" {
		return nil, errors.New("invalid token claims")
	}

	return &Session{
		PlayerID:   playerID,
		RoomCode:   roomCode,
		PlayerName: playerName,
	}, nil
}
