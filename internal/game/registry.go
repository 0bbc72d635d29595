package game

import (
	"context"
	crand "crypto/rand"
	"log"
	"sync"
	"time"

	"github.com/nico/impostor-party-server/internal/domain"
)

// Config carries the engine's timing knobs. Tests shrink these.
type Config struct {
	CountdownDelay  time.Duration // delay between restart and round reveal
	PresenceTimeout time.Duration // silence after which a player is evicted at restart
	RoomIdleTimeout time.Duration // inactivity after which a room is deleted
	SweepInterval   time.Duration // how often the idle sweep runs
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		CountdownDelay:  5 * time.Second,
		PresenceTimeout: 50 * time.Second,
		RoomIdleTimeout: 15 * time.Minute,
		SweepInterval:   time.Minute,
	}
}

const (
	codeLength  = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Registry owns every live room. Rooms live only in this process's memory;
// there is no durable storage and no cross-room operation.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   Config

	// OnEvict, when set, receives the abandoned-round report of each room the
	// idle sweep deletes mid-round. Called outside any lock.
	OnEvict func(code string, report *OutcomeReport)
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		cfg:   cfg,
	}
}

// Config returns the timing configuration rooms were created with.
func (g *Registry) Config() Config {
	return g.cfg
}

// Create allocates a fresh room code, seeds the admin as the sole player and
// installs the first word.
func (g *Registry) Create(adminName string, draw WordDraw) (*Room, *Player, error) {
	if adminName == "" {
		return nil, nil, domain.ErrInvalidName
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var code string
	for {
		c, err := newRoomCode()
		if err != nil {
			return nil, nil, err
		}
		if _, taken := g.rooms[c]; !taken {
			code = c
			break
		}
	}

	room, admin := newRoom(code, adminName, draw, time.Now())
	g.rooms[code] = room
	return room, admin, nil
}

// Get looks up a live room by code.
func (g *Registry) Get(code string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	room, ok := g.rooms[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// Delete removes a room and cancels its pending reveal timer.
func (g *Registry) Delete(code string) {
	g.mu.Lock()
	room, ok := g.rooms[code]
	delete(g.rooms, code)
	g.mu.Unlock()

	if ok {
		room.close()
	}
}

// Sweep deletes every room idle beyond the configured timeout. Sweeping is
// best-effort housekeeping; eviction reports go to OnEvict and failures
// there must be handled by the hook, never propagated.
func (g *Registry) Sweep(now time.Time) int {
	g.mu.Lock()
	var expired []*Room
	for code, room := range g.rooms {
		if room.idleSince(now, g.cfg.RoomIdleTimeout) {
			delete(g.rooms, code)
			expired = append(expired, room)
		}
	}
	g.mu.Unlock()

	for _, room := range expired {
		report := room.close()
		log.Printf("game: swept idle room %s", room.Code())
		if g.OnEvict != nil {
			g.OnEvict(room.Code(), report)
		}
	}
	return len(expired)
}

// Run drives the idle sweep on the configured interval until ctx is done.
func (g *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.Sweep(now)
		}
	}
}

// codeByteMax is the largest byte value usable without modulo bias:
// the biggest multiple of len(codeCharset) that fits in a byte.
const codeByteMax = byte(256 / len(codeCharset) * len(codeCharset))

// newRoomCode builds a 6-character uppercase alphanumeric join code with
// uniform character distribution.
func newRoomCode() (string, error) {
	code := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(code) < codeLength {
		if _, err := crand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if len(code) == codeLength {
				break
			}
			if b >= codeByteMax {
				continue
			}
			code = append(code, codeCharset[int(b)%len(codeCharset)])
		}
	}
	return string(code), nil
}
