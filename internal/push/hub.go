// Package push broadcasts room state snapshots to websocket watchers. It is
// an optional layer on top of the polling read model: watchers receive a
// snapshot when they subscribe (so late subscribers still see a valid
// countdown/round pairing) and after every room mutation.
package push

import (
	"encoding/json"
	"log"
	"sync"
)

const subscriberBuffer = 8

// Subscriber is one watcher of one room.
type Subscriber struct {
	hub      *Hub
	roomCode string
	send     chan []byte
	once     sync.Once
}

// Receive returns the channel of JSON-encoded snapshots. It is closed when
// the subscriber is removed.
func (s *Subscriber) Receive() <-chan []byte {
	return s.send
}

// Close detaches the subscriber from its room.
func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)
}

// Hub fans room snapshots out to subscribers, keyed by room code.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]bool)}
}

// Subscribe registers a watcher for a room.
func (h *Hub) Subscribe(roomCode string) *Subscriber {
	sub := &Subscriber{
		hub:      h,
		roomCode: roomCode,
		send:     make(chan []byte, subscriberBuffer),
	}

	h.mu.Lock()
	if h.subs[roomCode] == nil {
		h.subs[roomCode] = make(map[*Subscriber]bool)
	}
	h.subs[roomCode][sub] = true
	h.mu.Unlock()

	return sub
}

func (h *Hub) unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if subs, ok := h.subs[sub.roomCode]; ok {
		if subs[sub] {
			delete(subs, sub)
			sub.once.Do(func() { close(sub.send) })
		}
		if len(subs) == 0 {
			delete(h.subs, sub.roomCode)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends a snapshot to every watcher of a room. Slow watchers are
// skipped rather than blocking the caller; they will catch up on the next
// broadcast or fall back to polling.
func (h *Hub) Broadcast(roomCode string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("ERROR [push.Broadcast] marshal snapshot for room %s: %v", roomCode, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[roomCode] {
		select {
		case sub.send <- payload:
		default:
		}
	}
}

// CloseRoom drops every watcher of a room, e.g. after the idle sweep deleted
// it.
func (h *Hub) CloseRoom(roomCode string) {
	h.mu.Lock()
	subs := h.subs[roomCode]
	delete(h.subs, roomCode)
	h.mu.Unlock()

	for sub := range subs {
		sub.once.Do(func() { close(sub.send) })
	}
}
