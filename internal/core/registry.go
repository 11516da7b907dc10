package core

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lbekker/Boxes/internal/domain"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4

	StatusPlaying = "Playing"
	StatusWaiting = "Waiting"
)

// RoomSummary is one row of the lobby listing.
type RoomSummary struct {
	ID     domain.RoomID `json:"id"`
	Name   string        `json:"name"`
	Count  int           `json:"count"`
	Status string        `json:"status"`
}

// Registry is the process-wide table of live rooms. It owns room lifecycle;
// nothing else creates or deletes a Room.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]*Room
	nextSeq int
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[domain.RoomID]*Room),
		nextSeq: 1,
	}
}

// CreateRoom allocates a fresh room code, seeds the host as player 1 and
// registers the room. Codes are redrawn until they miss every live room.
func (g *Registry) CreateRoom(host *domain.User, sid SessionID, cfg domain.BoardConfig) *Room {
	if !cfg.Valid() {
		cfg = domain.DefaultBoardConfig()
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.newRoomIDLocked()
	room := newRoom(id, g.nextSeq, host, sid, cfg)
	g.nextSeq++
	g.rooms[id] = room
	log.Info().Str("module", "core.registry").Str("room", string(id)).Str("host", string(host.ID)).Msg("room created")
	return room
}

func (g *Registry) newRoomIDLocked() domain.RoomID {
	for {
		code := make([]byte, codeLength)
		for i := range code {
			code[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
		}
		id := domain.RoomID(code)
		if _, taken := g.rooms[id]; !taken {
			return id
		}
	}
}

func (g *Registry) Get(id domain.RoomID) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[id]
	return room, ok
}

func (g *Registry) Delete(id domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[id]; ok {
		delete(g.rooms, id)
		log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room deleted")
	}
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// ListSummaries returns the lobby listing in creation order.
func (g *Registry) ListSummaries() []RoomSummary {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].seqNum() < rooms[j].seqNum() })

	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out
}
