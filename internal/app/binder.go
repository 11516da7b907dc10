package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lbekker/Boxes/internal/core"
	"github.com/lbekker/Boxes/internal/domain"
)

type sessionEntry struct {
	user *domain.User
	conn core.SignalConn
	room domain.RoomID // empty while the session sits in the lobby
}

// Binder tracks every live connection and which room, if any, it currently
// occupies. One binding per session; no simultaneous multi-room membership.
type Binder struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewBinder() *Binder {
	return &Binder{sessions: make(map[core.SessionID]*sessionEntry)}
}

// Bind registers a fresh connection under a guest identity.
func (b *Binder) Bind(sid core.SessionID, conn core.SignalConn) *domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := domain.NewGuest(string(sid))
	b.sessions[sid] = &sessionEntry{user: user, conn: conn}
	log.Info().Str("module", "app.binder").Str("sid", string(sid)).Msg("bound session")
	return user
}

func (b *Binder) Unbind(sid core.SessionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sid)
	log.Info().Str("module", "app.binder").Str("sid", string(sid)).Msg("unbound session")
}

func (b *Binder) User(sid core.SessionID) (*domain.User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e, ok := b.sessions[sid]; ok {
		return e.user, true
	}
	return nil, false
}

func (b *Binder) UpdateUsername(sid core.SessionID, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.sessions[sid]
	if !ok {
		return ErrNoSession
	}
	return e.user.SetUsername(name)
}

func (b *Binder) SetRoom(sid core.SessionID, room domain.RoomID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.sessions[sid]
	if !ok {
		return false
	}
	e.room = room
	log.Info().Str("module", "app.binder").Str("sid", string(sid)).Str("room", string(room)).Msg("bound to room")
	return true
}

// ReleaseRoom clears the room binding of every session still attached to
// the room and returns their endpoints so the caller can notify them. A
// room can die with spectators still watching; without this they would
// stay bound to the dead id and be refused by every later create or join.
func (b *Binder) ReleaseRoom(room domain.RoomID) []core.SignalConn {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []core.SignalConn
	for sid, e := range b.sessions {
		if e.room == room {
			e.room = ""
			out = append(out, e.conn)
			log.Info().Str("module", "app.binder").Str("sid", string(sid)).Str("room", string(room)).Msg("released from dead room")
		}
	}
	return out
}

func (b *Binder) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.sessions[sid]
	if !ok || e.room == "" {
		return "", false
	}
	return e.room, true
}

// ConnsOfRoom returns the transport endpoints of every session bound to the
// room, players and spectators alike.
func (b *Binder) ConnsOfRoom(room domain.RoomID) []core.SignalConn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []core.SignalConn
	for _, e := range b.sessions {
		if e.room == room {
			out = append(out, e.conn)
		}
	}
	return out
}

// Conns returns every live endpoint, for lobby-wide fan-out.
func (b *Binder) Conns() []core.SignalConn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.SignalConn, 0, len(b.sessions))
	for _, e := range b.sessions {
		out = append(out, e.conn)
	}
	return out
}
