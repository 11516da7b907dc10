// Package app routes client events between the session binder and the room
// registry. Handlers here run to completion; the per-room lock inside core
// keeps concurrent events for the same room from interleaving.
package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/lbekker/Boxes/internal/core"
	"github.com/lbekker/Boxes/internal/domain"
)

var (
	ErrNoSession     = errors.New("no such session")
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyInRoom = errors.New("already in a room")
)

// Orchestrator wires the binder and the registry together. It owns no state
// of its own; it only decides the order of calls.
type Orchestrator struct {
	Binder *Binder
	Rooms  *core.Registry
	Board  domain.BoardConfig
}

// DisconnectResult describes the fallout of a dropped connection.
type DisconnectResult struct {
	InRoom      bool
	RoomID      domain.RoomID
	PlayerGone  int // pIndex, 0 when the session was only spectating
	RoomDeleted bool
	Orphaned    []core.SignalConn // endpoints released from the deleted room
}

// Connect registers a new connection under a guest identity.
func (o *Orchestrator) Connect(sid core.SessionID, conn core.SignalConn) {
	o.Binder.Bind(sid, conn)
}

// RoomList is the current lobby listing.
func (o *Orchestrator) RoomList() []core.RoomSummary {
	return o.Rooms.ListSummaries()
}

// CreateLobby opens a new room with the session as host and player 1.
func (o *Orchestrator) CreateLobby(sid core.SessionID, username string) (core.RoomState, error) {
	if _, ok := o.Binder.RoomOf(sid); ok {
		return core.RoomState{}, ErrAlreadyInRoom
	}
	user, ok := o.Binder.User(sid)
	if !ok {
		return core.RoomState{}, ErrNoSession
	}
	o.rename(sid, username)

	room := o.Rooms.CreateRoom(user, sid, o.Board)
	o.Binder.SetRoom(sid, room.ID())
	return room.Snapshot(), nil
}

// JoinLobby attaches the session to an existing room, as the second player
// when a seat is free, as a spectator otherwise.
func (o *Orchestrator) JoinLobby(sid core.SessionID, roomID domain.RoomID, username string) (core.JoinResult, error) {
	if _, ok := o.Binder.RoomOf(sid); ok {
		return core.JoinResult{}, ErrAlreadyInRoom
	}
	user, ok := o.Binder.User(sid)
	if !ok {
		return core.JoinResult{}, ErrNoSession
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return core.JoinResult{}, ErrRoomNotFound
	}
	o.rename(sid, username)

	res, err := room.Join(user, sid)
	if err != nil {
		// The room emptied out between lookup and join; to the client it
		// simply no longer exists.
		return core.JoinResult{}, ErrRoomNotFound
	}
	o.Binder.SetRoom(sid, roomID)
	return res, nil
}

// MakeMove forwards an edge placement to the addressed room. An unknown
// room id degrades to a rejection rather than an error: the move protocol
// has exactly one reply shape for everything refused.
func (o *Orchestrator) MakeMove(sid core.SessionID, roomID domain.RoomID, mv core.Move) core.MoveResult {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return core.MoveResult{Status: core.MoveRejected, Reason: core.RejectRoomNotFound}
	}
	return room.MakeMove(sid, mv)
}

// Disconnect unwinds whatever the session occupied. The room is deleted the
// moment its player list empties; spectators alone do not keep it alive.
func (o *Orchestrator) Disconnect(sid core.SessionID) DisconnectResult {
	roomID, inRoom := o.Binder.RoomOf(sid)
	o.Binder.Unbind(sid)
	if !inRoom {
		return DisconnectResult{}
	}

	res := DisconnectResult{InRoom: true, RoomID: roomID}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return res
	}
	leave := room.RemoveParticipant(sid)
	res.PlayerGone = leave.PlayerGone
	if leave.Empty {
		o.Rooms.Delete(roomID)
		res.RoomDeleted = true
		// Spectators may still be bound to the dead room; release them
		// so they can create or join another one.
		res.Orphaned = o.Binder.ReleaseRoom(roomID)
	}
	return res
}

func (o *Orchestrator) rename(sid core.SessionID, username string) {
	if username == "" {
		return
	}
	if err := o.Binder.UpdateUsername(sid, username); err != nil {
		log.Warn().Err(err).Str("module", "app").Str("sid", string(sid)).Msg("keeping previous username")
	}
}
