package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lbekker/Boxes/internal/domain"
	"github.com/lbekker/Boxes/internal/game"
)

// ErrRoomClosed is returned by Join when the last player has already left
// and the room is about to disappear from the registry.
var ErrRoomClosed = errors.New("room closed")

// Move is one edge placement as submitted by a client.
type Move struct {
	Kind game.EdgeKind `json:"type"`
	R    int           `json:"r"`
	C    int           `json:"c"`
}

// RejectReason tells the requester why a move was refused.
type RejectReason string

const (
	RejectRoomNotFound RejectReason = "room_not_found"
	RejectNotInRoom    RejectReason = "not_in_room"
	RejectNotYourTurn  RejectReason = "not_your_turn"
	RejectGameOver     RejectReason = "game_over"
	RejectBadMove      RejectReason = "bad_move"
)

type MoveStatus int

const (
	MoveRejected MoveStatus = iota
	MovePlain
	MoveScored
	MoveGameOver
)

// MoveResult is the outcome of one MakeMove call. State is only populated
// for accepted moves; rejected moves leave the room untouched.
type MoveResult struct {
	Status  MoveStatus
	Reason  RejectReason
	Move    Move
	Settled []game.Cell
	Scorer  int
	Winner  int
	State   RoomState
}

type Role int

const (
	RolePlayer Role = iota
	RoleSpectator
)

// JoinResult reports which seat (if any) the joiner got.
type JoinResult struct {
	Role   Role
	PIndex int
	State  RoomState
}

// LeaveResult reports what RemoveParticipant actually removed.
type LeaveResult struct {
	PlayerGone    int // pIndex of the removed player, 0 if none
	SpectatorGone bool
	Empty         bool // no players remain; the registry must delete the room
}

type player struct {
	user   *domain.User
	sid    SessionID
	pIndex int
	score  int
}

type spectator struct {
	user *domain.User
	sid  SessionID
}

// Room is one game: participants, board and turn state.
//
// Every exported method holds the room lock for its whole body, so two
// sessions can never interleave their read-modify-write of board, turn or
// score. Snapshots are taken under the same lock as the mutation that
// produced them.
type Room struct {
	mu sync.Mutex

	id   domain.RoomID
	seq  int
	host string
	cfg  domain.BoardConfig

	players    []*player
	spectators []spectator

	board    *game.Board
	turn     int
	gameOver bool
	closed   bool
}

func newRoom(id domain.RoomID, seq int, host *domain.User, sid SessionID, cfg domain.BoardConfig) *Room {
	r := &Room{
		id:    id,
		seq:   seq,
		host:  host.Username,
		cfg:   cfg,
		board: game.NewBoard(cfg.Rows, cfg.Cols),
		turn:  1,
	}
	r.players = append(r.players, &player{user: host, sid: sid, pIndex: 1})
	return r
}

func (r *Room) ID() domain.RoomID { return r.id }

// Join seats the joiner as the second player when a seat is free, otherwise
// attaches them as a spectator. Filling the second seat always starts a
// fresh game, even when a previous pairing left a half-played board behind.
func (r *Room) Join(user *domain.User, sid SessionID) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return JoinResult{}, ErrRoomClosed
	}

	if len(r.players) < 2 {
		pIndex := 1
		for _, p := range r.players {
			if p.pIndex == 1 {
				pIndex = 2
			}
		}
		r.players = append(r.players, &player{user: user, sid: sid, pIndex: pIndex})
		r.restartLocked()
		log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(user.ID)).Int("p_index", pIndex).Msg("player joined, game starts")
		return JoinResult{Role: RolePlayer, PIndex: pIndex, State: r.snapshotLocked()}, nil
	}

	r.spectators = append(r.spectators, spectator{user: user, sid: sid})
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("user", string(user.ID)).Msg("spectator joined")
	return JoinResult{Role: RoleSpectator, State: r.snapshotLocked()}, nil
}

func (r *Room) restartLocked() {
	r.board = game.NewBoard(r.cfg.Rows, r.cfg.Cols)
	r.turn = 1
	r.gameOver = false
	for _, p := range r.players {
		p.score = 0
	}
}

// MakeMove resolves the acting player from the session id, validates the
// move and mutates board/turn/score accordingly. Rejections carry a reason
// and leave no trace on the room.
func (r *Room) MakeMove(sid SessionID, mv Move) MoveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mover *player
	for _, p := range r.players {
		if p.sid == sid {
			mover = p
			break
		}
	}
	if mover == nil {
		return MoveResult{Status: MoveRejected, Reason: RejectNotInRoom}
	}
	if r.gameOver {
		return MoveResult{Status: MoveRejected, Reason: RejectGameOver}
	}
	if mover.pIndex != r.turn {
		return MoveResult{Status: MoveRejected, Reason: RejectNotYourTurn}
	}
	if !r.board.ApplyEdge(mv.Kind, mv.R, mv.C, mover.pIndex) {
		return MoveResult{Status: MoveRejected, Reason: RejectBadMove}
	}

	settled := r.board.SettleBoxes(mover.pIndex)
	if len(settled) == 0 {
		if r.turn == 1 {
			r.turn = 2
		} else {
			r.turn = 1
		}
		return MoveResult{Status: MovePlain, Move: mv, State: r.snapshotLocked()}
	}

	// Closing a box grants another move, so the turn stays put.
	mover.score += len(settled)
	if r.board.Full(r.totalScoreLocked()) {
		r.gameOver = true
		log.Info().Str("module", "core.room").Str("room", string(r.id)).Int("winner", mover.pIndex).Msg("game over")
		return MoveResult{
			Status:  MoveGameOver,
			Move:    mv,
			Settled: settled,
			Scorer:  mover.pIndex,
			Winner:  mover.pIndex,
			State:   r.snapshotLocked(),
		}
	}
	return MoveResult{
		Status:  MoveScored,
		Move:    mv,
		Settled: settled,
		Scorer:  mover.pIndex,
		State:   r.snapshotLocked(),
	}
}

// RemoveParticipant drops whichever seat the session holds, player or
// spectator. When the last player goes the room is marked closed so a
// concurrent Join cannot revive it behind the registry's back.
func (r *Room) RemoveParticipant(sid SessionID) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res LeaveResult
	for i, p := range r.players {
		if p.sid == sid {
			res.PlayerGone = p.pIndex
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	for i, s := range r.spectators {
		if s.sid == sid {
			res.SpectatorGone = true
			r.spectators = append(r.spectators[:i], r.spectators[i+1:]...)
			break
		}
	}
	if len(r.players) == 0 {
		r.closed = true
		res.Empty = true
	}
	if res.PlayerGone != 0 {
		log.Info().Str("module", "core.room").Str("room", string(r.id)).Int("p_index", res.PlayerGone).Bool("empty", res.Empty).Msg("player left")
	}
	return res
}

// Snapshot returns the full state for broadcasting.
func (r *Room) Snapshot() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Summary is the lobby-listing view. The display name uses the sequence
// number assigned at creation, so it stays stable as other rooms come and go.
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := StatusWaiting
	if len(r.players) >= 2 {
		status = StatusPlaying
	}
	return RoomSummary{
		ID:     r.id,
		Name:   fmt.Sprintf("Room #%d", r.seq),
		Count:  len(r.players),
		Status: status,
	}
}

func (r *Room) seqNum() int { return r.seq }

func (r *Room) totalScoreLocked() int {
	total := 0
	for _, p := range r.players {
		total += p.score
	}
	return total
}

func (r *Room) snapshotLocked() RoomState {
	players := make([]PlayerState, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerState{
			ID:       p.user.ID,
			Username: p.user.Username,
			PIndex:   p.pIndex,
			Score:    p.score,
		})
	}
	spectators := make([]SpectatorState, 0, len(r.spectators))
	for _, s := range r.spectators {
		spectators = append(spectators, SpectatorState{ID: s.user.ID, Username: s.user.Username})
	}
	return RoomState{
		ID:         r.id,
		Host:       r.host,
		Players:    players,
		Spectators: spectators,
		HLines:     copyGrid(r.board.H),
		VLines:     copyGrid(r.board.V),
		Boxes:      copyGrid(r.board.Boxes),
		Turn:       r.turn,
		GameOver:   r.gameOver,
		Config:     r.cfg,
	}
}
