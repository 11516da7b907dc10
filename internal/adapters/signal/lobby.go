package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/lbekker/Boxes/internal/core"
	"github.com/lbekker/Boxes/internal/domain"
)

func roomListEvent(rooms []core.RoomSummary) any {
	return struct {
		Type  string             `json:"type"`
		Rooms []core.RoomSummary `json:"rooms"`
	}{"room_list", rooms}
}

func (ctl *Controller) handleRoomList(c *wsConn) {
	ctl.sendJSON(c, roomListEvent(ctl.Orch.RoomList()))
}

func (ctl *Controller) handleCreateLobby(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create_lobby payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	state, err := ctl.Orch.CreateLobby(sid, p.Username)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	resp := struct {
		Type  string         `json:"type"`
		Room  domain.RoomID  `json:"room"`
		State core.RoomState `json:"state"`
	}{"lobby_created", state.ID, state}
	ctl.sendJSON(c, resp)

	ctl.broadcastAll(roomListEvent(ctl.Orch.RoomList()))
}

func (ctl *Controller) handleJoinLobby(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_lobby payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	roomID := domain.RoomID(p.Room)
	res, err := ctl.Orch.JoinLobby(sid, roomID, p.Username)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	if res.Role == core.RoleSpectator {
		resp := struct {
			Type  string         `json:"type"`
			State core.RoomState `json:"state"`
		}{"joined_spectator", res.State}
		ctl.sendJSON(c, resp)
		return
	}

	// A second player starts (or restarts) the game for the whole room,
	// and the lobby listing flips to Playing.
	resp := struct {
		Type  string         `json:"type"`
		State core.RoomState `json:"state"`
	}{"game_start", res.State}
	ctl.broadcastRoom(roomID, resp)

	ctl.broadcastAll(roomListEvent(ctl.Orch.RoomList()))
}
