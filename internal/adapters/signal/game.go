package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/lbekker/Boxes/internal/core"
	"github.com/lbekker/Boxes/internal/domain"
)

func (ctl *Controller) handleMakeMove(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type string    `json:"type"`
		Room string    `json:"room"`
		Move core.Move `json:"move"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad make_move payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	roomID := domain.RoomID(p.Room)
	res := ctl.Orch.MakeMove(sid, roomID, p.Move)

	switch res.Status {
	case core.MoveRejected:
		resp := struct {
			Type   string            `json:"type"`
			Reason core.RejectReason `json:"reason"`
		}{"move_rejected", res.Reason}
		ctl.sendJSON(c, resp)
	case core.MovePlain, core.MoveScored:
		resp := struct {
			Type     string         `json:"type"`
			State    core.RoomState `json:"state"`
			LastMove core.Move      `json:"lastMove"`
			Scorer   int            `json:"scorer,omitempty"`
		}{"state_update", res.State, res.Move, res.Scorer}
		ctl.broadcastRoom(roomID, resp)
	case core.MoveGameOver:
		resp := struct {
			Type   string         `json:"type"`
			State  core.RoomState `json:"state"`
			Winner int            `json:"winner"`
		}{"game_over", res.State, res.Winner}
		ctl.broadcastRoom(roomID, resp)
	}
}

// handleDisconnect runs when the transport drops a connection. There is no
// explicit leave event; departure is only ever observed this way.
func (ctl *Controller) handleDisconnect(sid core.SessionID) {
	res := ctl.Orch.Disconnect(sid)
	if !res.InRoom || res.PlayerGone == 0 {
		return
	}

	resp := struct {
		Type   string `json:"type"`
		PIndex int    `json:"pIndex"`
	}{"player_left", res.PlayerGone}
	if res.RoomDeleted {
		// The dead room's bindings are already released, so broadcastRoom
		// would reach nobody; tell the stranded watchers directly.
		for _, conn := range res.Orphaned {
			ctl.sendJSON(conn, resp)
		}
	} else {
		ctl.broadcastRoom(res.RoomID, resp)
	}

	ctl.broadcastAll(roomListEvent(ctl.Orch.RoomList()))
}

func (ctl *Controller) handlePing(c *wsConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}
