package app

import (
	"testing"

	"github.com/lbekker/Boxes/internal/core"
	"github.com/lbekker/Boxes/internal/domain"
	"github.com/lbekker/Boxes/internal/game"
)

// fakeConn records frames instead of writing to a socket.
type fakeConn struct {
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func testOrchestrator() *Orchestrator {
	return &Orchestrator{
		Binder: NewBinder(),
		Rooms:  core.NewRegistry(),
		Board:  domain.DefaultBoardConfig(),
	}
}

func connect(o *Orchestrator, sid core.SessionID) *fakeConn {
	conn := &fakeConn{}
	o.Connect(sid, conn)
	return conn
}

func TestCreateAndJoinFlow(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	connect(o, "b")

	state, err := o.CreateLobby("a", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if state.Host != "alice" || len(state.Players) != 1 || state.Players[0].PIndex != 1 {
		t.Fatalf("created state = %+v", state)
	}
	if got := len(o.RoomList()); got != 1 {
		t.Fatalf("room list has %d entries, want 1", got)
	}

	res, err := o.JoinLobby("b", state.ID, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if res.Role != core.RolePlayer || res.PIndex != 2 {
		t.Fatalf("join result = %+v", res)
	}
	if list := o.RoomList(); list[0].Status != core.StatusPlaying {
		t.Fatalf("status = %q, want Playing", list[0].Status)
	}

	// Both sessions are now bound to the room for fan-out.
	if conns := o.Binder.ConnsOfRoom(state.ID); len(conns) != 2 {
		t.Fatalf("room has %d bound conns, want 2", len(conns))
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	if _, err := o.JoinLobby("a", "NOPE", "alice"); err != ErrRoomNotFound {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestCreateWhileInRoom(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	if _, err := o.CreateLobby("a", "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := o.CreateLobby("a", "alice"); err != ErrAlreadyInRoom {
		t.Fatalf("second create: err = %v, want ErrAlreadyInRoom", err)
	}
}

func TestGuestIdentityWhenUnnamed(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	state, err := o.CreateLobby("a", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if state.Host != domain.GuestName {
		t.Fatalf("host = %q, want %q", state.Host, domain.GuestName)
	}
}

func TestMoveRoutedToAddressedRoomOnly(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	connect(o, "b")
	connect(o, "c")

	x, err := o.CreateLobby("a", "alice")
	if err != nil {
		t.Fatalf("create x: %v", err)
	}
	y, err := o.CreateLobby("c", "carol")
	if err != nil {
		t.Fatalf("create y: %v", err)
	}
	if _, err := o.JoinLobby("b", x.ID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	res := o.MakeMove("a", x.ID, core.Move{Kind: game.EdgeH, R: 0, C: 0})
	if res.Status != core.MovePlain {
		t.Fatalf("move status = %v, want plain", res.Status)
	}

	yRoom, _ := o.Rooms.Get(y.ID)
	if snap := yRoom.Snapshot(); snap.HLines[0][0] != 0 {
		t.Fatal("move against room X mutated room Y")
	}

	if got := o.MakeMove("a", "NOPE", core.Move{Kind: game.EdgeH, R: 0, C: 1}); got.Reason != core.RejectRoomNotFound {
		t.Fatalf("reason = %s, want room_not_found", got.Reason)
	}
}

func TestDisconnectDeletesEmptyRoom(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")

	state, err := o.CreateLobby("a", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res := o.Disconnect("a")
	if !res.InRoom || res.PlayerGone != 1 || !res.RoomDeleted {
		t.Fatalf("disconnect result = %+v", res)
	}
	if _, ok := o.Rooms.Get(state.ID); ok {
		t.Fatal("room survived its last player")
	}
	if got := len(o.RoomList()); got != 0 {
		t.Fatalf("room list has %d entries, want 0", got)
	}
}

func TestRoomSurvivesOnePlayerLeaving(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	connect(o, "b")

	state, _ := o.CreateLobby("a", "alice")
	if _, err := o.JoinLobby("b", state.ID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	res := o.Disconnect("a")
	if res.PlayerGone != 1 || res.RoomDeleted {
		t.Fatalf("disconnect result = %+v", res)
	}
	if list := o.RoomList(); list[0].Status != core.StatusWaiting || list[0].Count != 1 {
		t.Fatalf("summary = %+v, want Waiting/1", list[0])
	}
}

func TestSpectatorsDoNotKeepRoomAlive(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	connect(o, "b")
	connect(o, "c")

	state, _ := o.CreateLobby("a", "alice")
	if _, err := o.JoinLobby("b", state.ID, "bob"); err != nil {
		t.Fatalf("join b: %v", err)
	}
	res, err := o.JoinLobby("c", state.ID, "carol")
	if err != nil || res.Role != core.RoleSpectator {
		t.Fatalf("join c: res=%+v err=%v", res, err)
	}

	o.Disconnect("a")
	dis := o.Disconnect("b")
	if !dis.RoomDeleted {
		t.Fatal("room kept alive by a spectator")
	}

	// The orphaned spectator disconnecting later must be harmless.
	if got := o.Disconnect("c"); got.RoomDeleted {
		t.Fatalf("spectator disconnect reported deletion: %+v", got)
	}
}

func TestSpectatorReleasedWhenRoomDies(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	connect(o, "b")
	cConn := connect(o, "c")
	connect(o, "d")

	state, _ := o.CreateLobby("a", "alice")
	if _, err := o.JoinLobby("b", state.ID, "bob"); err != nil {
		t.Fatalf("join b: %v", err)
	}
	if _, err := o.JoinLobby("c", state.ID, "carol"); err != nil {
		t.Fatalf("join c: %v", err)
	}

	o.Disconnect("a")
	res := o.Disconnect("b")
	if !res.RoomDeleted {
		t.Fatal("room survived both players leaving")
	}
	if len(res.Orphaned) != 1 || res.Orphaned[0] != cConn {
		t.Fatalf("orphaned conns = %v, want carol's", res.Orphaned)
	}
	if _, ok := o.Binder.RoomOf("c"); ok {
		t.Fatal("spectator still bound to the dead room")
	}

	// The released spectator is free to take a seat in the next game.
	fresh, err := o.CreateLobby("d", "dave")
	if err != nil {
		t.Fatalf("create fresh room: %v", err)
	}
	join, err := o.JoinLobby("c", fresh.ID, "carol")
	if err != nil {
		t.Fatalf("spectator of a dead room refused a new room: %v", err)
	}
	if join.Role != core.RolePlayer || join.PIndex != 2 {
		t.Fatalf("join result = %+v", join)
	}
}

func TestDisconnectOutsideRoom(t *testing.T) {
	o := testOrchestrator()
	connect(o, "a")
	if res := o.Disconnect("a"); res.InRoom {
		t.Fatalf("lobby-only disconnect reported a room: %+v", res)
	}
	if _, ok := o.Binder.User("a"); ok {
		t.Fatal("session still bound after disconnect")
	}
}
