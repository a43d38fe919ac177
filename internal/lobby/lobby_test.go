package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/csplay/lobby/internal/room"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got: %+v", within, s)
	case <-time.After(within):
		// good: no snapshot
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func recvCreate(t *testing.T, ch <-chan CreateReply, within time.Duration) CreateReply {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(within):
		t.Fatalf("timed out waiting for create reply")
		return CreateReply{} // unreachable
	}
}

func validParams() room.CreateParams {
	return room.CreateParams{Name: "Sala", ServerIP: "10.0.0.1", ServerPort: 27015}
}

func TestLobby_Create_BroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx)

	// a client "connection": an outbox channel the lobby writes snapshots to
	clientOut := make(chan Snapshot, 2) // small buffer so broadcast doesn’t block
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}

	// on join, lobby should immediately send the current snapshot (version 0, no rooms)
	first := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if len(first.Rooms) != 0 {
		t.Fatalf("after join: expected no rooms yet, got %+v", first.Rooms)
	}

	reply := make(chan CreateReply, 1)
	l.Inbox() <- CreateRoom{Params: validParams(), Reply: reply}
	created := recvCreate(t, reply, 100*time.Millisecond)
	if created.Err != nil {
		t.Fatalf("create: unexpected err: %v", created.Err)
	}
	if created.Room.ID != 1 {
		t.Fatalf("create: want id=1, got %d", created.Room.ID)
	}

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after create: want version=1, got %d", next.Version)
	}
	if len(next.Rooms) != 1 || next.Rooms[0].Slots[0] {
		t.Fatalf("after create: expected one room with slot 1 occupied, got %+v", next.Rooms)
	}

	l.Inbox() <- Shutdown{}
}

func TestLobby_Create_InvalidParamsAppendsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx)

	reply := make(chan CreateReply, 1)
	l.Inbox() <- CreateRoom{Params: room.CreateParams{Name: "Sala", ServerIP: "10.0.0.1", ServerPort: 70000}, Reply: reply}
	created := recvCreate(t, reply, 100*time.Millisecond)
	if created.Err == nil {
		t.Fatalf("expected validation error")
	}

	view := make(chan View, 1)
	l.Inbox() <- GetState{Reply: view}
	v := recvView(t, view, 100*time.Millisecond)
	if v.Version != 0 || len(v.Rooms) != 0 {
		t.Fatalf("rejected create must not mutate: %+v", v)
	}
}

func TestLobby_IDsStrictlyIncrease(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx)

	reply := make(chan CreateReply, 1)
	for want := 1; want <= 3; want++ {
		l.Inbox() <- CreateRoom{Params: validParams(), Reply: reply}
		created := recvCreate(t, reply, 100*time.Millisecond)
		if created.Err != nil {
			t.Fatalf("create %d: %v", want, created.Err)
		}
		if created.Room.ID != want {
			t.Fatalf("want id=%d, got %d", want, created.Room.ID)
		}
	}
}

func TestLobby_VacateSlot_FreesAndBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx)

	reply := make(chan CreateReply, 1)
	l.Inbox() <- CreateRoom{Params: validParams(), Reply: reply}
	created := recvCreate(t, reply, 100*time.Millisecond)
	if created.Err != nil {
		t.Fatalf("create: %v", created.Err)
	}

	clientOut := make(chan Snapshot, 2)
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}
	_ = recvSnapshot(t, clientOut, 100*time.Millisecond) // drain join snapshot

	ok := make(chan bool, 1)
	l.Inbox() <- VacateSlot{RoomID: created.Room.ID, Slot: 1, Reply: ok}
	if !<-ok {
		t.Fatalf("vacate on existing room should succeed")
	}

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if !next.Rooms[0].Slots[0] {
		t.Fatalf("slot 1 should be free after vacate")
	}

	l.Inbox() <- VacateSlot{RoomID: 999, Reply: ok}
	if <-ok {
		t.Fatalf("vacate on unknown room should report false")
	}
}

func TestLobby_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx)

	clientOut := make(chan Snapshot, 1)
	l.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}
	// Outbox now holds the join snapshot; the next broadcast can't fit.

	reply := make(chan CreateReply, 1)
	l.Inbox() <- CreateRoom{Params: validParams(), Reply: reply}
	_ = recvCreate(t, reply, 100*time.Millisecond)

	view := make(chan View, 1)
	l.Inbox() <- GetState{Reply: view}
	v := recvView(t, view, 100*time.Millisecond)

	if v.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", v.NumClients)
	}
}

func TestLobby_SnapshotsDoNotAliasState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLobby(ctx)

	reply := make(chan CreateReply, 1)
	l.Inbox() <- CreateRoom{Params: validParams(), Reply: reply}
	_ = recvCreate(t, reply, 100*time.Millisecond)

	rooms := l.Rooms()
	rooms[0].Slots[5] = false // mutate the copy

	again := l.Rooms()
	if !again[0].Slots[5] {
		t.Fatalf("mutating a returned snapshot must not touch lobby state")
	}
}
