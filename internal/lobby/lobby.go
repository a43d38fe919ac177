package lobby

import (
	"context"

	"github.com/csplay/lobby/internal/room"
)

type Msg interface{ isLobbyMsg() }

// CreateRoom validates and appends a room. The reply carries either the
// built room or the validation error; nothing is appended on failure.
type CreateRoom struct {
	Params room.CreateParams
	Reply  chan CreateReply
}

func (CreateRoom) isLobbyMsg() {}

type CreateReply struct {
	Room room.Room
	Err  error
}

// VacateSlot frees one slot in a room (the viewer disconnecting). Reply
// reports whether the room existed.
type VacateSlot struct {
	RoomID int
	Slot   int
	Reply  chan bool
}

func (VacateSlot) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type Snapshot struct {
	Version int
	Rooms   []room.Room
}

type View struct {
	Version    int
	NumClients int
	Rooms      []room.Room
}

// Lobby is the single owner of the room list. All reads and writes go
// through the inbox, so no locking is needed anywhere else.
type Lobby struct {
	inbox   chan Msg
	rooms   []room.Room
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewLobby(parent context.Context) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:   make(chan Msg, 64), // Small buffer
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.snapshot()

			case Leave:
				delete(l.clients, msg.ClientID)

			case CreateRoom:
				r, err := room.New(room.NextID(l.rooms), msg.Params)
				if err != nil {
					msg.Reply <- CreateReply{Err: err}
					break
				}
				l.rooms = append(l.rooms, r)
				l.version++
				msg.Reply <- CreateReply{Room: r}
				l.broadcast(l.snapshot())

			case VacateSlot:
				i := l.indexOf(msg.RoomID)
				if i < 0 {
					msg.Reply <- false
					break
				}
				l.rooms[i].Vacate(msg.Slot)
				l.version++
				msg.Reply <- true
				l.broadcast(l.snapshot())

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Rooms:      copyRooms(l.rooms),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) indexOf(roomID int) int {
	for i, r := range l.rooms {
		if r.ID == roomID {
			return i
		}
	}
	return -1
}

// snapshot copies the room slice so receivers never alias the owned state.
func (l *Lobby) snapshot() Snapshot {
	return Snapshot{Version: l.version, Rooms: copyRooms(l.rooms)}
}

func copyRooms(rooms []room.Room) []room.Room {
	out := make([]room.Room, len(rooms))
	copy(out, rooms)
	return out
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or the WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Rooms is a request-reply convenience around GetState.
func (l *Lobby) Rooms() []room.Room {
	reply := make(chan View, 1)
	l.inbox <- GetState{Reply: reply}
	return (<-reply).Rooms
}
