package types

import "github.com/csplay/lobby/internal/room"

type ClientMessage struct {
	Type string `json:"type"`
}

type ServerMessage struct {
	Type    string          `json:"type"` // "RoomsSnapshot" | "Error"
	Version int             `json:"version,omitempty"`
	Rooms   []room.CardView `json:"rooms,omitempty"`
	Error   string          `json:"error,omitempty"`
}
