package room

import (
	"fmt"
	"strings"
)

// NumSlots is fixed: every room has exactly ten player slots.
const NumSlots = 10

const DefaultActionText = "CONECTARSE AL SV"

type Room struct {
	ID          int
	Title       string
	Slots       [NumSlots]bool // true = free, false = occupied
	ConnectInfo string         // "ip:port", shown to members only
	ActionText  string
}

// Viewer identifies the local user's membership. Zero RoomID means the
// viewer is in no room; Slot (1..NumSlots) is meaningful only alongside
// RoomID — the two are always set and cleared together.
type Viewer struct {
	RoomID int
	Slot   int
}

func (v Viewer) InRoom(roomID int) bool {
	return v.RoomID != 0 && v.RoomID == roomID
}

type CreateParams struct {
	Name        string
	Description string
	ServerIP    string
	ServerPort  int
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid room: " + strings.Join(parts, "; ")
}

func (p CreateParams) validate() *ValidationError {
	var fields []FieldError
	if strings.TrimSpace(p.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "required"})
	}
	if strings.TrimSpace(p.ServerIP) == "" {
		fields = append(fields, FieldError{Field: "server_ip", Message: "required"})
	}
	if p.ServerPort < 1 || p.ServerPort > 65535 {
		fields = append(fields, FieldError{Field: "server_port", Message: "must be between 1 and 65535"})
	}
	if fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// New builds a room from form input. The creator always takes slot 1, so
// index 0 starts occupied and the rest free.
func New(id int, p CreateParams) (Room, error) {
	if verr := p.validate(); verr != nil {
		return Room{}, verr
	}

	name := strings.TrimSpace(p.Name)
	desc := strings.TrimSpace(p.Description)
	title := name
	if desc != "" {
		title = name + " - " + desc
	}

	r := Room{
		ID:          id,
		Title:       title,
		ConnectInfo: fmt.Sprintf("%s:%d", strings.TrimSpace(p.ServerIP), p.ServerPort),
		ActionText:  DefaultActionText,
	}
	for i := range r.Slots {
		r.Slots[i] = true
	}
	r.Slots[0] = false
	return r, nil
}

// NextID assigns ids strictly increasing across the list: max+1, 1 when
// the list is empty.
func NextID(rooms []Room) int {
	max := 0
	for _, r := range rooms {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

func (r Room) Full() bool {
	for _, free := range r.Slots {
		if free {
			return false
		}
	}
	return true
}

func (r Room) FreeSlots() int {
	n := 0
	for _, free := range r.Slots {
		if free {
			n++
		}
	}
	return n
}

// Vacate frees a slot (1-based). Out-of-range numbers are ignored.
func (r *Room) Vacate(slot int) {
	if slot >= 1 && slot <= NumSlots {
		r.Slots[slot-1] = true
	}
}
