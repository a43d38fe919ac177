package room

import "fmt"

// Display labels. The UI is Spanish-language; these strings are part of
// the rendering contract, not translatable copy.
const (
	labelSelf       = "Vos"
	labelDisconnect = "DESCONECTARSE"
	labelFull       = "SALA LLENA"
	labelFullLine   = "Sala Completa"
)

type SlotView struct {
	Number    int    `json:"number"` // 1..NumSlots
	Available bool   `json:"available"`
	Name      string `json:"name"` // empty when available
}

type Accent string

const (
	AccentMine Accent = "mine" // viewer is in this room
	AccentFull Accent = "full"
	AccentOpen Accent = "open"
)

// CardView is everything the UI needs to draw one room card. Derived,
// never stored.
type CardView struct {
	ID             int                `json:"id"`
	Title          string             `json:"title"`
	Slots          [NumSlots]SlotView `json:"slots"`
	Full           bool               `json:"full"`
	Mine           bool               `json:"mine"`
	Accent         Accent             `json:"accent"`
	ButtonVisible  bool               `json:"button_visible"`
	ButtonDisabled bool               `json:"button_disabled"`
	ButtonLabel    string             `json:"button_label,omitempty"`
	ConnectLine    string             `json:"connect_line,omitempty"`
}

// ProjectSlots derives the per-slot display records. A free slot has an
// empty name; the viewer's own slot reads "Vos"; any other occupied slot
// gets the numbered placeholder, since no real per-occupant identity is
// tracked.
func ProjectSlots(r Room, v Viewer) [NumSlots]SlotView {
	mine := v.InRoom(r.ID)
	var out [NumSlots]SlotView
	for i, free := range r.Slots {
		n := i + 1
		sv := SlotView{Number: n, Available: free}
		if !free {
			if mine && n == v.Slot {
				sv.Name = labelSelf
			} else {
				sv.Name = fmt.Sprintf("Jugador %d", n)
			}
		}
		out[i] = sv
	}
	return out
}

// Project derives the full card state. Accent priority is
// mine > full > open; the action button disappears (and is disabled)
// only when the room is full and the viewer is not in it.
func Project(r Room, v Viewer) CardView {
	full := r.Full()
	mine := v.InRoom(r.ID)

	cv := CardView{
		ID:    r.ID,
		Title: r.Title,
		Slots: ProjectSlots(r, v),
		Full:  full,
		Mine:  mine,
	}

	switch {
	case mine:
		cv.Accent = AccentMine
	case full:
		cv.Accent = AccentFull
	default:
		cv.Accent = AccentOpen
	}

	cv.ButtonVisible = !full || mine
	cv.ButtonDisabled = full && !mine
	switch {
	case mine:
		cv.ButtonLabel = labelDisconnect
	case full:
		cv.ButtonLabel = labelFull
	default:
		cv.ButtonLabel = r.ActionText
	}

	switch {
	case mine && r.ConnectInfo != "":
		cv.ConnectLine = r.ConnectInfo
	case full && !mine:
		cv.ConnectLine = labelFullLine
	}
	return cv
}

// ProjectAll projects every room in order for one viewer.
func ProjectAll(rooms []Room, v Viewer) []CardView {
	out := make([]CardView, len(rooms))
	for i, r := range rooms {
		out[i] = Project(r, v)
	}
	return out
}
