package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/csplay/lobby/internal/authclient"
	"github.com/csplay/lobby/internal/lobby"
	"github.com/csplay/lobby/internal/room"
	"github.com/csplay/lobby/internal/session"
)

// API bundles the handlers' collaborators: the room-list actor, the
// session store, and the external auth client.
type API struct {
	Lobby   *lobby.Lobby
	Session *session.Store
	Auth    *authclient.Client
	Log     *zap.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	lr, err := a.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var aerr *authclient.AuthError
		switch {
		case errors.As(err, &aerr):
			writeError(w, http.StatusUnauthorized, aerr.Message)
		case errors.Is(err, authclient.ErrNotConfigured):
			a.Log.Error("login attempted without auth base URL")
			writeError(w, http.StatusInternalServerError, "auth service not configured")
		default:
			a.Log.Warn("auth service unreachable", zap.Error(err))
			writeError(w, http.StatusBadGateway, "auth service unreachable")
		}
		return
	}

	a.Session.Login(lr.Token, lr.User)

	// Re-probe with the fresh token; the probe profile wins when present,
	// the login payload's user stands otherwise.
	if profile, err := a.Auth.Me(r.Context(), lr.Token); err == nil && profile != nil {
		a.Session.Resolve(profile)
	}

	writeJSON(w, http.StatusOK, lr)
}

func (a *API) HandleLogout(w http.ResponseWriter, r *http.Request) {
	a.Session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleSession(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status session.Status `json:"status"`
		User   *session.User  `json:"user,omitempty"`
	}{
		Status: a.Session.Status(),
		User:   a.Session.User(),
	}
	writeJSON(w, http.StatusOK, resp)
}

type roomsResponse struct {
	Version int             `json:"version"`
	Rooms   []room.CardView `json:"rooms"`
}

func (a *API) HandleListRooms(w http.ResponseWriter, r *http.Request) {
	reply := make(chan lobby.View, 1)
	a.Lobby.Inbox() <- lobby.GetState{Reply: reply}
	view := <-reply

	writeJSON(w, http.StatusOK, roomsResponse{
		Version: view.Version,
		Rooms:   room.ProjectAll(view.Rooms, a.Session.Viewer()),
	})
}

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ServerIP    string `json:"server_ip"`
	ServerPort  int    `json:"server_port"`
}

func (a *API) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if a.Session.Status() != session.StatusAuthenticated {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	reply := make(chan lobby.CreateReply, 1)
	a.Lobby.Inbox() <- lobby.CreateRoom{
		Params: room.CreateParams{
			Name:        req.Name,
			Description: req.Description,
			ServerIP:    req.ServerIP,
			ServerPort:  req.ServerPort,
		},
		Reply: reply,
	}
	created := <-reply
	if created.Err != nil {
		var verr *room.ValidationError
		if errors.As(created.Err, &verr) {
			writeJSON(w, http.StatusBadRequest, struct {
				Message string            `json:"message"`
				Fields  []room.FieldError `json:"fields"`
			}{Message: "invalid room", Fields: verr.Fields})
			return
		}
		a.Log.Error("create room failed", zap.Error(created.Err))
		writeError(w, http.StatusInternalServerError, "could not create room")
		return
	}

	// The creator occupies slot 1 of the new room.
	a.Session.EnterRoom(created.Room.ID, 1)

	writeJSON(w, http.StatusCreated, room.Project(created.Room, a.Session.Viewer()))
}

func (a *API) HandleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	slot := a.Session.LeaveRoom(id)
	if slot == 0 {
		writeError(w, http.StatusConflict, "not a member of this room")
		return
	}

	ok := make(chan bool, 1)
	a.Lobby.Inbox() <- lobby.VacateSlot{RoomID: id, Slot: slot, Reply: ok}
	if !<-ok {
		// Membership pointed at a room the lobby no longer has; the
		// membership is cleared either way.
		a.Log.Warn("left a room the lobby does not know", zap.Int("room_id", id))
	}
	w.WriteHeader(http.StatusNoContent)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Message string `json:"message"`
	}{Message: msg})
}
