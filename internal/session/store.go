package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/csplay/lobby/internal/room"
)

// Status is the session lifecycle: checking until the first /auth/me
// probe resolves, then authenticated or anonymous. It re-enters checking
// only on an explicit token change.
type Status string

const (
	StatusChecking      Status = "checking"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DisplayName prefers the profile name and falls back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// persisted is the single durable entry: the canonical {token,user} shape.
type persisted struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Store is the only code that touches the session file. init (NewStore)
// reads it once; Login and Logout are the only mutators of the token.
// Room membership (RoomID/Slot) lives here too so logout can clear it in
// the same step, but it is never persisted: rooms die with the process.
type Store struct {
	mu     sync.RWMutex
	path   string
	log    *zap.Logger
	status Status
	token  string
	user   *User
	roomID int
	slot   int
}

func NewStore(path string, log *zap.Logger) *Store {
	s := &Store{path: path, log: log, status: StatusChecking}
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("session file unreadable", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		log.Warn("session file corrupt, starting fresh", zap.String("path", path), zap.Error(err))
		return s
	}
	s.token = p.Token
	s.user = p.User
	return s
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Viewer exposes room membership in the shape the projector consumes.
func (s *Store) Viewer() room.Viewer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return room.Viewer{RoomID: s.roomID, Slot: s.slot}
}

// Login replaces the token and user and persists them. The session is
// authenticated from here on; callers may still Resolve a fresher profile
// from a follow-up probe.
func (s *Store) Login(token string, u User) {
	s.mu.Lock()
	s.token = token
	s.user = &u
	s.status = StatusAuthenticated
	s.mu.Unlock()
	s.save()
}

// Resolve records the outcome of a silent session probe. A nil profile
// means no session (401/403 or network failure): the store becomes
// anonymous without error, keeping the stale token for the UI to retry a
// login with fresh credentials.
func (s *Store) Resolve(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		s.status = StatusAnonymous
		return
	}
	s.user = u
	s.status = StatusAuthenticated
}

// Logout clears token, user and room membership in one step, so a stale
// "Vos" can never outlive the session. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	already := s.token == "" && s.user == nil && s.roomID == 0
	s.token = ""
	s.user = nil
	s.roomID = 0
	s.slot = 0
	s.status = StatusAnonymous
	s.mu.Unlock()
	if already {
		return
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("could not remove session file", zap.String("path", s.path), zap.Error(err))
	}
}

// EnterRoom sets both membership fields together; they are defined iff
// both are defined. A user occupies at most one room at a time.
func (s *Store) EnterRoom(roomID, slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.slot = slot
}

// LeaveRoom clears membership if it matches roomID and reports the slot
// that was freed (0 when there was nothing to leave).
func (s *Store) LeaveRoom(roomID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomID != roomID || s.roomID == 0 {
		return 0
	}
	slot := s.slot
	s.roomID = 0
	s.slot = 0
	return slot
}

func (s *Store) save() {
	// Marshal under RLock, then write the file without holding the lock.
	s.mu.RLock()
	b, _ := json.MarshalIndent(persisted{Token: s.token, User: s.user}, "", "  ")
	path := s.path
	s.mu.RUnlock()
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		s.log.Warn("could not persist session", zap.String("path", path), zap.Error(err))
	}
}
