package authsvc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service implements the auth contract the lobby consumes:
// POST /users (register), POST /users/login, GET /auth/me.
type Service struct {
	Users  UserStore
	Tokens *TokenIssuer
	Log    *zap.Logger
}

func (s *Service) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/users", s.HandleRegister)
	r.Post("/users/login", s.HandleLogin)
	r.Get("/auth/me", s.HandleMe)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Service) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		s.writeError(w, http.StatusBadRequest, "email inválido")
		return
	}
	if len(req.Password) < 6 {
		s.writeError(w, http.StatusBadRequest, "la contraseña debe tener al menos 6 caracteres")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
	}
	if err := s.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.writeError(w, http.StatusConflict, "el email ya está registrado")
			return
		}
		s.Log.Error("create user failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusCreated, struct {
		User Profile `json:"user"`
	}{User: u.Profile()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := s.Users.ByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.Log.Error("login lookup failed", zap.Error(err))
		}
		s.writeError(w, http.StatusUnauthorized, "credenciales inválidas")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.writeError(w, http.StatusUnauthorized, "credenciales inválidas")
		return
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		s.Log.Error("token issue failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: u.Profile()})
}

func (s *Service) HandleMe(w http.ResponseWriter, r *http.Request) {
	var tok string
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tok = strings.TrimPrefix(h, "Bearer ")
	}
	userID, err := s.Tokens.Parse(tok)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := s.Users.ByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.Log.Error("me lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Wrapped shape; the lobby's client accepts bare profiles too.
	s.writeJSON(w, http.StatusOK, struct {
		User Profile `json:"user"`
	}{User: u.Profile()})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, struct {
		Message string `json:"message"`
	}{Message: msg})
}
