// Package server exposes the HTTP API and the per-game WebSocket
// transport around game.PowerGame.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/votecraft/powerplays/engine"
	"github.com/votecraft/powerplays/internal/auth"
	"github.com/votecraft/powerplays/internal/cache"
	"github.com/votecraft/powerplays/internal/config"
	"github.com/votecraft/powerplays/internal/database"
	"github.com/votecraft/powerplays/internal/game"
	"github.com/votecraft/powerplays/internal/models"
)

// Server holds the live game sessions and the in-memory guest accounts.
type Server struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*gameSession
	users    map[uuid.UUID]*models.User
}

// NewServer creates an empty server.
func NewServer() *Server {
	return &Server{
		sessions: make(map[uuid.UUID]*gameSession),
		users:    make(map[uuid.UUID]*models.User),
	}
}

// Routes builds the HTTP mux for the service.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/guest", s.handleGuest)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{id}", s.handleGameState)
	mux.HandleFunc("GET /api/games/{id}/history", s.handleGameHistory)
	mux.HandleFunc("GET /api/games/{id}/ws", s.handleGameWS)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// bearerToken extracts the session token from the Authorization header
// or, for WebSocket upgrades where headers are awkward, the token query
// parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// authedUser resolves the request's token to a user ID, or writes a 401.
func (s *Server) authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return uuid.Nil, false
	}
	uid, err := auth.AuthenticateJWT(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return uuid.Nil, false
	}
	return uid, true
}

// lookupUser returns the stored account for an ID, or a minimal
// placeholder for tokens minted elsewhere.
func (s *Server) lookupUser(id uuid.UUID) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u
	}
	u := &models.User{ID: id, Username: "player-" + id.String()[:8], IsEphemeral: true}
	s.users[id] = u
	return u
}

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "registration requires a database")
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if creds.Email == "" || creds.Username == "" || len(creds.Password) < 8 {
		writeError(w, http.StatusBadRequest, "email, username and a password of 8+ characters are required")
		return
	}
	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not process password")
		return
	}
	u := &models.User{
		ID:           uuid.New(),
		Email:        creds.Email,
		Username:     creds.Username,
		PasswordHash: hash,
		Elo:          1500,
	}
	if err := database.CreateUser(r.Context(), u); err != nil {
		logrus.Warnf("Register %s: %v", creds.Email, err)
		writeError(w, http.StatusConflict, "account already exists")
		return
	}
	token, err := auth.CreateToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "login requires a database")
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	u, err := database.GetUserByEmail(r.Context(), creds.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	ok, err := auth.VerifyPassword(creds.Password, u.PasswordHash)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.CreateToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

// handleGuest creates an ephemeral account. Guests can play but their
// history evaporates with the process.
func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	u := &models.User{ID: uuid.New(), IsEphemeral: true, Elo: 1500}
	u.Username = body.Username
	if u.Username == "" {
		u.Username = "guest-" + u.ID.String()[:8]
	}
	token, err := auth.CreateToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

type createGameRequest struct {
	TotalSeats          int    `json:"totalSeats"`
	HumanSeats          int    `json:"humanSeats"`
	TurnTimerSec        *int   `json:"turnTimerSec"`
	AIThinkDelayMs      *int   `json:"aiThinkDelayMs"`
	Difficulty          string `json:"difficulty"`
	ForfeitOnDisconnect *bool  `json:"forfeitOnDisconnect"`
}

func parseDifficulty(s string) engine.Difficulty {
	switch s {
	case "easy":
		return engine.DifficultyEasy
	case "hard":
		return engine.DifficultyHard
	default:
		return engine.DifficultyMedium
	}
}

// handleCreateGame sets up a game session. Play begins once HumanSeats
// players have joined the WebSocket; the remaining seats are AI.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.TotalSeats == 0 {
		req.TotalSeats = 4
	}
	if req.HumanSeats == 0 {
		req.HumanSeats = 1
	}
	if req.TotalSeats < 2 || req.TotalSeats > engine.MaxPlayers {
		writeError(w, http.StatusBadRequest, "totalSeats must be between 2 and 8")
		return
	}
	if req.HumanSeats < 1 || req.HumanSeats > req.TotalSeats {
		writeError(w, http.StatusBadRequest, "humanSeats must be between 1 and totalSeats")
		return
	}

	g := game.NewPowerGame()
	g.HouseRules.TurnTimerSec = config.TurnTimerSec()
	g.HouseRules.Difficulty = parseDifficulty(req.Difficulty)
	if req.TurnTimerSec != nil {
		g.HouseRules.TurnTimerSec = *req.TurnTimerSec
	}
	if req.AIThinkDelayMs != nil {
		g.HouseRules.AIThinkDelayMs = *req.AIThinkDelayMs
	}
	if req.ForfeitOnDisconnect != nil {
		g.HouseRules.ForfeitOnDisconnect = *req.ForfeitOnDisconnect
	}

	sess := newGameSession(g, req.HumanSeats, req.TotalSeats)
	g.OnGameEnd = func(lobbyID, winner uuid.UUID, standings map[uuid.UUID]int) {
		// Keep the finished session around briefly so clients can read
		// the final state, then reap it.
		time.AfterFunc(5*time.Minute, func() {
			s.mu.Lock()
			delete(s.sessions, g.ID)
			s.mu.Unlock()
		})
	}

	s.mu.Lock()
	s.sessions[g.ID] = sess
	s.mu.Unlock()
	logrus.Infof("Game %s created by %s (%d seats, %d human)", g.ID, uid, req.TotalSeats, req.HumanSeats)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"gameId":     g.ID,
		"totalSeats": req.TotalSeats,
		"humanSeats": req.HumanSeats,
		"houseRules": g.HouseRules,
	})
}

func (s *Server) session(id uuid.UUID) *gameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// handleGameState returns the game state obfuscated for the requester.
func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.authedUser(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed game id")
		return
	}
	sess := s.session(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	sess.g.Mu.Lock()
	var state *game.ObfGameState
	if sess.g.Engine != nil {
		st := sess.g.ObfuscatedStateFor(uid)
		state = &st
	}
	sess.g.Mu.Unlock()
	if state == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"gameId": id, "started": false})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleGameHistory returns the game's ordered action log from the
// historian queue.
func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authedUser(w, r); !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed game id")
		return
	}
	if cache.Rdb == nil {
		writeError(w, http.StatusServiceUnavailable, "action history requires redis")
		return
	}
	records, err := cache.FetchGameActions(r.Context(), id)
	if err != nil {
		logrus.Errorf("Game %s: fetch history: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"gameId": id, "actions": records})
}
