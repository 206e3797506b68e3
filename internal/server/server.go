package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"trump304/internal/game304"
	"trump304/internal/session"
	"trump304/internal/timer"
)

// Server is the HTTP server.
type Server struct {
	mux         *http.ServeMux
	manager     *session.Manager
	sched       timer.Scheduler
	turnTimeout time.Duration
}

// New creates a server with all routes. sched may be nil to disable turn
// deadlines (tests mostly run without them).
func New(manager *session.Manager, sched timer.Scheduler, turnTimeout time.Duration) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		manager:     manager,
		sched:       sched,
		turnTimeout: turnTimeout,
	}
	if g, ok := sched.(*timer.Gocron); ok && g != nil {
		g.SetHandler(s.onTurnTimeout)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/games/{code}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{code}/join", s.handleJoinGame)
	s.mux.HandleFunc("POST /api/games/{code}/adjudicate", s.handleAdjudicate)
	s.mux.HandleFunc("GET /api/games/{code}/ws", s.handleWebSocket)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type createGameRequest struct {
	Mode       int    `json:"mode"`
	PlayerName string `json:"player_name"`
}

type joinGameRequest struct {
	PlayerName string `json:"player_name"`
}

type seatResponse struct {
	GameCode string `json:"game_code"`
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "player_name required")
		return
	}

	sess, err := s.manager.Create(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := sess.Join(req.PlayerName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.manager.SaveState(sess); err != nil {
		log.Printf("save state: %v", err)
	}

	writeJSON(w, http.StatusCreated, seatResponse{
		GameCode: sess.Code,
		PlayerID: p.ID,
		Seat:     p.Seat,
	})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	sess, ok := s.manager.Get(code)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "player_name required")
		return
	}

	p, err := sess.Join(req.PlayerName)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.manager.SaveState(sess); err != nil {
		log.Printf("save state: %v", err)
	}

	s.broadcastState(sess)
	writeJSON(w, http.StatusOK, seatResponse{
		GameCode: sess.Code,
		PlayerID: p.ID,
		Seat:     p.Seat,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	sess, ok := s.manager.Get(code)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.List())
}

// armTurnTimer re-arms the deadline for the seat now on turn. Any previously
// armed deadline is cancelled first.
func (s *Server) armTurnTimer(sess *session.Session) {
	if s.sched == nil {
		return
	}
	if prev, had := sess.ClearTimer(); had {
		s.sched.Cancel(prev)
	}
	seat, seq, ok := sess.TurnInfo()
	if !ok || seat < 0 {
		return
	}
	token, err := s.sched.Arm(sess.Code, seat, seq, s.turnTimeout)
	if err != nil {
		log.Printf("arm turn timer for %s: %v", sess.Code, err)
		return
	}
	if prev, had := sess.SetTimer(token); had {
		s.sched.Cancel(prev)
	}
}

// onTurnTimeout is the scheduler callback. The seq check inside the game
// drops deadlines that an action already made obsolete.
func (s *Server) onTurnTimeout(code string, seat, seq int) {
	sess, ok := s.manager.Get(code)
	if !ok {
		return
	}
	res, err := sess.Timeout(seat, seq)
	if err != nil {
		return
	}
	if err := s.manager.SaveState(sess); err != nil {
		log.Printf("save state: %v", err)
	}
	s.broadcastEvent(sess, "turn_timeout", res)
	s.broadcastState(sess)
	s.armTurnTimer(sess)
}

type adjudicateRequest struct {
	OffenderSeat int `json:"offender_seat"`
}

// handleAdjudicate forfeits the hand after an out-of-band ruling against a
// seat and notifies the table. The original rule is table adjudication, so
// this stays a plain endpoint rather than a player action.
func (s *Server) handleAdjudicate(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	sess, ok := s.manager.Get(code)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	var req adjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := func() (*game304.Result, error) {
		sess.Lock()
		defer sess.Unlock()
		return sess.Game.AdjudicateIllegalPlay(req.OffenderSeat)
	}()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.manager.SaveState(sess); err != nil {
		log.Printf("save state: %v", err)
	}
	s.broadcastEvent(sess, "hand_forfeited", res)
	s.broadcastState(sess)
	s.armTurnTimer(sess)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
