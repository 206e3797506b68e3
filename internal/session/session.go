package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"trump304/internal/game304"
)

// Status represents the session lifecycle.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Conn is one connected player.
type Conn struct {
	PlayerID string
	Seat     int
	Send     chan []byte // outbound messages
}

// Session is one game with its connected players. The game state is only
// touched while holding the session lock; Apply and Timeout take it
// themselves, and the server uses Lock/Unlock around direct reads.
type Session struct {
	mu        sync.Mutex
	Code      string
	Status    Status
	Game      *game304.Game
	CreatedAt time.Time

	conns map[string]*Conn
	rng   *rand.Rand

	// armed turn deadline, cancelled when the seat acts in time
	timerToken uuid.UUID
	timerArmed bool
}

// NewSession creates a session in the waiting state.
func NewSession(code string, mode int) (*Session, error) {
	g, err := game304.New(code, mode)
	if err != nil {
		return nil, err
	}
	return &Session{
		Code:      code,
		Status:    StatusWaiting,
		Game:      g,
		CreatedAt: time.Now(),
		conns:     make(map[string]*Conn),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Join seats a new player. Returns error if the game is full or underway.
func (s *Session) Join(name string) (*game304.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusWaiting {
		return nil, fmt.Errorf("game is not accepting players")
	}
	p, err := s.Game.AddPlayer(name)
	if err != nil {
		return nil, fmt.Errorf("join game: %w", err)
	}
	return p, nil
}

// Connect attaches (or replaces) the send channel for a seated player.
// Returns the player's seat and false if the player id is unknown.
func (s *Session) Connect(playerID string, send chan []byte) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.Game.PlayerByID(playerID)
	if p == nil {
		return 0, false
	}
	if old, ok := s.conns[playerID]; ok {
		close(old.Send)
	}
	s.conns[playerID] = &Conn{PlayerID: playerID, Seat: p.Seat, Send: send}
	return p.Seat, true
}

// Disconnect detaches a player's connection if send is still the active
// channel; a reconnect that already replaced it is left alone. The seat
// stays reserved so the player can come back.
func (s *Session) Disconnect(playerID string, send chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[playerID]
	if !ok || c.Send != send {
		return
	}
	close(c.Send)
	delete(s.conns, playerID)
}

// Conns returns a snapshot of the connected players.
func (s *Session) Conns() []*Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}

// Apply runs one action for a player against the game state.
func (s *Session) Apply(playerID string, action game304.Action) (*game304.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.Game.PlayerByID(playerID)
	if p == nil {
		return nil, fmt.Errorf("player not in game")
	}
	res, err := s.Game.Apply(p.Seat, action, s.rng)
	if err != nil {
		return nil, err
	}
	if s.Status == StatusWaiting && s.Game.Phase != game304.PhaseWaiting {
		s.Status = StatusPlaying
	}
	return res, nil
}

// ApplyAt runs one action only if the game is still at the given seq,
// rejecting redelivered messages that already took effect.
func (s *Session) ApplyAt(playerID string, seq int, action game304.Action) (*game304.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.Game.PlayerByID(playerID)
	if p == nil {
		return nil, fmt.Errorf("player not in game")
	}
	res, err := s.Game.ApplyAt(seq, p.Seat, action, s.rng)
	if err != nil {
		return nil, err
	}
	if s.Status == StatusWaiting && s.Game.Phase != game304.PhaseWaiting {
		s.Status = StatusPlaying
	}
	return res, nil
}

// Timeout runs the deadline fallback for a seat. Stale deadlines are
// rejected by the game with ErrStaleAction.
func (s *Session) Timeout(seat, seq int) (*game304.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Game.HandleTimeout(seat, seq, s.rng)
}

// View builds the redacted state snapshot for one seat.
func (s *Session) View(seat int) game304.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Game.View(seat)
}

// SetTimer records the armed deadline token, returning the previous token
// so the caller can cancel it.
func (s *Session) SetTimer(token uuid.UUID) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.timerToken, s.timerArmed
	s.timerToken = token
	s.timerArmed = true
	return prev, had
}

// ClearTimer forgets the armed deadline, returning the token to cancel.
func (s *Session) ClearTimer() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, had := s.timerToken, s.timerArmed
	s.timerArmed = false
	return token, had
}

// TurnInfo reports which seat a deadline should be armed for, or ok=false
// when the phase has no turn clock.
func (s *Session) TurnInfo() (seat, seq int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.Game.Phase {
	case game304.PhaseBidding:
		return s.Game.BidTurnSeat, s.Game.Seq, true
	case game304.PhasePlaying:
		return s.Game.TurnSeat, s.Game.Seq, true
	}
	return 0, 0, false
}

// Finish marks the session as finished.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusFinished
}

// Broadcast sends a message to all connected players.
func (s *Session) Broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		select {
		case c.Send <- msg:
		default:
			// drop message if buffer full
		}
	}
}

// Info returns session info for the API.
type Info struct {
	Code    string        `json:"game_code"`
	Mode    int           `json:"mode"`
	Status  Status        `json:"status"`
	Phase   game304.Phase `json:"phase"`
	Players []SeatInfo    `json:"players"`
}

// SeatInfo is one seated player as shown in the lobby.
type SeatInfo struct {
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Connected bool   `json:"connected"`
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := Info{
		Code:   s.Code,
		Mode:   s.Game.Mode,
		Status: s.Status,
		Phase:  s.Game.Phase,
	}
	for _, p := range s.Game.Players {
		_, connected := s.conns[p.ID]
		info.Players = append(info.Players, SeatInfo{
			Name:      p.Name,
			Seat:      p.Seat,
			Connected: connected,
		})
	}
	return info
}

// Lock/Unlock expose the session mutex for callers that read or mutate the
// game state directly.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Empty reports whether no player is connected.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns) == 0
}
