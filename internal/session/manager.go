package session

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"trump304/internal/game304"
	"trump304/internal/storage"
)

const codeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Manager manages all active sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    *storage.Store
}

// NewManager creates a session manager.
func NewManager(store *storage.Store) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
	}
}

// Create makes a new session and persists it. The code is retried on the
// rare collision with a live session.
func (m *Manager) Create(mode int) (*Session, error) {
	var code string
	for i := 0; ; i++ {
		c, err := generateCode()
		if err != nil {
			return nil, err
		}
		code = c
		m.mu.RLock()
		_, taken := m.sessions[code]
		m.mu.RUnlock()
		if !taken {
			break
		}
		if i >= 10 {
			return nil, fmt.Errorf("could not allocate a game code")
		}
	}

	s, err := NewSession(code, mode)
	if err != nil {
		return nil, err
	}
	if err := m.store.CreateSession(code, mode); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	m.mu.Lock()
	m.sessions[code] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a session by code.
func (m *Manager) Get(code string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[code]
	return s, ok
}

// List returns info for all active sessions.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// SaveState persists the current game state for a session.
func (m *Manager) SaveState(s *Session) error {
	s.mu.Lock()
	status := s.Status
	data, err := json.Marshal(s.Game)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal game state: %w", err)
	}

	if err := m.store.UpdateSessionStatus(s.Code, string(status)); err != nil {
		return err
	}
	return m.store.SaveGameState(s.Code, string(data))
}

// Restore loads sessions from the database on startup.
func (m *Manager) Restore() error {
	rows, err := m.store.ListSessions("")
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	for _, row := range rows {
		if row.Status == string(StatusFinished) {
			continue
		}
		s, err := NewSession(row.Code, row.Mode)
		if err != nil {
			log.Printf("skipping session %s: %v", row.Code, err)
			continue
		}
		s.Status = Status(row.Status)
		s.CreatedAt = row.CreatedAt

		// Waiting sessions may have seated players already; playing ones
		// always have saved state.
		stateJSON, err := m.store.GetGameState(row.Code)
		if err == nil {
			g := &game304.Game{}
			if err := json.Unmarshal([]byte(stateJSON), g); err != nil {
				log.Printf("skipping session %s: unmarshal error: %v", row.Code, err)
				continue
			}
			s.Game = g
		} else if row.Status == string(StatusPlaying) {
			log.Printf("skipping session %s: no game state: %v", row.Code, err)
			continue
		}
		m.mu.Lock()
		m.sessions[row.Code] = s
		m.mu.Unlock()
	}
	return nil
}

// Remove deletes a session from memory and storage.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	delete(m.sessions, code)
	m.mu.Unlock()
	m.store.DeleteSession(code)
}

// CleanupLoop removes stale sessions periodically.
func (m *Manager) CleanupLoop(interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		m.cleanup(maxAge)
	}
}

func (m *Manager) cleanup(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for code, s := range m.sessions {
		s.mu.Lock()
		finished := s.Status == StatusFinished
		empty := len(s.conns) == 0
		s.mu.Unlock()
		if !finished && !empty {
			continue
		}
		row, err := m.store.GetSession(code)
		if err != nil {
			delete(m.sessions, code)
			continue
		}
		if finished || now.Sub(row.CreatedAt) > maxAge {
			log.Printf("cleaning up session %s (created %s)", code, humanize.Time(row.CreatedAt))
			m.store.DeleteSession(code)
			delete(m.sessions, code)
		}
	}
}

func generateCode() (string, error) {
	// rejection sampling keeps every alphabet character equally likely
	limit := 256 - 256%len(codeAlphabet)
	b := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(b) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, v := range buf {
			if int(v) >= limit {
				continue
			}
			b = append(b, codeAlphabet[int(v)%len(codeAlphabet)])
			if len(b) == codeLength {
				break
			}
		}
	}
	return string(b), nil
}
