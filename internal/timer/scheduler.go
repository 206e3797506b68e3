// Package timer arms one-shot turn deadlines and fires a callback when
// they expire. Tokens let the server cancel a deadline once the seat acts.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Handler is invoked when an armed deadline expires. The seq is the game
// sequence number captured at arming time; the receiver uses it to discard
// deadlines that a later action already invalidated.
type Handler func(code string, seat, seq int)

// Scheduler arms and cancels turn deadlines.
type Scheduler interface {
	Arm(code string, seat, seq int, d time.Duration) (uuid.UUID, error)
	Cancel(token uuid.UUID)
}

// Gocron runs deadlines as one-time gocron jobs. The job id doubles as the
// cancellation token.
type Gocron struct {
	mu      sync.RWMutex
	sched   gocron.Scheduler
	handler Handler
}

// NewGocron creates a stopped scheduler. Call SetHandler and Start before
// arming deadlines.
func NewGocron() (*Gocron, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	return &Gocron{sched: s}, nil
}

// SetHandler installs the expiry callback.
func (g *Gocron) SetHandler(h Handler) {
	g.mu.Lock()
	g.handler = h
	g.mu.Unlock()
}

// Start begins running armed jobs.
func (g *Gocron) Start() { g.sched.Start() }

// Shutdown stops the scheduler and drops all pending deadlines.
func (g *Gocron) Shutdown() error { return g.sched.Shutdown() }

// Arm schedules the handler to fire after d. The returned token cancels it.
func (g *Gocron) Arm(code string, seat, seq int, d time.Duration) (uuid.UUID, error) {
	j, err := g.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(d))),
		gocron.NewTask(func() {
			g.mu.RLock()
			h := g.handler
			g.mu.RUnlock()
			if h != nil {
				h(code, seat, seq)
			}
		}),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("arm deadline: %w", err)
	}
	return j.ID(), nil
}

// Cancel removes a pending deadline. Unknown tokens are ignored; the job may
// already have fired.
func (g *Gocron) Cancel(token uuid.UUID) {
	_ = g.sched.RemoveJob(token)
}
