// ABOUTME: Elapsed-time stopwatch feeding a duration into a new fitness record.
// ABOUTME: Ticks once per second on its own goroutine; Stop/Reset cancel it deterministically.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/wellness/internal/models"
)

// RunningKcalPerMinute is the fixed burn estimate applied to timed runs.
const RunningKcalPerMinute = 10

// State is the stopwatch lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrAlreadyRunning = errors.New("timer is already running")
	ErrNotRunning     = errors.New("timer is not running")
)

// Ticker starts a periodic tick and returns its channel and a stop func.
type Ticker func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Option configures a Stopwatch.
type Option func(*Stopwatch)

// WithTicker replaces the wall-clock ticker, mainly for tests.
func WithTicker(t Ticker) Option {
	return func(s *Stopwatch) { s.newTicker = t }
}

// WithOnTick registers an observer called after every tick with the new
// elapsed seconds. It runs on the tick goroutine and must not call Stop,
// Reset or Close synchronously.
func WithOnTick(fn func(seconds int)) Option {
	return func(s *Stopwatch) { s.onTick = fn }
}

// Stopwatch counts whole elapsed seconds.
type Stopwatch struct {
	mu        sync.Mutex
	state     State
	elapsed   int
	newTicker Ticker
	onTick    func(int)
	cancel    chan struct{}
	done      chan struct{}
}

// New creates an idle stopwatch.
func New(opts ...Option) *Stopwatch {
	s := &Stopwatch{newTicker: systemTicker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins ticking from Idle, or resumes from Stopped.
func (s *Stopwatch) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return ErrAlreadyRunning
	}

	ticks, stop := s.newTicker(time.Second)
	s.cancel = make(chan struct{})
	s.done = make(chan struct{})
	s.state = Running
	go s.run(ticks, stop, s.cancel, s.done)
	return nil
}

func (s *Stopwatch) run(ticks <-chan time.Time, stop func(), cancel, done chan struct{}) {
	defer close(done)
	defer stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticks:
			s.mu.Lock()
			if s.state != Running || s.cancel != cancel {
				s.mu.Unlock()
				continue
			}
			s.elapsed++
			seconds := s.elapsed
			fn := s.onTick
			s.mu.Unlock()

			if fn != nil {
				fn(seconds)
			}
		}
	}
}

// Stop freezes the elapsed time and waits for the tick goroutine to exit.
func (s *Stopwatch) Stop() error {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.state = Stopped
	done := s.halt()
	s.mu.Unlock()

	<-done
	return nil
}

// Reset cancels any ticking and returns to Idle with zero elapsed time.
// Valid in every state.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	var done chan struct{}
	if s.state == Running {
		done = s.halt()
	}
	s.state = Idle
	s.elapsed = 0
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Close stops a running stopwatch, keeping its elapsed time. Safe to call
// in any state; use it when the owning screen goes away.
func (s *Stopwatch) Close() {
	_ = s.Stop()
}

// halt closes the cancel channel. Caller holds mu.
func (s *Stopwatch) halt() chan struct{} {
	close(s.cancel)
	s.cancel = nil
	return s.done
}

// State returns the current lifecycle state.
func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns the whole seconds counted so far.
func (s *Stopwatch) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Draft builds an unsaved fitness record from the elapsed time. Duration is
// rounded up to whole minutes; only running gets a calorie estimate.
func (s *Stopwatch) Draft(activity models.ActivityType) *models.FitnessLog {
	return DraftFromSeconds(activity, s.Elapsed())
}

// DraftFromSeconds is Draft for an explicit number of seconds.
func DraftFromSeconds(activity models.ActivityType, seconds int) *models.FitnessLog {
	minutes := Minutes(seconds)
	calories := 0
	if activity == models.ActivityRunning {
		calories = minutes * RunningKcalPerMinute
	}
	return models.NewFitnessLog(activity, minutes, calories)
}

// Minutes converts seconds to minutes, rounding up.
func Minutes(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 59) / 60
}

// Format renders seconds as MM:SS.
func Format(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
