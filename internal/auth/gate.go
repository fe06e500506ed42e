// ABOUTME: Session Gate tracking the one active session of the process.
// ABOUTME: Owns the Loading/Authenticated/Unauthenticated state machine and change listeners.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harperreed/wellness/internal/models"
)

// State is the gate's authentication state.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event names a session transition.
type Event int

const (
	EventInitialSession Event = iota
	EventSignedIn
	EventSignedOut
	EventTokenRefreshed
)

func (e Event) String() string {
	switch e {
	case EventInitialSession:
		return "initial_session"
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Change is delivered to listeners once per transition. Session is nil
// after sign-out or when startup found no session.
type Change struct {
	Event   Event
	Session *models.Session
}

// Listener observes session changes. Listeners run synchronously and in
// order; they must not call mutating Gate methods.
type Listener func(Change)

// SignUpResult reports the outcome of a successful sign-up.
type SignUpResult struct {
	// NeedsVerification is set when the account exists but cannot sign in yet.
	NeedsVerification bool
	// Session is set when the provider signed the new user straight in.
	Session *models.Session
}

// Provider is the identity service the gate delegates to.
type Provider interface {
	// Restore returns the persisted session, or nil when there is none.
	Restore(ctx context.Context) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*SignUpResult, error)
	SignOut(ctx context.Context, session *models.Session) error
	Refresh(ctx context.Context, session *models.Session) (*models.Session, error)
}

// Gate is the only way the rest of the program reads or changes the session.
type Gate struct {
	provider Provider
	logger   *log.Logger

	mu        sync.RWMutex
	state     State
	session   *models.Session
	listeners map[int]Listener
	nextID    int
	closed    bool

	emitMu    sync.Mutex
	initOnce  sync.Once
	readyOnce sync.Once
	ready     chan struct{}
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger routes gate diagnostics to logger.
func WithLogger(logger *log.Logger) GateOption {
	return func(g *Gate) { g.logger = logger }
}

// NewGate returns a gate in the Loading state.
func NewGate(provider Provider, opts ...GateOption) *Gate {
	g := &Gate{
		provider:  provider,
		logger:    log.Default(),
		state:     StateLoading,
		listeners: make(map[int]Listener),
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init restores the persisted session once. Later calls are no-ops. A restore
// failure leaves the gate Unauthenticated and is returned for reporting.
func (g *Gate) Init(ctx context.Context) error {
	var err error
	g.initOnce.Do(func() {
		session, rerr := g.provider.Restore(ctx)
		if rerr != nil {
			g.logger.Warn("session restore failed", "err", rerr)
			err = authErr("restore session", rerr)
			session = nil
		}
		g.emit(EventInitialSession, session, func() bool {
			return g.state == StateLoading
		})
	})
	return err
}

// Start runs Init in the background; use Ready to wait for it.
func (g *Gate) Start(ctx context.Context) {
	go func() { _ = g.Init(ctx) }()
}

// Ready is closed once the gate has left Loading.
func (g *Gate) Ready() <-chan struct{} {
	return g.ready
}

// Wait blocks until the gate has left Loading or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// CurrentSession returns a copy of the cached session, or nil.
func (g *Gate) CurrentSession() *models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return nil
	}
	s := *g.session
	return &s
}

// RequireSession returns the signed-in user id or ErrNotAuthenticated.
// Its signature matches storage.OwnerFunc.
func (g *Gate) RequireSession() (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateAuthenticated || g.session == nil {
		return "", ErrNotAuthenticated
	}
	return g.session.UserID, nil
}

// OnSessionChange registers fn and returns an idempotent unsubscribe func.
func (g *Gate) OnSessionChange(fn Listener) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return func() {}
	}
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

// SignIn authenticates and replaces any current session.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, authErr("sign in", err)
	}
	g.emit(EventSignedIn, session, nil)
	g.logger.Info("signed in", "user", session.UserID)
	return g.CurrentSession(), nil
}

// SignUp registers a new account. When the provider grants a session right
// away the gate becomes Authenticated.
func (g *Gate) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	res, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, authErr("sign up", err)
	}
	if res.Session != nil {
		g.emit(EventSignedIn, res.Session, nil)
		g.logger.Info("signed up", "user", res.Session.UserID)
	}
	return res, nil
}

// SignOut always ends in Unauthenticated. A provider failure is logged only.
func (g *Gate) SignOut(ctx context.Context) {
	session := g.CurrentSession()
	if session != nil {
		if err := g.provider.SignOut(ctx, session); err != nil {
			g.logger.Warn("remote sign out failed; clearing local session anyway", "err", err)
		}
	}
	g.emit(EventSignedOut, nil, func() bool {
		return g.state != StateUnauthenticated
	})
}

// Refresh swaps in fresh tokens. If the provider reports the session is
// no longer valid, the gate is invalidated.
func (g *Gate) Refresh(ctx context.Context) (*models.Session, error) {
	session := g.CurrentSession()
	if session == nil {
		return nil, authErr("refresh session", ErrNotAuthenticated)
	}

	next, err := g.provider.Refresh(ctx, session)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrInvalidCredentials) {
			g.Invalidate(err)
		}
		return nil, authErr("refresh session", err)
	}

	g.emit(EventTokenRefreshed, next, func() bool {
		return g.state == StateAuthenticated
	})
	return g.CurrentSession(), nil
}

// Invalidate drops the session without contacting the provider.
func (g *Gate) Invalidate(reason error) {
	g.logger.Warn("session invalidated", "reason", reason)
	g.emit(EventSignedOut, nil, func() bool {
		return g.state != StateUnauthenticated
	})
}

// Close detaches every listener. The cached state stays readable.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.listeners = make(map[int]Listener)
}

// emit applies a transition and notifies listeners once. guard, when set,
// is checked under the lock and can veto the transition.
func (g *Gate) emit(event Event, session *models.Session, guard func() bool) {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()

	g.mu.Lock()
	if guard != nil && !guard() {
		loaded := g.state != StateLoading
		g.mu.Unlock()
		if loaded {
			g.markReady()
		}
		return
	}
	if session != nil {
		s := *session
		g.session = &s
		g.state = StateAuthenticated
	} else {
		g.session = nil
		g.state = StateUnauthenticated
	}
	listeners := make([]Listener, 0, len(g.listeners))
	for id := 0; id < g.nextID; id++ {
		if fn, ok := g.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	current := g.session
	g.mu.Unlock()

	g.markReady()
	g.logger.Debug("session change", "event", event)

	for _, fn := range listeners {
		var copied *models.Session
		if current != nil {
			s := *current
			copied = &s
		}
		fn(Change{Event: event, Session: copied})
	}
}

func (g *Gate) markReady() {
	g.readyOnce.Do(func() { close(g.ready) })
}
