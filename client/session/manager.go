package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Logger is satisfied by *slog.Logger
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// State is a snapshot of the session
type State struct {
	Identity Identity
	Loading  bool
}

// Authenticated reports whether an identity is present
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// Listener is called after every state change
type Listener func(State)

// Manager owns the session state of a client
type Manager struct {
	mu        sync.RWMutex
	store     Store
	state     State
	listeners []Listener
	initOnce  sync.Once
	logger    Logger
	now       func() time.Time
}

type ManagerOption func(*Manager)

func WithLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock sets the time source used for expiry checks
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager returns a manager in the loading state
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		state:  State{Loading: true},
		logger: slog.Default().With("module", "session"),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Init restores the identity from the stored token. It runs once,
// later calls return the current state.
func (m *Manager) Init() State {
	m.initOnce.Do(func() {
		identity := m.restore()

		m.mu.Lock()
		if m.state.Identity == nil {
			m.state.Identity = identity
		}
		m.state.Loading = false
		m.mu.Unlock()

		m.notify()
	})

	return m.State()
}

// restore never fails, any problem with the stored token leaves the
// session signed out
func (m *Manager) restore() Identity {
	token, ok, err := m.store.Load()
	if err != nil {
		m.logger.Error("failed to load session token", "error", err)
		m.clearStore()
		return nil
	}

	if !ok {
		return nil
	}

	identity, err := DecodeClaims(token)
	if err == nil {
		err = CheckExpiry(identity, m.now())
	}

	if err != nil {
		m.logger.Warn("discarding stored session token", "error", err)
		m.clearStore()
		return nil
	}

	m.logger.Debug("session restored", "user_id", identity.ID())
	return identity
}

func (m *Manager) clearStore() {
	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to clear session token", "error", err)
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Identity() Identity {
	return m.State().Identity
}

func (m *Manager) Authenticated() bool {
	return m.State().Authenticated()
}

// Store returns the token store backing the session
func (m *Manager) Store() Store {
	return m.store
}

// SetIdentity replaces the identity, it is used after a login
func (m *Manager) SetIdentity(identity Identity) {
	m.mu.Lock()
	m.state.Identity = identity
	m.mu.Unlock()

	m.notify()
}

// Logout clears the stored token and the identity
func (m *Manager) Logout() error {
	err := m.store.Clear()
	if err != nil {
		m.logger.Error("failed to clear session token", "error", err)
	}

	m.Reset()
	return err
}

// Reset drops the in memory identity and leaves the store untouched
func (m *Manager) Reset() {
	m.mu.Lock()
	changed := m.state.Identity != nil
	m.state.Identity = nil
	m.mu.Unlock()

	if changed {
		m.notify()
	}
}

// OnChange registers fn and returns a function that removes it
func (m *Manager) OnChange(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, fn)
	idx := len(m.listeners) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.listeners) {
			m.listeners[idx] = nil
		}
	}
}

func (m *Manager) notify() {
	m.mu.RLock()
	state := m.state
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		if l != nil {
			listeners = append(listeners, l)
		}
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l(state)
	}
}

type managerKey struct{}

// WithManager returns a context carrying m
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the manager stored by WithManager
func FromContext(ctx context.Context) (*Manager, error) {
	if ctx == nil {
		return nil, ErrContextMisuse
	}
	m, ok := ctx.Value(managerKey{}).(*Manager)
	if !ok || m == nil {
		return nil, ErrContextMisuse
	}
	return m, nil
}

// MustFromContext panics with ErrContextMisuse when ctx has no manager
func MustFromContext(ctx context.Context) *Manager {
	m, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return m
}
