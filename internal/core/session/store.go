// Package session holds the client-side record of who is logged in.
//
// A Store is constructed once by the application shell, rehydrated from a
// SnapshotStorage, and mutated only through Login, Register, Logout,
// CheckAuthStatus and UpdateUserCompanyAssociation. Every committed mutation
// is written back to storage before subscribers are notified.
//
// Each operation bumps a generation counter. An async operation captures the
// generation before calling the backend and commits only if no other
// operation started meanwhile, so a late response can never resurrect a
// session that was logged out after the request was sent.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/ports"
)

// State is a read-only view of the session.
type State struct {
	Identity        *domain.Identity
	IsAuthenticated bool
	IsLoading       bool
	LastError       error
}

// Store is the single source of truth for the current identity.
type Store struct {
	backend ports.AuthBackend
	storage ports.SnapshotStorage
	log     zerolog.Logger

	mu          sync.Mutex
	state       State
	generation  uint64
	closed      bool
	subscribers map[int]func(State)
	nextSubID   int

	// pending holds committed states not yet handed to subscribers. Only the
	// goroutine that set delivering drains it, so notifications go out in
	// commit order.
	pending    []State
	delivering bool
}

// New creates a Store and synchronously seeds it from storage. Unreadable or
// corrupt snapshots are logged and the store starts logged out.
func New(ctx context.Context, backend ports.AuthBackend, storage ports.SnapshotStorage, log zerolog.Logger) *Store {
	s := &Store{
		backend:     backend,
		storage:     storage,
		log:         log,
		subscribers: make(map[int]func(State)),
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	data, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load session snapshot, starting logged out")
		return
	}
	if len(data) == 0 {
		return
	}

	authenticated, identity, err := decodeSnapshot(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding corrupt session snapshot")
		return
	}

	s.state = State{Identity: identity, IsAuthenticated: authenticated}
	if identity != nil {
		s.log.Debug().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("session rehydrated")
	}
}

// Close disposes the store. Subscribers are dropped and later calls leave the
// state untouched.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subscribers = nil
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Subscribe registers fn to be called with the new state after every change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Login authenticates with the backend. It reports true only when the login
// succeeded and its result was committed.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) bool {
	gen, ok := s.begin()
	if !ok {
		return false
	}

	identity, err := s.backend.Login(ctx, creds)
	if err == nil && identity == nil {
		err = errors.New("backend returned no identity")
	}
	if err != nil {
		s.log.Info().Err(err).Str("email", creds.Email).Msg("login failed")
		s.commit(ctx, gen, loggedOut(loginFailure(err)))
		return false
	}

	committed := s.commit(ctx, gen, authenticatedAs(identity))
	if committed {
		s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("logged in")
	}
	return committed
}

// Register creates an account and logs into it. Same contract as Login.
func (s *Store) Register(ctx context.Context, data domain.RegistrationPayload) bool {
	gen, ok := s.begin()
	if !ok {
		return false
	}

	identity, err := s.backend.Register(ctx, data)
	if err == nil && identity == nil {
		err = errors.New("backend returned no identity")
	}
	if err != nil {
		s.log.Info().Err(err).Str("email", data.Email).Msg("registration failed")
		s.commit(ctx, gen, loggedOut(fmt.Errorf("%w: %w", domain.ErrRegistration, err)))
		return false
	}

	committed := s.commit(ctx, gen, authenticatedAs(identity))
	if committed {
		s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("registered")
	}
	return committed
}

// Logout resets the session. Calling it while logged out is a no-op apart
// from rewriting the same empty snapshot.
func (s *Store) Logout() {
	s.apply(context.Background(), func(st *State) bool {
		*st = State{}
		return true
	})
}

// CheckAuthStatus re-fetches the current identity so server-side role or
// company changes are picked up. A profile that no longer resolves, or a
// backend that cannot be reached, logs the session out.
func (s *Store) CheckAuthStatus(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	st := s.state
	hasID := st.Identity != nil && st.Identity.ID != ""
	if !st.IsAuthenticated && st.Identity == nil {
		s.mu.Unlock()
		return
	}
	if !st.IsAuthenticated || !hasID {
		s.mu.Unlock()
		s.log.Warn().Bool("is_authenticated", st.IsAuthenticated).Msg("normalising inconsistent session")
		s.apply(ctx, func(st *State) bool {
			*st = State{}
			return true
		})
		return
	}

	id, email := st.Identity.ID, st.Identity.Email
	s.generation++
	gen := s.generation
	s.state.IsLoading = true
	s.state.LastError = nil
	s.publishLocked()

	profile, err := s.backend.FetchProfile(ctx, id)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("user_id", id).Msg("session refresh failed")
		s.commit(ctx, gen, loggedOut(fmt.Errorf("%w: %w", domain.ErrSessionRefreshFailed, err)))
	case profile == nil:
		s.log.Info().Str("user_id", id).Msg("profile no longer exists, logging out")
		s.commit(ctx, gen, loggedOut(domain.ErrProfileNotFound))
	case profile.ID != id:
		s.log.Warn().Str("user_id", id).Str("profile_id", profile.ID).Msg("profile id mismatch")
		s.commit(ctx, gen, loggedOut(fmt.Errorf("%w: profile id mismatch", domain.ErrSessionRefreshFailed)))
	default:
		// Public profiles omit the email; the session already knows it.
		if profile.Email == "" {
			profile = profile.Clone()
			profile.Email = email
		}
		s.commit(ctx, gen, authenticatedAs(profile))
	}
}

// UpdateUserCompanyAssociation records the outcome of an invitation or company
// creation handled elsewhere. It is the only path from recruiter_unassociated
// to recruiter. No-op without an identity or with an empty argument.
func (s *Store) UpdateUserCompanyAssociation(companyID, companyName string) {
	company := domain.NewCompanyAssociation(companyID, companyName)
	if company == nil {
		return
	}
	s.apply(context.Background(), func(st *State) bool {
		if st.Identity == nil {
			return false
		}
		identity := st.Identity.Clone()
		identity.Company = company
		identity.Role = domain.RoleRecruiter
		st.Identity = identity
		return true
	})
}

// begin starts an async operation and returns its generation.
func (s *Store) begin() (uint64, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, false
	}
	s.generation++
	gen := s.generation
	s.state.IsLoading = true
	s.state.LastError = nil
	s.publishLocked()
	return gen, true
}

// commit applies the result of the operation started at gen, unless another
// operation has started since. It unlocks before notifying subscribers.
func (s *Store) commit(ctx context.Context, gen uint64, mutate func(*State)) bool {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.log.Debug().Uint64("generation", gen).Msg("discarding stale session result")
		return false
	}
	mutate(&s.state)
	s.state.IsLoading = false
	s.persistLocked(ctx)
	s.publishLocked()
	return true
}

// apply runs a synchronous mutation as its own generation. mutate returns
// false to leave the state untouched.
func (s *Store) apply(ctx context.Context, mutate func(*State) bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next := s.copyLocked()
	if !mutate(&next) {
		s.mu.Unlock()
		return
	}
	s.generation++
	next.IsLoading = false
	s.state = next
	s.persistLocked(ctx)
	s.publishLocked()
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := encodeSnapshot(s.state.IsAuthenticated, s.state.Identity)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode session snapshot")
		return
	}
	if err := s.storage.Save(context.WithoutCancel(ctx), data); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session snapshot")
	}
}

// publishLocked queues the new state and releases the lock. If no other
// goroutine is delivering, the caller drains the queue itself; otherwise the
// active deliverer picks the state up, keeping notifications in commit order.
// A subscriber that mutates the store only queues another notification.
func (s *Store) publishLocked() {
	s.pending = append(s.pending, s.copyLocked())
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		subs := make([]func(State), 0, len(s.subscribers))
		for _, fn := range s.subscribers {
			subs = append(subs, fn)
		}
		s.mu.Unlock()

		for _, st := range batch {
			for _, fn := range subs {
				fn(st)
			}
		}

		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func (s *Store) copyLocked() State {
	st := s.state
	st.Identity = s.state.Identity.Clone()
	return st
}

func authenticatedAs(identity *domain.Identity) func(*State) {
	identity = identity.Clone().Normalize()
	return func(st *State) {
		st.Identity = identity
		st.IsAuthenticated = true
		st.LastError = nil
	}
}

func loggedOut(reason error) func(*State) {
	return func(st *State) {
		st.Identity = nil
		st.IsAuthenticated = false
		st.LastError = reason
	}
}

// loginFailure collapses credential errors into one message so callers cannot
// tell an unknown email from a wrong password.
func loginFailure(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUserNotFound):
		return domain.ErrAuthentication
	case errors.Is(err, domain.ErrTooManyAttempts):
		return domain.ErrTooManyAttempts
	default:
		return fmt.Errorf("login failed: %w", err)
	}
}
