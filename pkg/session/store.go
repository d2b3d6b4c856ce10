// Package session holds a client-side LinkBoost session: the bearer token and
// the user it belongs to, with the verify, refresh and logout lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pratik-mahalle/linkboost/pkg/client"
)

// State is where the session is in its lifecycle
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateRefreshing     State = "refreshing"
)

// AuthAPI is the auth service the store talks to. *client.Client satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResult, error)
	Verify(ctx context.Context, token string) (*client.User, error)
	Refresh(ctx context.Context, token string) (string, error)
	LinkedInAuthURL(ctx context.Context, token string) (string, error)
	DisconnectLinkedIn(ctx context.Context, token string) error
}

// Redirector hands the LinkedIn authorization URL to the user
type Redirector func(authURL string) error

// Option configures a Store
type Option func(*Store)

// WithRedirector sets where ConnectLinkedIn sends the authorization URL
func WithRedirector(r Redirector) Option {
	return func(s *Store) { s.redirect = r }
}

// Snapshot is a copy of the session at one instant
type Snapshot struct {
	State State        `json:"state"`
	Token string       `json:"token,omitempty"`
	User  *client.User `json:"user,omitempty"`
}

// UserUpdate carries the user fields to change; nil fields are left alone
type UserUpdate struct {
	Email             *string
	FirstName         *string
	LastName          *string
	SubscriptionLevel *string
	LinkedInConnected *bool
}

// Store is the single owner of the session. Token and user change together:
// callers never see a token without a user or the reverse.
type Store struct {
	api      AuthAPI
	storage  Storage
	redirect Redirector

	mu       sync.Mutex
	token    string
	user     *client.User
	state    State
	inflight bool
	// epoch changes on every Logout; a pending operation whose epoch is stale
	// discards its result.
	epoch uint64
}

// New creates an anonymous store. Call Init to restore a saved session.
func New(api AuthAPI, storage Storage, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		api:     api,
		storage: storage,
		state:   StateAnonymous,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init restores the saved session and verifies its token. Without a saved
// token the store stays anonymous and Init returns nil.
func (s *Store) Init(ctx context.Context) error {
	token, _, err := s.storage.Load()
	if err != nil {
		_ = s.storage.Clear()
		return fmt.Errorf("failed to load session: %w", err)
	}
	if token == "" {
		return s.storage.Clear()
	}

	epoch, _, _, err := s.begin(StateAuthenticating, false)
	if err != nil {
		return err
	}
	return s.verify(ctx, epoch, token)
}

// Login authenticates with email and password
func (s *Store) Login(ctx context.Context, email, password string) error {
	epoch, _, prev, err := s.begin(StateAuthenticating, false)
	if err != nil {
		return err
	}

	res, err := s.api.Login(ctx, email, password)
	return s.finishAuth(epoch, prev, res, err)
}

// Register creates an account and logs in as it
func (s *Store) Register(ctx context.Context, req client.RegisterRequest) error {
	epoch, _, prev, err := s.begin(StateAuthenticating, false)
	if err != nil {
		return err
	}

	res, err := s.api.Register(ctx, req)
	return s.finishAuth(epoch, prev, res, err)
}

// finishAuth applies a login or register result. A failure restores the
// state the session had before the attempt.
func (s *Store) finishAuth(epoch uint64, prev State, res *client.AuthResult, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return ErrSessionInvalidated
	}
	s.inflight = false

	if err != nil {
		s.state = prev
		return authError(err)
	}

	s.token = res.Token
	s.user = copyUser(res.User)
	s.state = StateAuthenticated
	return s.persistLocked()
}

// Verify checks the stored token with the auth service and reloads the user.
// Any failure logs the session out.
func (s *Store) Verify(ctx context.Context) error {
	epoch, token, _, err := s.begin(StateAuthenticating, true)
	if err != nil {
		return err
	}
	return s.verify(ctx, epoch, token)
}

// verify runs after begin has claimed the in-flight slot at epoch
func (s *Store) verify(ctx context.Context, epoch uint64, token string) error {
	u, err := s.api.Verify(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return ErrSessionInvalidated
	}
	if err != nil {
		return errors.Join(fmt.Errorf("session verification failed: %w", err), s.logoutLocked())
	}
	if u == nil {
		return errors.Join(fmt.Errorf("session verification failed: %w", client.ErrIncompleteAuth), s.logoutLocked())
	}

	s.inflight = false
	s.token = token
	s.user = copyUser(u)
	s.state = StateAuthenticated
	return s.persistLocked()
}

// Refresh replaces the token, keeping the user. Any failure logs the session
// out; without a token it returns ErrNoToken and changes nothing.
func (s *Store) Refresh(ctx context.Context) error {
	epoch, token, _, err := s.begin(StateRefreshing, true)
	if err != nil {
		return err
	}

	next, err := s.api.Refresh(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return ErrSessionInvalidated
	}
	if err != nil {
		return errors.Join(fmt.Errorf("token refresh failed: %w", err), s.logoutLocked())
	}
	if next == "" || s.user == nil {
		return errors.Join(fmt.Errorf("token refresh failed: %w", client.ErrIncompleteAuth), s.logoutLocked())
	}

	s.inflight = false
	s.token = next
	s.state = StateAuthenticated
	return s.persistLocked()
}

// Logout clears the session and its storage. It always succeeds in memory;
// the error reports a storage failure. Pending operations are invalidated.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked()
}

func (s *Store) logoutLocked() error {
	s.epoch++
	s.inflight = false
	s.token = ""
	s.user = nil
	s.state = StateAnonymous
	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	return nil
}

// UpdateUser merges the set fields into the user in memory and storage.
// It does nothing when no user is loaded.
func (s *Store) UpdateUser(upd UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}

	u := *s.user
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.SubscriptionLevel != nil {
		u.SubscriptionLevel = *upd.SubscriptionLevel
	}
	if upd.LinkedInConnected != nil {
		u.LinkedInConnected = *upd.LinkedInConnected
	}
	s.user = &u
	return s.persistLocked()
}

// ConnectLinkedIn fetches the authorization URL and hands it to the
// redirector, if one is set. The URL is returned either way.
func (s *Store) ConnectLinkedIn(ctx context.Context) (string, error) {
	token := s.Token()
	if token == "" {
		return "", ErrUnauthenticated
	}

	authURL, err := s.api.LinkedInAuthURL(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to start LinkedIn authorization: %w", err)
	}
	if s.redirect != nil {
		if err := s.redirect(authURL); err != nil {
			return authURL, fmt.Errorf("failed to open LinkedIn authorization: %w", err)
		}
	}
	return authURL, nil
}

// DisconnectLinkedIn unlinks LinkedIn and marks the user disconnected
func (s *Store) DisconnectLinkedIn(ctx context.Context) error {
	s.mu.Lock()
	token, epoch := s.token, s.epoch
	s.mu.Unlock()

	if token == "" {
		return ErrUnauthenticated
	}

	if err := s.api.DisconnectLinkedIn(ctx, token); err != nil {
		return fmt.Errorf("failed to disconnect LinkedIn: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return ErrSessionInvalidated
	}
	if s.user == nil {
		return nil
	}
	u := *s.user
	u.LinkedInConnected = false
	s.user = &u
	return s.persistLocked()
}

// State returns the lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the bearer token, or "" when not authenticated
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the current user, or nil
func (s *Store) User() *client.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// IsAuthenticated reports whether both a token and a user are held
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// Snapshot returns a copy of the whole session
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Token: s.token, User: copyUser(s.user)}
}

// begin claims the in-flight slot and moves to next. With requireToken it
// also reads the token in the same critical section, so a concurrent Logout
// either happens first (ErrNoToken) or bumps the epoch after it is captured.
func (s *Store) begin(next State, requireToken bool) (epoch uint64, token string, prev State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requireToken && s.token == "" {
		return 0, "", "", ErrNoToken
	}
	if s.inflight {
		return 0, "", "", ErrOperationInProgress
	}
	s.inflight = true
	prev = s.state
	s.state = next
	return s.epoch, s.token, prev, nil
}

func (s *Store) persistLocked() error {
	if err := s.storage.Save(s.token, s.user); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// authError maps a rejected login or register to ErrInvalidCredentials and
// leaves transport failures as they are.
func authError(err error) error {
	if apiErr, ok := client.AsAPIError(err); ok {
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message)
	}
	if errors.Is(err, client.ErrIncompleteAuth) {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return err
}
