package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cddiller-backend/internal/domain"
)

// ProfileStore is the profile-row surface the manager consumes.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	InsertProfile(ctx context.Context, p *domain.Profile) error
	QueryProfiles(ctx context.Context, filter domain.ProfileFilter) ([]domain.Profile, error)
}

// Notifier receives exactly one transient notification per operation
// outcome, success or failure.
type Notifier interface {
	Notify(title, message string)
}

type State int

const (
	StateBootstrapping State = iota
	StateUnauthenticated
	StateAuthenticating
	StateAuthenticated
	StateLoggingOut
)

// CurrentUser is the manager's externally observable state. Profile is
// non-nil if and only if a session exists and the profile fetch succeeded.
type CurrentUser struct {
	Identity  domain.Identity
	Profile   *domain.Profile
	Session   *domain.Session
	IsLoading bool
}

// Manager owns the authenticated identity for the life of the process.
// Construct one at startup and hand it to consumers; there is no hidden
// global instance.
//
// All state mutation happens either inside an operation (Login, Logout, ...)
// or on the internal task worker. Session-change callbacks never touch state
// directly: they post follow-up work to the task queue, so the event source
// is never re-entered while it is still emitting.
type Manager struct {
	creds    domain.CredentialStore
	profiles ProfileStore
	notify   Notifier
	log      *slog.Logger

	mu    sync.Mutex
	state State
	cu    CurrentUser

	settleOnce  sync.Once
	settled     chan struct{}
	tasks       chan func()
	done        chan struct{}
	unsubscribe func()
}

func NewManager(creds domain.CredentialStore, profiles ProfileStore, notify Notifier, log *slog.Logger) *Manager {
	m := &Manager{
		creds:    creds,
		profiles: profiles,
		notify:   notify,
		log:      log,
		state:    StateBootstrapping,
		cu:       CurrentUser{IsLoading: true},
		settled:  make(chan struct{}),
		tasks:    make(chan func(), 16),
		done:     make(chan struct{}),
	}
	go m.worker()
	return m
}

func (m *Manager) worker() {
	for {
		select {
		case task := <-m.tasks:
			task()
		case <-m.done:
			return
		}
	}
}

func (m *Manager) enqueue(task func()) {
	select {
	case m.tasks <- task:
	case <-m.done:
	}
}

// Close stops the task worker and drops the session-change subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	close(m.done)
}

// Bootstrap restores session state at process start. It subscribes to
// session-change events and issues the one-shot current-session query
// concurrently; whichever observation settles first wins, and the loading
// flag drops exactly once. Blocks until settled or ctx expires.
func (m *Manager) Bootstrap(ctx context.Context) error {
	unsub := m.creds.SubscribeSessionChanges(func(event domain.AuthEvent, s *domain.Session) {
		m.enqueue(func() { m.handleAuthEvent(ctx, event, s) })
	})

	m.mu.Lock()
	m.unsubscribe = unsub
	m.mu.Unlock()

	go func() {
		s, err := m.creds.GetCurrentSession(ctx)
		if err != nil {
			m.log.Warn("session query failed during bootstrap", "error", err)
			s = nil
		}
		m.enqueue(func() { m.settle(ctx, s) })
	}()

	select {
	case <-m.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle resolves the bootstrap race. Only the first observation is applied.
func (m *Manager) settle(ctx context.Context, s *domain.Session) {
	m.settleOnce.Do(func() {
		if s == nil {
			m.mu.Lock()
			m.state = StateUnauthenticated
			m.cu = CurrentUser{}
			m.mu.Unlock()
			close(m.settled)
			return
		}

		profile, err := m.profiles.GetProfile(ctx, s.Identity.ID)
		m.mu.Lock()
		if err != nil {
			m.log.Warn("profile fetch failed during bootstrap", "user_id", s.Identity.ID, "error", err)
			m.state = StateUnauthenticated
			m.cu = CurrentUser{}
		} else {
			m.state = StateAuthenticated
			m.cu = CurrentUser{
				Identity: s.Identity,
				Profile:  profile,
				Session:  s,
			}
		}
		m.mu.Unlock()
		close(m.settled)
	})
}

// handleAuthEvent runs on the task worker, one scheduling step removed from
// the subscription callback.
func (m *Manager) handleAuthEvent(ctx context.Context, event domain.AuthEvent, s *domain.Session) {
	select {
	case <-m.settled:
	default:
		// First observation to arrive settles the bootstrap.
		m.settle(ctx, s)
		return
	}

	switch event {
	case domain.AuthEventSignedOut:
		m.mu.Lock()
		if m.state == StateAuthenticated {
			m.state = StateUnauthenticated
			m.cu = CurrentUser{}
		}
		m.mu.Unlock()

	case domain.AuthEventSignedIn, domain.AuthEventTokenRefreshed:
		if s == nil {
			return
		}
		profile, err := m.profiles.GetProfile(ctx, s.Identity.ID)
		if err != nil {
			m.log.Warn("profile refresh failed", "user_id", s.Identity.ID, "error", err)
			return
		}
		m.mu.Lock()
		if m.state == StateAuthenticated || m.state == StateAuthenticating {
			m.state = StateAuthenticated
			m.cu = CurrentUser{
				Identity: s.Identity,
				Profile:  profile,
				Session:  s,
			}
		}
		m.mu.Unlock()
	}
}

// Login verifies credentials and applies the inactive-account policy. It
// never returns an error to the caller: the outcome is the bool plus one
// notification.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	m.mu.Lock()
	if m.state != StateUnauthenticated {
		m.mu.Unlock()
		m.notify.Notify("Login failed", "A session is already active. Log out first.")
		return false
	}
	m.state = StateAuthenticating
	m.cu.IsLoading = true
	m.mu.Unlock()

	fail := func(title, msg string) bool {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.cu = CurrentUser{}
		m.mu.Unlock()
		m.notify.Notify(title, msg)
		return false
	}

	s, err := m.creds.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return fail("Login failed", "Invalid email or password")
		}
		m.log.Error("sign-in failed", "email", email, "error", err)
		return fail("Login failed", "An error occurred during login. Please try again.")
	}

	profile, err := m.profiles.GetProfile(ctx, s.Identity.ID)
	if err != nil {
		m.log.Error("profile fetch failed after login", "user_id", s.Identity.ID, "error", err)
		_ = m.creds.SignOut(ctx, s.AccessToken)
		return fail("Login failed", "Your account profile could not be loaded.")
	}

	// Policy check after authentication succeeds but before the caller is
	// told "logged in": inactive accounts are revoked on the spot.
	if profile.Status == domain.StatusInactive {
		if err := m.creds.SignOut(ctx, s.AccessToken); err != nil {
			m.log.Warn("session revoke failed for inactive account", "user_id", s.Identity.ID, "error", err)
		}
		return fail("Account inactive", "Your account has been deactivated. Contact an administrator.")
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.cu = CurrentUser{
		Identity: s.Identity,
		Profile:  profile,
		Session:  s,
	}
	m.mu.Unlock()

	m.notify.Notify("Login successful", "Welcome back, "+profile.Name+"!")
	return true
}

// Signup creates the identity, then writes the profile row best-effort with
// status pending. A profile-write failure after a successful identity
// creation is logged but does not fail the signup: a backend trigger may
// create the row independently.
func (m *Manager) Signup(ctx context.Context, email, password, name string, role domain.Role) bool {
	if !role.Valid() {
		m.notify.Notify("Registration failed", "Unknown role")
		return false
	}

	identity, err := m.creds.SignUp(ctx, email, password, domain.SignupMetadata{Name: name, Role: role})
	if err != nil {
		m.log.Error("signup failed", "email", email, "error", err)
		m.notify.Notify("Registration failed", err.Error())
		return false
	}

	now := time.Now()
	err = m.profiles.InsertProfile(ctx, &domain.Profile{
		ID:        identity.ID,
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		m.log.Warn("profile insert failed after signup; relying on backend trigger",
			"user_id", identity.ID, "error", err)
	}

	m.notify.Notify("Registration successful", "Your account is pending approval.")
	return true
}

// CreateSuperadmin is the guarded signup variant. A second call with the
// same email is an idempotent no-op failure, and unlike Signup a
// profile-insert failure here is fatal.
func (m *Manager) CreateSuperadmin(ctx context.Context, email, password, name string) bool {
	existing, err := m.profiles.QueryProfiles(ctx, domain.ProfileFilter{
		Role:  domain.RoleSuperadmin,
		Email: email,
	})
	if err != nil {
		m.log.Error("superadmin existence check failed", "error", err)
		m.notify.Notify("Superadmin setup failed", "Could not verify existing accounts.")
		return false
	}
	if len(existing) > 0 {
		m.notify.Notify("Superadmin already exists", "An account with this email is already provisioned.")
		return false
	}

	identity, err := m.creds.SignUp(ctx, email, password, domain.SignupMetadata{Name: name, Role: domain.RoleSuperadmin})
	if err != nil {
		m.log.Error("superadmin signup failed", "email", email, "error", err)
		m.notify.Notify("Superadmin setup failed", err.Error())
		return false
	}

	// Superadmins are pre-approved, unlike regular signups.
	now := time.Now()
	err = m.profiles.InsertProfile(ctx, &domain.Profile{
		ID:        identity.ID,
		Name:      name,
		Email:     email,
		Role:      domain.RoleSuperadmin,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		m.log.Error("superadmin profile insert failed", "user_id", identity.ID, "error", err)
		m.notify.Notify("Superadmin setup failed", "Identity was created but the profile write failed.")
		return false
	}

	m.notify.Notify("Superadmin created", "You can now log in as "+email)
	return true
}

// Logout revokes the session and clears local state. Revocation errors are
// surfaced as a notification but never leave the manager authenticated.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		m.notify.Notify("Logged out", "No active session.")
		return
	}
	m.state = StateLoggingOut
	m.cu.IsLoading = true
	token := ""
	if m.cu.Session != nil {
		token = m.cu.Session.AccessToken
	}
	m.mu.Unlock()

	revokeErr := m.creds.SignOut(ctx, token)

	m.mu.Lock()
	m.state = StateUnauthenticated
	m.cu = CurrentUser{}
	m.mu.Unlock()

	if revokeErr != nil {
		m.log.Warn("session revoke failed during logout", "error", revokeErr)
		m.notify.Notify("Logged out", "Session revoke failed upstream; local session cleared.")
		return
	}
	m.notify.Notify("Logged out", "You have been successfully logged out.")
}

// CurrentUser returns a snapshot of the observable state.
func (m *Manager) CurrentUser() CurrentUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cu
}

// IsAuthenticated is derived state: a profile is present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cu.Profile != nil
}

func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cu.IsLoading
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
