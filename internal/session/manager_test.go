package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	mu sync.Mutex

	signInFn  func(email, password string) (*domain.Session, error)
	signUpFn  func(email, password string, meta domain.SignupMetadata) (*domain.Identity, error)
	sessionFn func(ctx context.Context) (*domain.Session, error)

	signOutErr error
	signOuts   []string
	handler    func(event domain.AuthEvent, s *domain.Session)
}

func (c *fakeCreds) SignInWithPassword(_ context.Context, email, password string) (*domain.Session, error) {
	if c.signInFn == nil {
		return nil, domain.ErrInvalidCredentials
	}
	return c.signInFn(email, password)
}

func (c *fakeCreds) SignUp(_ context.Context, email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
	if c.signUpFn == nil {
		return nil, errors.New("signup not configured")
	}
	return c.signUpFn(email, password, meta)
}

func (c *fakeCreds) SignOut(_ context.Context, accessToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signOuts = append(c.signOuts, accessToken)
	return c.signOutErr
}

func (c *fakeCreds) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	if c.sessionFn == nil {
		return nil, nil
	}
	return c.sessionFn(ctx)
}

func (c *fakeCreds) SubscribeSessionChanges(handler func(event domain.AuthEvent, s *domain.Session)) func() {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
	return func() {}
}

func (c *fakeCreds) signOutCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.signOuts...)
}

type fakeProfiles struct {
	mu sync.Mutex

	getFn   func(id string) (*domain.Profile, error)
	queryFn func(filter domain.ProfileFilter) ([]domain.Profile, error)

	insertErr error
	inserted  []domain.Profile
}

func (p *fakeProfiles) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	if p.getFn == nil {
		return nil, domain.ErrProfileNotFound
	}
	return p.getFn(id)
}

func (p *fakeProfiles) InsertProfile(_ context.Context, profile *domain.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inserted = append(p.inserted, *profile)
	return p.insertErr
}

func (p *fakeProfiles) QueryProfiles(_ context.Context, filter domain.ProfileFilter) ([]domain.Profile, error) {
	if p.queryFn == nil {
		return nil, nil
	}
	return p.queryFn(filter)
}

func (p *fakeProfiles) insertedProfiles() []domain.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Profile(nil), p.inserted...)
}

type notification struct {
	title, message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{title, message})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.calls...)
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeProfile() *domain.Profile {
	return &domain.Profile{
		ID:     "uid-1",
		Name:   "Jane",
		Email:  "jane@example.com",
		Role:   domain.RoleAdmin,
		Status: domain.StatusActive,
	}
}

func testSession() *domain.Session {
	return &domain.Session{
		AccessToken:  "tok-abc",
		RefreshToken: "ref-abc",
		Identity:     domain.Identity{ID: "uid-1", Email: "jane@example.com"},
	}
}

// bootstrapped returns a manager settled in the unauthenticated state.
func bootstrapped(t *testing.T, creds *fakeCreds, profiles *fakeProfiles, notifier *recordingNotifier) *session.Manager {
	t.Helper()
	mgr := session.NewManager(creds, profiles, notifier, testLogger())
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.Bootstrap(context.Background()))
	return mgr
}

func TestBootstrap(t *testing.T) {
	t.Run("no stored session settles unauthenticated", func(t *testing.T) {
		creds := &fakeCreds{}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, &fakeProfiles{}, notifier)

		assert.Equal(t, session.StateUnauthenticated, mgr.State())
		assert.False(t, mgr.IsLoading())
		assert.False(t, mgr.IsAuthenticated())
		assert.Empty(t, notifier.all())
	})

	t.Run("stored session restores the profile", func(t *testing.T) {
		creds := &fakeCreds{
			sessionFn: func(ctx context.Context) (*domain.Session, error) {
				return testSession(), nil
			},
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) {
				assert.Equal(t, "uid-1", id)
				return activeProfile(), nil
			},
		}
		mgr := bootstrapped(t, creds, profiles, &recordingNotifier{})

		assert.Equal(t, session.StateAuthenticated, mgr.State())
		cu := mgr.CurrentUser()
		require.NotNil(t, cu.Profile)
		assert.Equal(t, "Jane", cu.Profile.Name)
		assert.Equal(t, "tok-abc", cu.Session.AccessToken)
	})

	t.Run("profile fetch failure settles unauthenticated", func(t *testing.T) {
		creds := &fakeCreds{
			sessionFn: func(ctx context.Context) (*domain.Session, error) {
				return testSession(), nil
			},
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) {
				return nil, errors.New("db down")
			},
		}
		mgr := bootstrapped(t, creds, profiles, &recordingNotifier{})

		assert.Equal(t, session.StateUnauthenticated, mgr.State())
		assert.Nil(t, mgr.CurrentUser().Profile)
	})

	t.Run("session-change event settles the race when the query hangs", func(t *testing.T) {
		blocked := &fakeCreds{
			sessionFn: func(ctx context.Context) (*domain.Session, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) {
				return activeProfile(), nil
			},
		}
		mgr := session.NewManager(blocked, profiles, &recordingNotifier{}, testLogger())
		t.Cleanup(mgr.Close)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- mgr.Bootstrap(ctx) }()

		// Wait for the subscription to be installed, then emit the event.
		require.Eventually(t, func() bool {
			blocked.mu.Lock()
			defer blocked.mu.Unlock()
			return blocked.handler != nil
		}, time.Second, 5*time.Millisecond)

		blocked.mu.Lock()
		handler := blocked.handler
		blocked.mu.Unlock()
		handler(domain.AuthEventSignedIn, testSession())

		require.NoError(t, <-done)
		assert.Equal(t, session.StateAuthenticated, mgr.State())
	})
}

func TestLogin(t *testing.T) {
	t.Run("success notifies once and authenticates", func(t *testing.T) {
		creds := &fakeCreds{
			signInFn: func(email, password string) (*domain.Session, error) {
				assert.Equal(t, "jane@example.com", email)
				return testSession(), nil
			},
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) { return activeProfile(), nil },
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.Login(context.Background(), "jane@example.com", "secret")

		assert.True(t, ok)
		assert.Equal(t, session.StateAuthenticated, mgr.State())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Login successful", calls[0].title)
		assert.Equal(t, "Welcome back, Jane!", calls[0].message)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		creds := &fakeCreds{
			signInFn: func(email, password string) (*domain.Session, error) {
				return nil, domain.ErrInvalidCredentials
			},
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, &fakeProfiles{}, notifier)

		ok := mgr.Login(context.Background(), "jane@example.com", "wrong")

		assert.False(t, ok)
		assert.Equal(t, session.StateUnauthenticated, mgr.State())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Login failed", calls[0].title)
		assert.Equal(t, "Invalid email or password", calls[0].message)
	})

	t.Run("inactive account is revoked on the spot", func(t *testing.T) {
		creds := &fakeCreds{
			signInFn: func(email, password string) (*domain.Session, error) {
				return testSession(), nil
			},
		}
		inactive := activeProfile()
		inactive.Status = domain.StatusInactive
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) { return inactive, nil },
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.Login(context.Background(), "jane@example.com", "secret")

		assert.False(t, ok)
		assert.Equal(t, session.StateUnauthenticated, mgr.State())
		assert.Equal(t, []string{"tok-abc"}, creds.signOutCalls())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Account inactive", calls[0].title)
	})

	t.Run("profile load failure revokes the fresh session", func(t *testing.T) {
		creds := &fakeCreds{
			signInFn: func(email, password string) (*domain.Session, error) {
				return testSession(), nil
			},
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) { return nil, errors.New("db down") },
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.Login(context.Background(), "jane@example.com", "secret")

		assert.False(t, ok)
		assert.Equal(t, []string{"tok-abc"}, creds.signOutCalls())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Login failed", calls[0].title)
		assert.Equal(t, "Your account profile could not be loaded.", calls[0].message)
	})

	t.Run("seeded dealer lands on the dealer route", func(t *testing.T) {
		creds := &fakeCreds{
			signInFn: func(email, password string) (*domain.Session, error) {
				if email == "dealer@cddiller.com" && password == "dealer123" {
					return &domain.Session{
						AccessToken: "tok-dealer",
						Identity:    domain.Identity{ID: "uid-dealer", Email: email},
					}, nil
				}
				return nil, domain.ErrInvalidCredentials
			},
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) {
				return &domain.Profile{
					ID: "uid-dealer", Name: "Dealer One",
					Role: domain.RoleDealer, Status: domain.StatusActive,
				}, nil
			},
		}
		mgr := bootstrapped(t, creds, profiles, &recordingNotifier{})

		require.True(t, mgr.Login(context.Background(), "dealer@cddiller.com", "dealer123"))

		cu := mgr.CurrentUser()
		require.NotNil(t, cu.Profile)
		assert.Equal(t, domain.RoleDealer, cu.Profile.Role)

		d := session.ResolveRoute(cu, "/")
		assert.Equal(t, session.RouteRedirect, d.Action)
		assert.Equal(t, "/dealer", d.Target)
	})

	t.Run("rejected while a session is active", func(t *testing.T) {
		creds := &fakeCreds{
			signInFn: func(email, password string) (*domain.Session, error) {
				return testSession(), nil
			},
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) { return activeProfile(), nil },
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		require.True(t, mgr.Login(context.Background(), "jane@example.com", "secret"))
		notifier.reset()

		ok := mgr.Login(context.Background(), "jane@example.com", "secret")

		assert.False(t, ok)
		assert.Equal(t, session.StateAuthenticated, mgr.State())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "A session is already active. Log out first.", calls[0].message)
	})
}

func TestSignup(t *testing.T) {
	t.Run("creates identity then pending profile", func(t *testing.T) {
		creds := &fakeCreds{
			signUpFn: func(email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
				assert.Equal(t, domain.RoleDealer, meta.Role)
				return &domain.Identity{ID: "uid-2", Email: email}, nil
			},
		}
		profiles := &fakeProfiles{}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.Signup(context.Background(), "new@example.com", "secret", "New Dealer", domain.RoleDealer)

		assert.True(t, ok)
		inserted := profiles.insertedProfiles()
		require.Len(t, inserted, 1)
		assert.Equal(t, "uid-2", inserted[0].ID)
		assert.Equal(t, domain.StatusPending, inserted[0].Status)
		// The repository writes these columns verbatim, so they must be
		// stamped here.
		assert.False(t, inserted[0].CreatedAt.IsZero())
		assert.False(t, inserted[0].UpdatedAt.IsZero())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Registration successful", calls[0].title)
		assert.Equal(t, "Your account is pending approval.", calls[0].message)
	})

	t.Run("profile insert failure is tolerated", func(t *testing.T) {
		creds := &fakeCreds{
			signUpFn: func(email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
				return &domain.Identity{ID: "uid-2", Email: email}, nil
			},
		}
		profiles := &fakeProfiles{insertErr: errors.New("duplicate key")}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.Signup(context.Background(), "new@example.com", "secret", "New Dealer", domain.RoleDealer)

		assert.True(t, ok)
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Registration successful", calls[0].title)
	})

	t.Run("unknown role never reaches the credential store", func(t *testing.T) {
		signedUp := false
		creds := &fakeCreds{
			signUpFn: func(email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
				signedUp = true
				return &domain.Identity{ID: "uid-2"}, nil
			},
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, &fakeProfiles{}, notifier)

		ok := mgr.Signup(context.Background(), "new@example.com", "secret", "X", domain.Role("wizard"))

		assert.False(t, ok)
		assert.False(t, signedUp)
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Registration failed", calls[0].title)
		assert.Equal(t, "Unknown role", calls[0].message)
	})
}

func TestCreateSuperadmin(t *testing.T) {
	t.Run("second call with the same email is a no-op", func(t *testing.T) {
		signedUp := false
		creds := &fakeCreds{
			signUpFn: func(email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
				signedUp = true
				return &domain.Identity{ID: "uid-root"}, nil
			},
		}
		profiles := &fakeProfiles{
			queryFn: func(filter domain.ProfileFilter) ([]domain.Profile, error) {
				assert.Equal(t, domain.RoleSuperadmin, filter.Role)
				return []domain.Profile{{ID: "uid-root", Email: filter.Email}}, nil
			},
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.CreateSuperadmin(context.Background(), "root@example.com", "secret", "Root")

		assert.False(t, ok)
		assert.False(t, signedUp)
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Superadmin already exists", calls[0].title)
		assert.Equal(t, "An account with this email is already provisioned.", calls[0].message)
	})

	t.Run("profile insert failure is fatal, unlike signup", func(t *testing.T) {
		creds := &fakeCreds{
			signUpFn: func(email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
				return &domain.Identity{ID: "uid-root", Email: email}, nil
			},
		}
		profiles := &fakeProfiles{insertErr: errors.New("insert denied")}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.CreateSuperadmin(context.Background(), "root@example.com", "secret", "Root")

		assert.False(t, ok)
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Superadmin setup failed", calls[0].title)
		assert.Equal(t, "Identity was created but the profile write failed.", calls[0].message)
	})

	t.Run("fresh superadmin is created active", func(t *testing.T) {
		creds := &fakeCreds{
			signUpFn: func(email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
				assert.Equal(t, domain.RoleSuperadmin, meta.Role)
				return &domain.Identity{ID: "uid-root", Email: email}, nil
			},
		}
		profiles := &fakeProfiles{}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, creds, profiles, notifier)

		ok := mgr.CreateSuperadmin(context.Background(), "root@example.com", "secret", "Root")

		assert.True(t, ok)
		inserted := profiles.insertedProfiles()
		require.Len(t, inserted, 1)
		assert.Equal(t, domain.RoleSuperadmin, inserted[0].Role)
		assert.Equal(t, domain.StatusActive, inserted[0].Status)
		assert.False(t, inserted[0].CreatedAt.IsZero())
		assert.False(t, inserted[0].UpdatedAt.IsZero())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Superadmin created", calls[0].title)
		assert.Equal(t, "You can now log in as root@example.com", calls[0].message)
	})

	t.Run("existence check failure aborts", func(t *testing.T) {
		profiles := &fakeProfiles{
			queryFn: func(filter domain.ProfileFilter) ([]domain.Profile, error) {
				return nil, errors.New("db down")
			},
		}
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, &fakeCreds{}, profiles, notifier)

		ok := mgr.CreateSuperadmin(context.Background(), "root@example.com", "secret", "Root")

		assert.False(t, ok)
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Could not verify existing accounts.", calls[0].message)
	})
}

func TestLogout(t *testing.T) {
	login := func(t *testing.T, creds *fakeCreds, notifier *recordingNotifier) *session.Manager {
		t.Helper()
		creds.signInFn = func(email, password string) (*domain.Session, error) {
			return testSession(), nil
		}
		profiles := &fakeProfiles{
			getFn: func(id string) (*domain.Profile, error) { return activeProfile(), nil },
		}
		mgr := bootstrapped(t, creds, profiles, notifier)
		require.True(t, mgr.Login(context.Background(), "jane@example.com", "secret"))
		notifier.reset()
		return mgr
	}

	t.Run("revokes and clears", func(t *testing.T) {
		creds := &fakeCreds{}
		notifier := &recordingNotifier{}
		mgr := login(t, creds, notifier)

		mgr.Logout(context.Background())

		assert.Equal(t, session.StateUnauthenticated, mgr.State())
		assert.Equal(t, []string{"tok-abc"}, creds.signOutCalls())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Logged out", calls[0].title)
		assert.Equal(t, "You have been successfully logged out.", calls[0].message)
	})

	t.Run("revoke failure still clears local state", func(t *testing.T) {
		creds := &fakeCreds{signOutErr: errors.New("upstream 503")}
		notifier := &recordingNotifier{}
		mgr := login(t, creds, notifier)

		mgr.Logout(context.Background())

		assert.Equal(t, session.StateUnauthenticated, mgr.State())
		assert.False(t, mgr.IsAuthenticated())
		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "Session revoke failed upstream; local session cleared.", calls[0].message)
	})

	t.Run("no active session", func(t *testing.T) {
		notifier := &recordingNotifier{}
		mgr := bootstrapped(t, &fakeCreds{}, &fakeProfiles{}, notifier)

		mgr.Logout(context.Background())

		calls := notifier.all()
		require.Len(t, calls, 1)
		assert.Equal(t, "No active session.", calls[0].message)
	})
}
