package domain

import (
	"context"
	"errors"
	"time"
)

// Identity is the authentication-layer record issued by Supabase,
// independent of the profile row.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the cached copy of the token set issued by Supabase. It is
// invalidated on logout or expiry and never otherwise mutated locally.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"identity"`
}

func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// AuthEvent names a session-change notification from the credential store.
type AuthEvent string

const (
	AuthEventInitialSession AuthEvent = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// SignupMetadata travels with the signup call and ends up in the identity's
// user metadata on the Supabase side.
type SignupMetadata struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// CredentialStore is the Supabase GoTrue surface the application consumes.
type CredentialStore interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, meta SignupMetadata) (*Identity, error)
	SignOut(ctx context.Context, accessToken string) error
	GetCurrentSession(ctx context.Context) (*Session, error)
	SubscribeSessionChanges(handler func(event AuthEvent, s *Session)) (unsubscribe func())
}

// Sentinel errors for auth policy branching. Handlers translate these into
// apperror codes; the session manager translates them into notifications.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrSuperadminExists   = errors.New("superadmin already exists")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrLoginBlocked       = errors.New("too many failed login attempts")
)

// LoginResult is what a successful (and policy-approved) login yields.
type LoginResult struct {
	Session *Session `json:"session"`
	Profile *Profile `json:"profile"`
}

type AuthUsecase interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, email, password, name string, role Role) (*Identity, error)
	CreateSuperadmin(ctx context.Context, email, password, name string) (*Profile, error)
	Logout(ctx context.Context, accessToken string) error
	GetCurrentUser(ctx context.Context, id string) (*Profile, error)
}
