package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/security"
)

type authUsecase struct {
	creds    domain.CredentialStore
	profiles domain.ProfileRepository
	tracker  *security.LoginTracker // optional; nil disables failed-login blocking
	log      *slog.Logger
}

func NewAuthUsecase(creds domain.CredentialStore, profiles domain.ProfileRepository, tracker *security.LoginTracker, log *slog.Logger) domain.AuthUsecase {
	return &authUsecase{creds: creds, profiles: profiles, tracker: tracker, log: log}
}

// Login verifies credentials against Supabase, then applies the
// inactive-account policy against the local profile row: authentication can
// succeed upstream and still be refused here, in which case the fresh
// session is revoked before the caller hears anything.
func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	ip := clientIP(ctx)

	if u.tracker != nil {
		blocked, err := u.tracker.IsBlocked(ctx, email, ip)
		if err != nil {
			u.log.Warn("login block check failed", "error", err)
		}
		if blocked {
			return nil, domain.ErrLoginBlocked
		}
	}

	s, err := u.creds.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) && u.tracker != nil {
			if _, _, terr := u.tracker.RecordFailedAttempt(ctx, email, ip); terr != nil {
				u.log.Warn("failed-attempt tracking unavailable", "error", terr)
			}
		}
		return nil, err
	}

	profile, err := u.profiles.GetByID(ctx, s.Identity.ID)
	if err != nil {
		// A valid identity without a profile row cannot be let in; the role
		// would be undefined.
		_ = u.creds.SignOut(ctx, s.AccessToken)
		return nil, domain.ErrProfileNotFound
	}

	if profile.Status == domain.StatusInactive {
		if err := u.creds.SignOut(ctx, s.AccessToken); err != nil {
			u.log.Warn("revoke failed for inactive account", "user_id", s.Identity.ID, "error", err)
		}
		return nil, domain.ErrInactiveAccount
	}

	if u.tracker != nil {
		_ = u.tracker.ClearAttempts(ctx, email, ip)
	}

	return &domain.LoginResult{Session: s, Profile: profile}, nil
}

// Register creates the Supabase identity, then writes the profile row with
// status pending. The profile write is best-effort: a failure after the
// identity exists is logged and tolerated, because the backend trigger may
// create the row on its own.
func (u *authUsecase) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, error) {
	identity, err := u.creds.SignUp(ctx, email, password, domain.SignupMetadata{Name: name, Role: role})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = u.profiles.Create(ctx, &domain.Profile{
		ID:        identity.ID,
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		u.log.Warn("profile insert failed after signup; relying on backend trigger",
			"user_id", identity.ID, "error", err)
	}

	return identity, nil
}

// CreateSuperadmin is idempotent per email and, unlike Register, treats a
// profile-insert failure as fatal: there is no trigger to fall back on for
// pre-approved accounts.
func (u *authUsecase) CreateSuperadmin(ctx context.Context, email, password, name string) (*domain.Profile, error) {
	existing, _, err := u.profiles.Fetch(ctx, domain.ProfileFilter{
		Role:  domain.RoleSuperadmin,
		Email: email,
	}, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrSuperadminExists
	}

	identity, err := u.creds.SignUp(ctx, email, password, domain.SignupMetadata{Name: name, Role: domain.RoleSuperadmin})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	profile := &domain.Profile{
		ID:        identity.ID,
		Name:      name,
		Email:     email,
		Role:      domain.RoleSuperadmin,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.profiles.Create(ctx, profile); err != nil {
		u.log.Error("superadmin profile insert failed after identity creation",
			"user_id", identity.ID, "error", err)
		return nil, err
	}

	return profile, nil
}

func (u *authUsecase) Logout(ctx context.Context, accessToken string) error {
	return u.creds.SignOut(ctx, accessToken)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := u.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

// clientIP is carried through the context by the delivery layer; an empty
// value simply disables IP-scoped tracking.
type ctxIPKey struct{}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxIPKey{}, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ctxIPKey{}).(string)
	return ip
}
