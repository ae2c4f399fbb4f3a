package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

// Client talks to the Supabase GoTrue auth API and doubles as the
// session-change event source. Auth calls made through the client emit
// events to subscribers synchronously, so handlers must not mutate
// subscriber state inline (post follow-up work to a queue instead).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.Mutex
	subs    map[int]func(event domain.AuthEvent, s *domain.Session)
	nextSub int

	tokens TokenStore
}

type Option func(*Client)

// WithTokenStore persists sessions across process restarts so
// GetCurrentSession can restore them via the refresh grant.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(supabaseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(supabaseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		subs:    make(map[int]func(domain.AuthEvent, *domain.Session)),
		tokens:  NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tokenResponse is the GoTrue token grant payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (tr *tokenResponse) session() *domain.Session {
	return &domain.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		Identity: domain.Identity{
			ID:    tr.User.ID,
			Email: tr.User.Email,
		},
	}
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var tr tokenResponse
	status, _, err := c.post(ctx, "/auth/v1/token?grant_type=password", "", body, &tr)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, domain.ErrInvalidCredentials
	}
	if status >= 400 {
		return nil, apperror.New(http.StatusBadGateway, "Login service unavailable", fmt.Errorf("gotrue: status %d", status))
	}

	s := tr.session()
	_ = c.tokens.Save(s)
	c.emit(domain.AuthEventSignedIn, s)
	return s, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data": map[string]interface{}{
			"name": meta.Name,
			"role": meta.Role,
		},
	}

	var resp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	status, upstreamMsg, err := c.post(ctx, "/auth/v1/signup", "", body, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		msg := "Registration failed"
		if upstreamMsg != "" {
			msg = upstreamMsg
		}
		return nil, apperror.BadRequest(msg)
	}

	// GoTrue returns the user either at the top level or nested, depending
	// on whether email confirmation is required.
	id, mail := resp.ID, resp.Email
	if id == "" {
		id, mail = resp.User.ID, resp.User.Email
	}
	if id == "" {
		return nil, apperror.Internal(fmt.Errorf("gotrue: signup returned no user id"))
	}
	return &domain.Identity{ID: id, Email: mail}, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	status, _, err := c.post(ctx, "/auth/v1/logout", accessToken, nil, nil)

	// Local state is cleared no matter what the backend said; a failed
	// revoke must never leave the caller stuck authenticated.
	_ = c.tokens.Clear()
	c.emit(domain.AuthEventSignedOut, nil)

	if err != nil {
		return err
	}
	if status >= 400 && status != http.StatusUnauthorized {
		return apperror.New(http.StatusBadGateway, "Logout failed upstream", fmt.Errorf("gotrue: status %d", status))
	}
	return nil
}

// GetCurrentSession restores the persisted session, refreshing it through
// the refresh grant. Returns (nil, nil) when no session exists or the
// refresh token was rejected.
func (c *Client) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	stored, err := c.tokens.Load()
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.RefreshToken == "" {
		return nil, nil
	}

	if !stored.Expired() {
		return stored, nil
	}

	body := map[string]interface{}{
		"refresh_token": stored.RefreshToken,
	}
	var tr tokenResponse
	status, _, err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", "", body, &tr)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		// Refresh token revoked or expired; the stored session is dead.
		_ = c.tokens.Clear()
		return nil, nil
	}
	if status >= 400 {
		return nil, apperror.New(http.StatusBadGateway, "Session refresh failed", fmt.Errorf("gotrue: status %d", status))
	}

	s := tr.session()
	_ = c.tokens.Save(s)
	c.emit(domain.AuthEventTokenRefreshed, s)
	return s, nil
}

// SubscribeSessionChanges registers a handler for auth events. The initial
// session state is delivered asynchronously shortly after subscribing.
func (c *Client) SubscribeSessionChanges(handler func(event domain.AuthEvent, s *domain.Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = handler
	c.mu.Unlock()

	go func() {
		stored, _ := c.tokens.Load()
		if stored != nil && stored.Expired() {
			stored = nil
		}
		handler(domain.AuthEventInitialSession, stored)
	}()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) emit(event domain.AuthEvent, s *domain.Session) {
	c.mu.Lock()
	handlers := make([]func(domain.AuthEvent, *domain.Session), 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(event, s)
	}
}

// post sends a JSON request and decodes the response into out (when out is
// non-nil and the call succeeded). Transport failures come back as apperror
// with a 502 code; HTTP-level failures are returned via the status code plus
// the upstream error message so callers can apply their own mapping.
func (c *Client) post(ctx context.Context, path, bearer string, body interface{}, out interface{}) (int, string, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", apperror.New(http.StatusBadGateway, "Auth service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := ""
		if m, ok := errResp["msg"].(string); ok {
			msg = m
		} else if m, ok := errResp["error_description"].(string); ok {
			msg = m
		}
		return resp.StatusCode, msg, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", apperror.Internal(fmt.Errorf("gotrue: decode response: %w", err))
		}
	}
	return resp.StatusCode, "", nil
}
