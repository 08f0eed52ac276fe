package spotify

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"tunedeck/internal/core"
)

const (
	// FilePermission is the permission for token files
	FilePermission = 0600
)

// Scopes are the permissions requested at login.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeStreaming,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeUserFollowRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadRecentlyPlayed,
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

// TokenStore keeps the OAuth token on disk between runs.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

func (s *TokenStore) Path() string {
	return s.path
}

// Load returns the saved token. A missing file yields an error wrapping os.ErrNotExist.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	if tokenData.Token == nil {
		return nil, fmt.Errorf("token file %s holds no token: %w", s.path, os.ErrNotExist)
	}

	return tokenData.Token, nil
}

func (s *TokenStore) Save(token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(TokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	return os.WriteFile(s.path, data, FilePermission)
}

// Remove deletes the saved token. Removing a missing token is not an error.
func (s *TokenStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// persistingTokenSource saves every new access token the wrapped source hands out.
type persistingTokenSource struct {
	base    oauth2.TokenSource
	store   *TokenStore
	metrics core.Metrics
	logger  *zap.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if token.AccessToken == p.last {
		return token, nil
	}
	if p.last != "" {
		p.metrics.RecordTokenRefresh()
		p.logger.Debug("Access token refreshed", zap.Time("expiry", token.Expiry))
	}
	p.last = token.AccessToken

	if err := p.store.Save(token); err != nil {
		p.logger.Warn("Failed to save token", zap.Error(err))
	}
	return token, nil
}

// Authenticator owns the OAuth configuration and builds API clients.
type Authenticator struct {
	config  *oauth2.Config
	store   *TokenStore
	logger  *zap.Logger
	metrics core.Metrics

	// transport carries API requests; OAuth exchanges use the context client.
	transport http.RoundTripper
	clientOpt []Option
}

// AuthOption customizes an Authenticator.
type AuthOption func(*Authenticator)

// WithTransport sets the round tripper API requests go through.
func WithTransport(rt http.RoundTripper) AuthOption {
	return func(a *Authenticator) {
		a.transport = rt
	}
}

// WithEndpoint overrides the accounts service endpoints.
func WithEndpoint(endpoint oauth2.Endpoint) AuthOption {
	return func(a *Authenticator) {
		a.config.Endpoint = endpoint
	}
}

// WithClientOptions forwards options to every Client built.
func WithClientOptions(opts ...Option) AuthOption {
	return func(a *Authenticator) {
		a.clientOpt = append(a.clientOpt, opts...)
	}
}

func NewAuthenticator(config *core.SpotifyConfig, store *TokenStore, logger *zap.Logger, metrics core.Metrics, opts ...AuthOption) *Authenticator {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	a := &Authenticator{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		store:     store,
		logger:    logger,
		metrics:   metrics,
		transport: NewRateLimitedTransport(nil, config.RequestsPerSecond, config.RequestBurst),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AuthURL returns the consent page URL for the given state.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return token, nil
}

// Client builds an API client whose token refreshes are persisted.
func (a *Authenticator) Client(ctx context.Context, token *oauth2.Token) *Client {
	source := &persistingTokenSource{
		base:    a.config.TokenSource(ctx, token),
		store:   a.store,
		metrics: a.metrics,
		logger:  a.logger,
		last:    token.AccessToken,
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: source,
			Base:   a.transport,
		},
	}
	return NewClient(httpClient, a.logger, a.metrics, a.clientOpt...)
}

// GetAuth restores the saved session. A token the API rejects is refreshed
// once; when that is impossible ErrLoginRequired is returned.
func (a *Authenticator) GetAuth(ctx context.Context) (*Client, *core.User, error) {
	token, err := a.store.Load()
	if err != nil {
		a.logger.Info("No saved token found", zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", core.ErrLoginRequired, err)
	}

	client := a.Client(ctx, token)
	user, err := client.CurrentUser(ctx)
	if err == nil {
		return client, user, nil
	}

	if token.RefreshToken == "" {
		a.logger.Warn("Saved token rejected and no refresh token available", zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", core.ErrLoginRequired, err)
	}

	a.logger.Info("Saved token rejected, refreshing", zap.Error(err))
	refreshed, err := a.refresh(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrLoginRequired, err)
	}

	client = a.Client(ctx, refreshed)
	user, err = client.CurrentUser(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrLoginRequired, err)
	}
	return client, user, nil
}

func (a *Authenticator) refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	// An empty access token forces the source to hit the token endpoint.
	refreshed, err := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	a.metrics.RecordTokenRefresh()
	if err := a.store.Save(refreshed); err != nil {
		a.logger.Warn("Failed to save refreshed token", zap.Error(err))
	}
	return refreshed, nil
}

// CallbackWaiter blocks until the redirect handler produced a token.
type CallbackWaiter func(ctx context.Context) (*oauth2.Token, error)

// LoginOptions wires the interactive parts of a login.
type LoginOptions struct {
	State string
	// Callback waits for the local /callback handler; nil disables it.
	Callback CallbackWaiter
	// Input is read for a pasted authorization code; nil disables it.
	Input io.Reader
	Output io.Writer
	// OpenURL opens the consent page in a browser; failures are only logged.
	OpenURL func(string) error
}

// Login runs the authorization code flow. The first of the callback and a
// code pasted on Input wins. The token is saved before returning.
func (a *Authenticator) Login(ctx context.Context, opts LoginOptions) (*oauth2.Token, error) {
	if opts.Callback == nil && opts.Input == nil {
		return nil, errors.New("login needs a callback or an input to read the code from")
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	authURL := a.AuthURL(opts.State)
	fmt.Fprintf(out, "Please visit the following URL to authorize the application:\n%s\n", authURL)
	if opts.OpenURL != nil {
		if err := opts.OpenURL(authURL); err != nil {
			a.logger.Debug("Could not open browser", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		token *oauth2.Token
		err   error
	}
	results := make(chan result, 2)
	pending := 0

	if opts.Callback != nil {
		pending++
		go func() {
			token, err := opts.Callback(ctx)
			results <- result{token: token, err: err}
		}()
	}
	if opts.Input != nil {
		pending++
		fmt.Fprint(out, "Or paste the authorization code: ")
		go func() {
			code, err := readCode(opts.Input)
			if err != nil {
				results <- result{err: err}
				return
			}
			token, err := a.Exchange(ctx, code)
			results <- result{token: token, err: err}
		}()
	}

	// A failing source only ends the login once every source has failed.
	var res result
	for res.token == nil && pending > 0 {
		select {
		case res = <-results:
			pending--
			if res.err != nil {
				a.logger.Debug("Login source failed", zap.Error(res.err))
				res.token = nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if res.token == nil {
		if res.err == nil {
			res.err = errors.New("no token received")
		}
		return nil, res.err
	}

	if err := a.store.Save(res.token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	a.logger.Info("OAuth flow completed successfully")
	return res.token, nil
}

// Logout forgets the saved session.
func (a *Authenticator) Logout() error {
	return a.store.Remove()
}

func readCode(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	code := strings.TrimSpace(line)
	if code != "" {
		return code, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	return "", errors.New("empty authorization code")
}
