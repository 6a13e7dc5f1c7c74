package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spotterm/spotterm/internal/server"
	"github.com/spotterm/spotterm/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultWaitTimeout bounds how long the one-shot listener waits for
	// the user to finish the consent screen.
	DefaultWaitTimeout = 2 * time.Minute
)

// DefaultScopes covers playback status reads and playback control.
var DefaultScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// Manager owns the credential lifecycle: it produces a valid bearer
// credential on demand, refreshing a persisted record when possible and
// falling back to the full browser-based authorization flow otherwise.
type Manager struct {
	config      *oauth2.Config
	store       *Store
	client      *http.Client
	logger      *log.Logger
	output      io.Writer
	listenAddr  string
	openBrowser func(string) error
	waitTimeout time.Duration
}

// ManagerOpts contains configuration options for creating a [Manager].
type ManagerOpts struct {
	Spotify     shared.SpotifyConfig
	Server      shared.ServerConfig
	TokenPath   string
	Scopes      []string
	Logger      *log.Logger
	Output      io.Writer
	HTTPClient  *http.Client
	OpenBrowser func(string) error
	WaitTimeout time.Duration

	// AuthURL and TokenURL override the provider endpoints (tests).
	AuthURL  string
	TokenURL string
}

// NewManager creates a Manager from the given options.
func NewManager(opts ManagerOpts) (*Manager, error) {
	if !opts.Spotify.Valid() {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret must be set", shared.ErrMissingCredentials)
	}
	if opts.TokenPath == "" {
		return nil, fmt.Errorf("%w: token path must be set", shared.ErrInvalidConfig)
	}

	if opts.Scopes == nil {
		opts.Scopes = DefaultScopes
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.WaitTimeout == 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.AuthURL == "" {
		opts.AuthURL = spotifyAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}

	config := &oauth2.Config{
		ClientID:     opts.Spotify.ClientID,
		ClientSecret: opts.Spotify.ClientSecret,
		RedirectURL:  opts.Spotify.RedirectURI,
		Scopes:       opts.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  opts.AuthURL,
			TokenURL: opts.TokenURL,
		},
	}

	return &Manager{
		config:      config,
		store:       NewStore(opts.TokenPath),
		client:      opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		listenAddr:  opts.Server.Addr(),
		openBrowser: opts.OpenBrowser,
		waitTimeout: opts.WaitTimeout,
	}, nil
}

// Store exposes the credential store (tests and the auth command).
func (m *Manager) Store() *Store {
	return m.store
}

// Token returns a valid access token, refreshing the persisted record when
// it carries a refresh token and demoting to the full authorization flow on
// any refresh failure. Refresh failure is recoverable; a record that
// refreshed but could not be persisted is not, since a second write would
// fail the same way.
func (m *Manager) Token(ctx context.Context) (string, error) {
	record, err := m.store.Load()
	if err != nil {
		m.logger.Warn("ignoring unreadable credential record", "error", err)
	}

	if record != nil && record.RefreshToken != "" {
		merged, err := m.Refresh(ctx, record)
		if err == nil {
			return merged.AccessToken, nil
		}
		if errors.Is(err, shared.ErrTokenPersist) {
			return "", err
		}
		m.logger.Warn("token refresh failed, starting full authorization", "error", err)
	}

	fresh, err := m.Authorize(ctx)
	if err != nil {
		return "", err
	}

	return fresh.AccessToken, nil
}

// Refresh exchanges the record's refresh token for a new access token,
// merges the response over the old record (preserving the refresh token
// when the provider omits one), and persists the result.
func (m *Manager) Refresh(ctx context.Context, prev *TokenRecord) (*TokenRecord, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {prev.RefreshToken},
		"client_id":     {m.config.ClientID},
		"client_secret": {m.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: token endpoint returned status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}

	var next TokenRecord
	if err := json.NewDecoder(resp.Body).Decode(&next); err != nil {
		return nil, fmt.Errorf("%w: malformed token response: %v", shared.ErrRefreshFailed, err)
	}
	if next.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", shared.ErrRefreshFailed)
	}

	merged := Merge(*prev, next)
	if err := m.store.Save(merged); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenPersist, err)
	}

	m.logger.Info("access token refreshed")
	return &merged, nil
}

// Authorize runs the full browser-based authorization flow: it generates a
// fresh state token, opens the consent URL, blocks on a one-shot loopback
// listener for the redirect, exchanges the code, and persists the record.
//
// This is the one intentionally blocking step in the program; it runs to
// completion before the interactive session starts.
func (m *Manager) Authorize(ctx context.Context) (*TokenRecord, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := m.config.AuthCodeURL(state)
	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(m.logger))
	router.Handler(handler)

	httpServer := &http.Server{Addr: m.listenAddr, Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		m.logger.Info("starting authorization listener", "addr", m.listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	fmt.Fprint(m.output, "→ Opening browser for Spotify authorization...\n")
	if err := m.openBrowser(authURL); err != nil {
		m.logger.Warn("failed to open browser automatically", "error", err)
		fmt.Fprintf(m.output, "⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
	}
	fmt.Fprintf(m.output, "→ Waiting for authorization (%s timeout)...\n", m.waitTimeout)

	timeout := time.NewTimer(m.waitTimeout)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("authorization listener error: %w", err)
	case <-timeout.C:
		m.shutdown(httpServer)
		return nil, fmt.Errorf("%w: no authorization callback after %s", shared.ErrTimeout, m.waitTimeout)
	case <-ctx.Done():
		m.shutdown(httpServer)
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthAborted, ctx.Err())
	}

	m.shutdown(httpServer)

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	token, err := m.exchange(ctx, result.Code)
	if err != nil {
		return nil, err
	}

	record := recordFromToken(token)
	if err := m.store.Save(record); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenPersist, err)
	}

	m.logger.Info("authorization complete", "token_file", m.store.Path())
	return &record, nil
}

// exchange trades the authorization code for a token via the provider's
// token endpoint.
func (m *Manager) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)

	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExchangeFailed, err)
	}

	return token, nil
}

func (m *Manager) shutdown(srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		m.logger.Warn("error shutting down authorization listener", "error", err)
	}
}

// recordFromToken converts an exchanged [oauth2.Token] into the persisted
// record shape.
func recordFromToken(token *oauth2.Token) TokenRecord {
	expiresIn := token.ExpiresIn
	if expiresIn == 0 && !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Seconds())
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return TokenRecord{
		AccessToken:  token.AccessToken,
		TokenType:    tokenType,
		ExpiresIn:    expiresIn,
		RefreshToken: token.RefreshToken,
	}
}
