package spotify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"tunedeck/internal/core"
)

type countingMetrics struct {
	core.NopMetrics
	refreshes atomic.Int32
}

func (m *countingMetrics) RecordTokenRefresh() { m.refreshes.Add(1) }

// fakeAccounts serves both the token endpoint and /v1/me. Only validToken is
// accepted by /v1/me.
type fakeAccounts struct {
	validToken string
	srv        *httptest.Server
	grants     []string
}

func newFakeAccounts(t *testing.T, validToken string) *fakeAccounts {
	t.Helper()
	f := &fakeAccounts{validToken: validToken}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		grant := r.PostForm.Get("grant_type")
		f.grants = append(f.grants, grant)
		if grant == "authorization_code" && r.PostForm.Get("code") != "good-code" {
			writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"access_token":"`+f.validToken+`","token_type":"Bearer","refresh_token":"r2","expires_in":3600}`)
	})
	mux.HandleFunc("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.validToken {
			writeJSON(w, http.StatusUnauthorized, `{"error":{"status":401,"message":"The access token expired"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"u1","display_name":"Alice","product":"free"}`)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAccounts) authenticator(store *TokenStore, metrics core.Metrics) *Authenticator {
	cfg := &core.SpotifyConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://127.0.0.1:8888/callback"}
	return NewAuthenticator(cfg, store, zap.NewNop(), metrics,
		WithTransport(http.DefaultTransport),
		WithEndpoint(oauth2.Endpoint{
			AuthURL:   f.srv.URL + "/authorize",
			TokenURL:  f.srv.URL + "/api/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithClientOptions(WithBaseURL(f.srv.URL+"/v1/")),
	)
}

func TestTokenStore(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "nested", "token.json"))

	if _, err := store.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() on missing file error = %v, expected os.ErrNotExist", err)
	}

	if err := store.Save(&oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat() unexpected error: %v", err)
	}
	if info.Mode().Perm() != FilePermission {
		t.Errorf("token file mode = %v, expected %v", info.Mode().Perm(), os.FileMode(FilePermission))
	}

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if token.AccessToken != "a" || token.RefreshToken != "r" {
		t.Errorf("Load() = %+v, expected the saved token", token)
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("Remove() unexpected error: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Errorf("Remove() twice error = %v, expected nil", err)
	}
}

func TestAuthenticator_GetAuth(t *testing.T) {
	t.Run("No saved token", func(t *testing.T) {
		accounts := newFakeAccounts(t, "fresh")
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		_, _, err := accounts.authenticator(store, nil).GetAuth(context.Background())
		if !errors.Is(err, core.ErrLoginRequired) {
			t.Errorf("GetAuth() error = %v, expected ErrLoginRequired", err)
		}
	})

	t.Run("Valid token", func(t *testing.T) {
		accounts := newFakeAccounts(t, "fresh")
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Save(&oauth2.Token{AccessToken: "fresh", TokenType: "Bearer"}); err != nil {
			t.Fatal(err)
		}

		client, user, err := accounts.authenticator(store, nil).GetAuth(context.Background())
		if err != nil {
			t.Fatalf("GetAuth() unexpected error: %v", err)
		}
		if client == nil || user.ID != "u1" {
			t.Errorf("GetAuth() user = %+v, expected u1", user)
		}
		if len(accounts.grants) != 0 {
			t.Errorf("grants = %v, expected no token requests", accounts.grants)
		}
	})

	t.Run("Rejected token is refreshed", func(t *testing.T) {
		accounts := newFakeAccounts(t, "fresh")
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Save(&oauth2.Token{AccessToken: "stale", TokenType: "Bearer", RefreshToken: "r1"}); err != nil {
			t.Fatal(err)
		}
		metrics := &countingMetrics{}

		_, user, err := accounts.authenticator(store, metrics).GetAuth(context.Background())
		if err != nil {
			t.Fatalf("GetAuth() unexpected error: %v", err)
		}
		if user.DisplayName != "Alice" {
			t.Errorf("GetAuth() user = %+v, expected Alice", user)
		}
		if len(accounts.grants) != 1 || accounts.grants[0] != "refresh_token" {
			t.Errorf("grants = %v, expected one refresh", accounts.grants)
		}
		if metrics.refreshes.Load() != 1 {
			t.Errorf("refreshes = %d, expected 1", metrics.refreshes.Load())
		}

		saved, err := store.Load()
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if saved.AccessToken != "fresh" {
			t.Errorf("saved access token = %q, expected fresh", saved.AccessToken)
		}
	})

	t.Run("Rejected token without refresh token", func(t *testing.T) {
		accounts := newFakeAccounts(t, "fresh")
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Save(&oauth2.Token{AccessToken: "stale", TokenType: "Bearer"}); err != nil {
			t.Fatal(err)
		}

		_, _, err := accounts.authenticator(store, nil).GetAuth(context.Background())
		if !errors.Is(err, core.ErrLoginRequired) {
			t.Errorf("GetAuth() error = %v, expected ErrLoginRequired", err)
		}
	})
}

func TestAuthenticator_AuthURL(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	auth := NewAuthenticator(&core.SpotifyConfig{ClientID: "id", RedirectURL: "http://127.0.0.1:8888/callback"}, store, zap.NewNop(), nil)

	authURL := auth.AuthURL("state-123")
	for _, want := range []string{"accounts.spotify.com/authorize", "state=state-123", "client_id=id", "user-modify-playback-state", "streaming"} {
		if !strings.Contains(authURL, want) {
			t.Errorf("AuthURL() = %q, missing %q", authURL, want)
		}
	}
}

func TestAuthenticator_Login(t *testing.T) {
	t.Run("Pasted code", func(t *testing.T) {
		accounts := newFakeAccounts(t, "fresh")
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		auth := accounts.authenticator(store, nil)

		var opened string
		token, err := auth.Login(context.Background(), LoginOptions{
			State:  "s",
			Input:  strings.NewReader("good-code\n"),
			Output: io.Discard,
			OpenURL: func(u string) error {
				opened = u
				return nil
			},
		})
		if err != nil {
			t.Fatalf("Login() unexpected error: %v", err)
		}
		if token.AccessToken != "fresh" {
			t.Errorf("Login() token = %q, expected fresh", token.AccessToken)
		}
		if !strings.Contains(opened, "state=s") {
			t.Errorf("opened URL = %q, expected the consent page", opened)
		}
		if saved, err := store.Load(); err != nil || saved.AccessToken != "fresh" {
			t.Errorf("saved token = %+v (%v), expected fresh", saved, err)
		}
	})

	t.Run("Callback wins when input is empty", func(t *testing.T) {
		accounts := newFakeAccounts(t, "fresh")
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		auth := accounts.authenticator(store, nil)

		token, err := auth.Login(context.Background(), LoginOptions{
			State: "s",
			Input: strings.NewReader(""),
			Callback: func(context.Context) (*oauth2.Token, error) {
				return &oauth2.Token{AccessToken: "from-callback"}, nil
			},
		})
		if err != nil {
			t.Fatalf("Login() unexpected error: %v", err)
		}
		if token.AccessToken != "from-callback" {
			t.Errorf("Login() token = %q, expected from-callback", token.AccessToken)
		}
	})

	t.Run("Every source fails", func(t *testing.T) {
		accounts := newFakeAccounts(t, "fresh")
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		auth := accounts.authenticator(store, nil)

		_, err := auth.Login(context.Background(), LoginOptions{
			State: "s",
			Input: strings.NewReader("bad-code\n"),
		})
		if err == nil {
			t.Error("Login() expected an error for a rejected code")
		}
	})

	t.Run("Nothing to wait on", func(t *testing.T) {
		store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
		auth := NewAuthenticator(&core.SpotifyConfig{}, store, zap.NewNop(), nil)
		if _, err := auth.Login(context.Background(), LoginOptions{}); err == nil {
			t.Error("Login() expected an error without a callback or input")
		}
	})
}
