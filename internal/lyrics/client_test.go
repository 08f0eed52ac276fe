package lyrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"tunedeck/internal/core"
)

type fakeLRCLIB struct {
	getBody    string
	searchBody string

	gets     atomic.Int32
	searches atomic.Int32
	lastGet  atomic.Value
}

func (f *fakeLRCLIB) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get", func(w http.ResponseWriter, r *http.Request) {
		f.gets.Add(1)
		f.lastGet.Store(r.URL.Query())
		if f.getBody == "" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(f.getBody))
	})
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		f.searches.Add(1)
		if f.searchBody == "" {
			_, _ = w.Write([]byte("[]"))
			return
		}
		_, _ = w.Write([]byte(f.searchBody))
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeLRCLIB) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(4, zap.NewNop(), WithBaseURL(srv.URL+"/api"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestClient_FetchExact(t *testing.T) {
	fake := &fakeLRCLIB{getBody: `{"trackName":"Yesterday","artistName":"The Beatles","duration":125,"syncedLyrics":"[00:01.00] Yesterday"}`}
	client := newTestClient(t, fake)

	lyrics, err := client.Fetch(context.Background(), "Yesterday - Remastered 2009", "The Beatles", 125400*time.Millisecond)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !lyrics.Synced || len(lyrics.Lines) != 1 || lyrics.Lines[0].Text != "Yesterday" {
		t.Errorf("Fetch() = %+v, expected one synced line", lyrics)
	}

	query := fake.lastGet.Load().(url.Values)
	if got := query.Get("track_name"); got != "Yesterday" {
		t.Errorf("track_name = %q, expected Yesterday", got)
	}
	if got := query.Get("duration"); got != "125" {
		t.Errorf("duration = %q, expected 125", got)
	}
	if fake.searches.Load() != 0 {
		t.Error("Search should not run after an exact match")
	}
}

func TestClient_FetchFallsBackToSearch(t *testing.T) {
	fake := &fakeLRCLIB{searchBody: `[
		{"trackName":"Something Else","artistName":"Nobody","duration":300,"syncedLyrics":"[00:01.00] wrong"},
		{"trackName":"Hey Jude","artistName":"The Beatles","duration":431,"plainLyrics":"Hey Jude\ndon't make it bad"},
		{"trackName":"Hey Jude","artistName":"The Beatles","duration":431,"syncedLyrics":"[00:02.00] Hey Jude\n[00:05.00] don't make it bad"}
	]`}
	client := newTestClient(t, fake)

	lyrics, err := client.Fetch(context.Background(), "Hey Jude", "The Beatles", 431*time.Second)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !lyrics.Synced || len(lyrics.Lines) != 2 {
		t.Errorf("Fetch() = %+v, expected the synced match", lyrics)
	}
	if fake.gets.Load() != 1 || fake.searches.Load() != 1 {
		t.Errorf("Calls = %d gets, %d searches, expected 1 and 1", fake.gets.Load(), fake.searches.Load())
	}
}

func TestClient_FetchPlainOnly(t *testing.T) {
	fake := &fakeLRCLIB{searchBody: `[{"trackName":"Hey Jude","artistName":"The Beatles","duration":431,"plainLyrics":"Hey Jude\ndon't make it bad"}]`}
	client := newTestClient(t, fake)

	lyrics, err := client.Fetch(context.Background(), "Hey Jude", "The Beatles", 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if lyrics.Synced || len(lyrics.Lines) != 2 {
		t.Errorf("Fetch() = %+v, expected two unsynced lines", lyrics)
	}
}

func TestClient_FetchNotFound(t *testing.T) {
	fake := &fakeLRCLIB{searchBody: `[{"trackName":"Other","artistName":"Band","duration":100,"syncedLyrics":"[00:01.00] x"}]`}
	client := newTestClient(t, fake)

	_, err := client.Fetch(context.Background(), "Hey Jude", "The Beatles", 431*time.Second)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, expected ErrNotFound", err)
	}
}

func TestClient_ForItemCaches(t *testing.T) {
	fake := &fakeLRCLIB{getBody: `{"syncedLyrics":"[00:01.00] cached"}`}
	client := newTestClient(t, fake)
	item := core.Item{ID: "t1", Name: "Song", Artists: []core.Artist{{Name: "Band"}}}

	for range 3 {
		if _, err := client.ForItem(context.Background(), item); err != nil {
			t.Fatalf("ForItem() error = %v", err)
		}
	}
	if got := fake.gets.Load(); got != 1 {
		t.Errorf("Gets = %d, expected 1", got)
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(4, zap.NewNop(), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.Fetch(context.Background(), "a", "b", 0); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, expected a server error", err)
	}
}
