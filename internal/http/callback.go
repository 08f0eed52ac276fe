package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// ExchangeFunc trades an authorization code for a token.
type ExchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)

type callbackResult struct {
	token *oauth2.Token
	err   error
}

// CallbackHandler serves one OAuth redirect. Later requests are rejected.
type CallbackHandler struct {
	exchange ExchangeFunc
	state    string
	results  chan callbackResult
	once     sync.Once

	mu  sync.Mutex
	hit bool
}

// NewCallbackHandler expects the redirect to carry state, a random value
// the login generated.
func NewCallbackHandler(state string, exchange ExchangeFunc) *CallbackHandler {
	return &CallbackHandler{
		exchange: exchange,
		state:    state,
		results:  make(chan callbackResult, 1),
	}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.send(callbackResult{err: errors.New("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.send(callbackResult{err: fmt.Errorf("authorization failed: %s - %s",
			query.Get("error"), query.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchange(r.Context(), code)
	if err != nil {
		h.send(callbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}
	h.send(callbackResult{token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>tunedeck</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; color: #fff; }
        h1 { color: #1DB954; }
    </style>
</head>
<body>
    <div>
        <h1>Logged in</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>`))
}

func (h *CallbackHandler) send(result callbackResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Wait blocks until the redirect arrives or ctx ends. It has the shape of
// spotify.CallbackWaiter.
func (h *CallbackHandler) Wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case result, ok := <-h.results:
		if !ok {
			return nil, errors.New("callback already consumed")
		}
		return result.token, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
