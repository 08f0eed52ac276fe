package spotify

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"tunedeck/internal/core"
)

// rateLimitedTransport paces every Web API request through a shared limiter.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport wraps base (http.DefaultTransport when nil) so that
// at most rps requests per second, with the given burst, reach Spotify.
func NewRateLimitedTransport(base http.RoundTripper, rps, burst int) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if rps <= 0 {
		rps = core.DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = core.DefaultRequestBurst
	}
	return &rateLimitedTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}
