package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"tunedeck/internal/core"
	"tunedeck/pkg/fuzzy"
)

const (
	DefaultBaseURL = "https://lrclib.net/api/"
	// RequestTimeout bounds each LRCLIB call.
	RequestTimeout = 7 * time.Second

	minMatchScore    = 0.5
	maxResponseBytes = 2 << 20
	userAgent        = "tunedeck (https://github.com/tunedeck/tunedeck)"
)

var ErrNotFound = errors.New("lyrics not found")

// Client looks lyrics up on LRCLIB.
type Client struct {
	httpClient *http.Client
	baseURL    string
	normalizer *fuzzy.Normalizer
	cache      *lru.Cache[string, *Lyrics]
	metrics    core.Metrics
	logger     *zap.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/") + "/"
	}
}

func WithMetrics(metrics core.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = metrics
	}
}

func NewClient(cacheSize int, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	if cacheSize <= 0 {
		cacheSize = core.DefaultLyricsCacheSize
	}
	cache, err := lru.New[string, *Lyrics](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create lyrics cache: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: RequestTimeout},
		baseURL:    DefaultBaseURL,
		normalizer: fuzzy.NewNormalizer(),
		cache:      cache,
		metrics:    core.NopMetrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ForItem returns the lyrics of item, cached by its id.
func (c *Client) ForItem(ctx context.Context, item core.Item) (*Lyrics, error) {
	if item.ID != "" {
		if cached, ok := c.cache.Get(item.ID); ok {
			return cached, nil
		}
	}

	lyrics, err := c.Fetch(ctx, item.Name, item.ArtistName(), item.Duration)
	if err != nil {
		return nil, err
	}
	if item.ID != "" {
		c.cache.Add(item.ID, lyrics)
	}
	return lyrics, nil
}

// Fetch asks for an exact match first, then searches and keeps the closest
// result. Synced lyrics win over plain ones.
func (c *Client) Fetch(ctx context.Context, title, artist string, duration time.Duration) (*Lyrics, error) {
	searchTitle := c.normalizer.SearchTitle(title)
	artist = strings.TrimSpace(artist)

	lyrics, err := c.get(ctx, searchTitle, artist, duration)
	if err == nil {
		return lyrics, nil
	}
	c.logger.Debug("Exact lyrics lookup missed",
		zap.String("title", searchTitle),
		zap.String("artist", artist),
		zap.Error(err))

	return c.search(ctx, fuzzy.Candidate{Title: searchTitle, Artist: artist, Duration: duration})
}

func (c *Client) get(ctx context.Context, title, artist string, duration time.Duration) (*Lyrics, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)
	if duration > 0 {
		params.Set("duration", strconv.Itoa(int(duration.Round(time.Second)/time.Second)))
	}

	body, err := c.call(ctx, "get", params)
	if err != nil {
		return nil, err
	}
	result := gjson.ParseBytes(body)
	if lyrics := fromResult(result); lyrics != nil {
		return lyrics, nil
	}
	return nil, ErrNotFound
}

func (c *Client) search(ctx context.Context, want fuzzy.Candidate) (*Lyrics, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(want.Artist+" "+want.Title))

	body, err := c.call(ctx, "search", params)
	if err != nil {
		return nil, err
	}

	var synced, plain []gjson.Result
	gjson.ParseBytes(body).ForEach(func(_, value gjson.Result) bool {
		switch {
		case value.Get("syncedLyrics").String() != "":
			synced = append(synced, value)
		case value.Get("plainLyrics").String() != "":
			plain = append(plain, value)
		}
		return true
	})

	for _, results := range [][]gjson.Result{synced, plain} {
		candidates := make([]fuzzy.Candidate, len(results))
		for i, r := range results {
			candidates[i] = fuzzy.Candidate{
				Title:    r.Get("trackName").String(),
				Artist:   r.Get("artistName").String(),
				Duration: time.Duration(r.Get("duration").Float() * float64(time.Second)),
			}
		}
		if best, score := c.normalizer.Best(want, candidates, minMatchScore); best >= 0 {
			c.logger.Debug("Lyrics search matched",
				zap.String("title", candidates[best].Title),
				zap.Float64("score", score))
			return fromResult(results[best]), nil
		}
	}
	return nil, ErrNotFound
}

func (c *Client) call(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIError("lrclib_" + endpoint)
		return nil, fmt.Errorf("lrclib %s failed: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordAPIError("lrclib_" + endpoint)
		return nil, fmt.Errorf("lrclib %s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read lrclib response: %w", err)
	}
	return body, nil
}

func fromResult(result gjson.Result) *Lyrics {
	if synced := result.Get("syncedLyrics").String(); synced != "" {
		if lines := ParseLRC(synced); len(lines) > 0 {
			return &Lyrics{Lines: lines, Synced: true, Source: "lrclib"}
		}
	}
	if plain := result.Get("plainLyrics").String(); plain != "" {
		return &Lyrics{Lines: ParsePlain(plain), Source: "lrclib"}
	}
	return nil
}
