// Package metadata looks up game records on IGDB to produce reference links
// for manual price research. IGDB authenticates through Twitch
// client-credentials tokens, cached until shortly before expiry.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAuthURL = "https://id.twitch.tv/oauth2/token"
	defaultBaseURL = "https://api.igdb.com/v4"

	httpTimeout  = 15 * time.Second
	expiryMargin = 60 * time.Second
	maxLinks     = 6
	queryLimit   = 10
)

// ErrNotConfigured indicates IGDB credentials are missing.
var ErrNotConfigured = errors.New("metadata credentials not configured")

// Client queries the IGDB games endpoint.
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	authURL      string
	baseURL      string
	logger       *slog.Logger
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseURL overrides the IGDB API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithAuthURL overrides the Twitch token endpoint.
func WithAuthURL(authURL string) Option {
	return func(c *Client) {
		if authURL != "" {
			c.authURL = authURL
		}
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a metadata client. Empty credentials yield a client whose
// Configured method reports false.
func New(clientID, clientSecret string, opts ...Option) *Client {
	client := &Client{
		http:         resty.New().SetTimeout(httpTimeout),
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		authURL:      defaultAuthURL,
		baseURL:      defaultBaseURL,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"grant_type":    "client_credentials",
		}).
		SetResult(&payload).
		Post(c.authURL)
	if err != nil {
		return "", fmt.Errorf("request twitch token: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("twitch token endpoint returned %d", resp.StatusCode())
	}
	if payload.AccessToken == "" || payload.ExpiresIn <= 0 {
		return "", errors.New("twitch token endpoint returned empty token")
	}

	c.mu.Lock()
	c.token = payload.AccessToken
	c.expiresAt = c.now().Add(time.Duration(payload.ExpiresIn)*time.Second - expiryMargin)
	c.mu.Unlock()
	return payload.AccessToken, nil
}

type game struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Cover struct {
		URL string `json:"url"`
	} `json:"cover"`
	Platforms []struct {
		Name string `json:"name"`
	} `json:"platforms"`
	Websites []struct {
		URL      string `json:"url"`
		Category int    `json:"category"`
	} `json:"websites"`
}

// Result describes the best IGDB match for a lookup, with enough context for
// a human to verify it: the matched name, its platforms, cover art, and up to
// 6 website links collected across the top matches.
type Result struct {
	Name           string
	Platforms      []string
	CoverURL       string
	ReferenceLinks []string
}

// Lookup searches IGDB for a title and returns the best match plus reference
// links, or nil when nothing matches. Platform is folded into the search
// query when given.
func (c *Client) Lookup(ctx context.Context, title, platform string) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("metadata: title must not be empty")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	search := title
	if platform = strings.TrimSpace(platform); platform != "" {
		search = title + " " + platform
	}
	search = strings.ReplaceAll(search, `"`, "")
	body := fmt.Sprintf("search %q; fields name,cover.url,platforms.name,websites.url,websites.category; limit %d;", search, queryLimit)

	var games []game
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Client-ID", c.clientID).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&games).
		Post(c.baseURL + "/games")
	if err != nil {
		return nil, fmt.Errorf("igdb search: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("igdb search returned %d", resp.StatusCode())
	}
	if len(games) == 0 {
		return nil, nil
	}

	result := &Result{
		Name:     games[0].Name,
		CoverURL: coverURL(games[0].Cover.URL),
	}
	for _, p := range games[0].Platforms {
		if name := strings.TrimSpace(p.Name); name != "" {
			result.Platforms = append(result.Platforms, name)
		}
	}

	seen := make(map[string]struct{})
	for _, match := range games {
		for _, site := range match.Websites {
			url := strings.TrimSpace(site.URL)
			if url == "" {
				continue
			}
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			result.ReferenceLinks = append(result.ReferenceLinks, url)
			if len(result.ReferenceLinks) >= maxLinks {
				c.logger.Debug("reference links capped", slog.String("title", title))
				return result, nil
			}
		}
	}
	return result, nil
}

// ReferenceLinks searches IGDB for a title and returns website links from the
// best matches, deduplicated and capped at 6.
func (c *Client) ReferenceLinks(ctx context.Context, title, platform string) ([]string, error) {
	result, err := c.Lookup(ctx, title, platform)
	if err != nil || result == nil {
		return nil, err
	}
	return result.ReferenceLinks, nil
}

// coverURL upgrades IGDB's protocol-relative thumbnail URLs to absolute
// cover-size URLs.
func coverURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return strings.Replace(url, "t_thumb", "t_cover_big", 1)
}
