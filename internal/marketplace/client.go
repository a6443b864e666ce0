package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAuthURL = "https://api.ebay.com/identity/v1/oauth2/token"
	defaultBaseURL = "https://api.ebay.com/buy/browse/v1"

	oauthScope   = "https://api.ebay.com/oauth/api_scope"
	resultLimit  = 50
	httpTimeout  = 15 * time.Second
	marketplaceX = "EBAY_US"
)

// ErrNotConfigured indicates marketplace credentials are missing.
var ErrNotConfigured = errors.New("marketplace credentials not configured")

// Condition selects which listing conditions a price search covers.
type Condition string

const (
	// ConditionUsed covers used, very good and good condition listings.
	ConditionUsed Condition = "used"
	// ConditionNew covers new listings only.
	ConditionNew Condition = "new"
)

func (c Condition) ids() string {
	if c == ConditionNew {
		return "{1000}"
	}
	return "{3000|4000|5000}"
}

// Client talks to the eBay Browse API.
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	authURL      string
	baseURL      string
	logger       *slog.Logger
	tokens       tokenCache
	now          func() time.Time
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

// WithBaseURL overrides the Browse API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithAuthURL overrides the OAuth token endpoint.
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

// New creates a marketplace client. Empty credentials yield a client whose
// Configured method reports false; calls then fail with ErrNotConfigured.
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

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.get(c.clientID, c.now()); ok {
		return token, nil
	}

	var payload tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      oauthScope,
		}).
		SetResult(&payload).
		Post(c.authURL)
	if err != nil {
		return "", fmt.Errorf("request access token: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode())
	}
	if payload.AccessToken == "" || payload.ExpiresIn <= 0 {
		return "", errors.New("token endpoint returned empty token")
	}

	c.tokens.set(c.clientID, payload.AccessToken, time.Duration(payload.ExpiresIn)*time.Second, c.now())
	return payload.AccessToken, nil
}

type searchResponse struct {
	ItemSummaries []struct {
		Title string `json:"title"`
		Price struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"price"`
	} `json:"itemSummaries"`
	Total int `json:"total"`
}

// SearchPrices returns the USD prices of current listings matching the query
// in the given condition, at most 50 values. An expired token is refreshed
// and the search retried once.
func (c *Client) SearchPrices(ctx context.Context, query string, condition Condition) ([]float64, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("marketplace: query must not be empty")
	}

	prices, retry, err := c.search(ctx, query, condition)
	if retry {
		c.tokens.invalidate()
		prices, _, err = c.search(ctx, query, condition)
	}
	return prices, err
}

func (c *Client) search(ctx context.Context, query string, condition Condition) ([]float64, bool, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, false, err
	}

	var payload searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-EBAY-C-MARKETPLACE-ID", marketplaceX).
		SetQueryParams(map[string]string{
			"q":      query,
			"filter": "conditionIds:" + condition.ids() + ",priceCurrency:USD",
			"limit":  strconv.Itoa(resultLimit),
		}).
		SetResult(&payload).
		Get(c.baseURL + "/item_summary/search")
	if err != nil {
		return nil, false, fmt.Errorf("marketplace search: %w", err)
	}
	if resp.StatusCode() == 401 {
		return nil, true, fmt.Errorf("marketplace search unauthorized")
	}
	if !resp.IsSuccess() {
		return nil, false, fmt.Errorf("marketplace search returned %d", resp.StatusCode())
	}

	prices := make([]float64, 0, len(payload.ItemSummaries))
	for _, item := range payload.ItemSummaries {
		if item.Price.Currency != "" && item.Price.Currency != "USD" {
			continue
		}
		value, err := strconv.ParseFloat(item.Price.Value, 64)
		if err != nil || value <= 0 {
			continue
		}
		prices = append(prices, value)
	}

	c.logger.Debug("marketplace search complete",
		slog.String("query", query),
		slog.String("condition", string(condition)),
		slog.Int("prices", len(prices)))
	return prices, false, nil
}
