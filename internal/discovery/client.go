package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/leadlens/leadlens/internal/model"
)

var (
	// ErrNoAPIKey is returned when the client is constructed without a key.
	ErrNoAPIKey = errors.New("discovery: no directory API key configured")

	// ErrNoBaseURL is returned when the client is constructed without an
	// endpoint.
	ErrNoBaseURL = errors.New("discovery: no directory base URL configured")
)

// StatusError reports a non-OK response from the directory API.
type StatusError struct {
	// HTTPStatus is the response status code.
	HTTPStatus int

	// APIStatus is the status field of the response body, when present.
	APIStatus string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.APIStatus != "" {
		return fmt.Sprintf("discovery: directory returned status %q (HTTP %d)", e.APIStatus, e.HTTPStatus)
	}
	return fmt.Sprintf("discovery: directory returned HTTP %d", e.HTTPStatus)
}

// Client runs text searches against a places-style business directory API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a directory search client. The base URL points at the
// text-search endpoint; the key is sent as a query parameter.
func NewClient(httpClient *http.Client, baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// searchResponse is the directory's wire shape.
type searchResponse struct {
	Status  string         `json:"status"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	FormattedPhone   string   `json:"formatted_phone_number"`
	Website          string   `json:"website"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
}

// Search runs one text query and returns the raw candidate records, in
// response order. Candidate IDs are left empty; the pipeline assigns them
// at ingest.
func (c *Client) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	endpoint := fmt.Sprintf("%s?query=%s&key=%s", c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery: search %q: %w", query, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-side close error is not actionable

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{HTTPStatus: resp.StatusCode}
		}
		return nil, fmt.Errorf("discovery: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || (body.Status != "" && body.Status != "OK" && body.Status != "ZERO_RESULTS") {
		return nil, &StatusError{HTTPStatus: resp.StatusCode, APIStatus: body.Status}
	}

	candidates := make([]model.Candidate, 0, len(body.Results))
	for _, r := range body.Results {
		candidates = append(candidates, model.Candidate{
			Name:         r.Name,
			Address:      r.FormattedAddress,
			Phone:        r.FormattedPhone,
			Website:      r.Website,
			Rating:       r.Rating,
			ReviewsCount: r.UserRatingsTotal,
			Categories:   r.Types,
		})
	}
	c.logger.Debug("directory search complete", "query", query, "candidates", len(candidates))
	return candidates, nil
}
