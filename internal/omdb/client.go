package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Rating carries the parsed fields of one upstream lookup. Every field is
// independently nullable: a partial or unmatched payload yields nils, never an
// error, so enrichment can still store a snapshot.
type Rating struct {
	IMDBScore *float64
	IMDBVotes *int64
	RTScore   *float64
}

// Client defines the contract for querying the upstream rating API.
type Client interface {
	Fetch(ctx context.Context, title string, year int) (Rating, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewHTTPClient constructs a rate-limited HTTP rating client. The free tier of
// the upstream API has a daily request cap, so requestsPerSecond should stay
// conservative.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, requestsPerSecond int, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Fetch looks up a rating by title and release year. Transport failures and
// non-200 responses are hard errors; anything wrong inside a 200 payload
// degrades to nil fields.
func (c *HTTPClient) Fetch(ctx context.Context, title string, year int) (Rating, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Rating{}, fmt.Errorf("omdb rate limit wait: %w", err)
	}

	endpoint := *c.baseURL
	q := endpoint.Query()
	q.Set("t", title)
	q.Set("y", strconv.Itoa(year))
	q.Set("apikey", c.apiKey)
	// url.Values.Encode writes spaces as '+', which is what upstream expects.
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Rating{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Rating{}, fmt.Errorf("omdb request for %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("omdb: unexpected status %d for title %q", resp.StatusCode, title)
		return Rating{}, fmt.Errorf("omdb: upstream returned %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rating{}, fmt.Errorf("decode omdb response: %w", err)
	}
	return convertToRating(payload), nil
}

type apiResponse struct {
	ImdbRating string      `json:"imdbRating"`
	ImdbVotes  string      `json:"imdbVotes"`
	Ratings    []apiSource `json:"Ratings"`
}

type apiSource struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// convertToRating parses each field on its own: "N/A", absent, or otherwise
// unparseable values become nil rather than failing the lookup.
func convertToRating(payload apiResponse) Rating {
	var rating Rating

	if score, err := strconv.ParseFloat(payload.ImdbRating, 64); err == nil {
		rating.IMDBScore = &score
	}

	cleaned := strings.ReplaceAll(payload.ImdbVotes, ",", "")
	if votes, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		rating.IMDBVotes = &votes
	}

	// The second entry of the Ratings array is the Rotten Tomatoes source,
	// formatted as a percentage string.
	if len(payload.Ratings) > 1 {
		value := strings.TrimSuffix(payload.Ratings[1].Value, "%")
		if score, err := strconv.ParseFloat(value, 64); err == nil {
			rating.RTScore = &score
		}
	}

	return rating
}
