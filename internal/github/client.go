// Package github fetches the public GitHub footprint of a candidate.
package github

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL          = "https://api.github.com"
	userAgent       = "spigell/fit-screener"
	acceptJSON      = "application/vnd.github+json"
	acceptRaw       = "application/vnd.github.raw+json"
	apiVersion      = "2022-11-28"
	contentEncoding = "gzip"
	// Max value for repositories per page.
	perPage = 100
	// defaultRequestsPerSecond stays well below the authenticated secondary rate limits.
	defaultRequestsPerSecond = 5
)

var (
	// ErrUserNotFound is returned when the GitHub login does not exist.
	ErrUserNotFound = errors.New("github user not found")

	errNotFound = errors.New("not found")
)

// Client talks to the GitHub REST API.
type Client struct {
	token      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// MaxPages bounds repository pagination.
	MaxPages int
}

// New returns a client. An empty token makes anonymous requests.
func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:   token,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
		MaxPages:  3,
	}
}

// SetRateLimit changes the request rate. A non-positive rate disables limiting.
func (c *Client) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
}

func (c *Client) setHeaders(req *http.Request, accept string) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	return req
}

func (c *Client) request(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// get performs a GET request and returns the decoded body. 404 maps to errNotFound.
func (c *Client) get(ctx context.Context, path string, q url.Values, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL+path, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req, accept)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, fmt.Errorf("github rate limit exceeded, resets at %s", resetTime(resp.Header.Get("X-RateLimit-Reset")))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, target any) error {
	data, err := c.get(ctx, path, q, acceptJSON)
	if err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}

func resetTime(raw string) string {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "unknown"
	}
	return time.Unix(secs, 0).UTC().Format(time.RFC3339)
}
