package explorer

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/imroc/req"

	"asset-aggregator/ratelimit"
	"asset-aggregator/tool"
)

// Client block explorer transaction API
type Client struct {
	baseURL string
	apiKey  string
	http    *req.Req
	limiter ratelimit.Limiter
}

// NewClient limiter may be nil
func NewClient(baseURL, apiKey string, timeout time.Duration, limiter ratelimit.Limiter) *Client {
	if limiter == nil {
		limiter = ratelimit.Unlimited
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    tool.NewClient(timeout),
		limiter: limiter,
	}
}

// BaseURL explorer root in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchTxn raw transaction document; non-2xx answers come back as *tool.StatusError
func (c *Client) FetchTxn(ctx context.Context, hash string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["x-api-key"] = c.apiKey
	}
	return tool.GetBytes(ctx, c.http, c.baseURL+"/api/txn/"+url.PathEscape(hash), headers)
}
