package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/imroc/req"
)

// ErrBodyTooLarge response body exceeded the caller's limit
var ErrBodyTooLarge = errors.New("response body too large")

// DefaultTimeout bounds every outbound call made through the shared client
const DefaultTimeout = 15 * time.Second

var client = newClient(DefaultTimeout)

func newClient(timeout time.Duration) *req.Req {
	r := req.New()
	r.SetTimeout(timeout)
	return r
}

// NewClient returns a req client with its own timeout
func NewClient(timeout time.Duration) *req.Req {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return newClient(timeout)
}

// GetBytes issues a GET and returns the body of a 2xx response.
// Any other status is reported as *StatusError.
func GetBytes(ctx context.Context, r *req.Req, url string, headers map[string]string) ([]byte, error) {
	if r == nil {
		r = client
	}
	resp, err := r.Get(url, req.Header(headers), ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	body, err := resp.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}
	if code := resp.Response().StatusCode; code < http.StatusOK || code >= http.StatusMultipleChoices {
		return body, &StatusError{StatusCode: code, URL: url, Body: truncate(body, 256)}
	}
	return body, nil
}

// GetLimited is GetBytes reading at most limit bytes of the body
func GetLimited(ctx context.Context, r *req.Req, url string, headers map[string]string, limit int64) ([]byte, error) {
	if r == nil {
		r = client
	}
	resp, err := r.Get(url, req.Header(headers), ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	httpResp := resp.Response()
	defer httpResp.Body.Close()

	var body io.Reader = httpResp.Body
	if limit > 0 {
		body = io.LimitReader(httpResp.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}
	if code := httpResp.StatusCode; code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: code, URL: url, Body: truncate(data, 256)}
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

// PostJSON POST a JSON body and return the 2xx response body
func PostJSON(ctx context.Context, r *req.Req, url string, payload interface{}, headers map[string]string) ([]byte, error) {
	if r == nil {
		r = client
	}
	resp, err := r.Post(url, req.Header(headers), req.BodyJSON(payload), ctx)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	body, err := resp.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}
	if code := resp.Response().StatusCode; code < http.StatusOK || code >= http.StatusMultipleChoices {
		return body, &StatusError{StatusCode: code, URL: url, Body: truncate(body, 256)}
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
