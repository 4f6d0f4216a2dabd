package metadata

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/imroc/req"

	"asset-aggregator/storage"
	"asset-aggregator/tool"
)

var (
	ErrEmptyURI         = errors.New("empty metadata uri")
	ErrUnsupportedURI   = errors.New("unsupported metadata uri")
	ErrMalformedDataURI = errors.New("malformed data uri")
	ErrNotObject        = errors.New("metadata is not a json object")
	ErrTooLarge         = errors.New("metadata document too large")
)

// Fetcher loads token metadata documents from inline data URIs, HTTP gateways and buckets
type Fetcher struct {
	gateway  Gateway
	client   *req.Req
	timeout  time.Duration
	maxBytes int64
	stores   map[string]storage.Storage
}

// NewFetcher timeout bounds each remote fetch; stores answer bucket schemes (s3://, oss://)
func NewFetcher(gateway Gateway, timeout time.Duration, maxBytes int64, stores ...storage.Storage) *Fetcher {
	if timeout <= 0 {
		timeout = 7 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	f := &Fetcher{
		gateway:  gateway,
		client:   tool.NewClient(timeout),
		timeout:  timeout,
		maxBytes: maxBytes,
		stores:   map[string]storage.Storage{},
	}
	for _, s := range stores {
		if s != nil {
			f.stores[s.Scheme()] = s
		}
	}
	return f
}

// Load returns the parsed JSON object behind uri
func (f *Fetcher) Load(ctx context.Context, uri string) (map[string]any, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, ErrEmptyURI
	}

	var (
		body []byte
		err  error
	)
	switch {
	case strings.HasPrefix(strings.ToLower(uri), "data:"):
		body, err = decodeDataURI(uri)
	default:
		if scheme, bucket, key, ok := BucketRef(uri); ok {
			if store, found := f.stores[scheme]; found {
				if scheme == "file" {
					key = bucket + "/" + key
				}
				body, err = f.fromStore(ctx, store, key)
				break
			}
		}
		body, err = f.fromHTTP(ctx, f.gateway.NormalizeURI(uri))
	}
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBytes {
		return nil, ErrTooLarge
	}
	return parseObject(body)
}

func (f *Fetcher) fromHTTP(ctx context.Context, target string) ([]byte, error) {
	lower := strings.ToLower(target)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURI, target)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := tool.GetLimited(ctx, f.client, target, map[string]string{"Accept": "application/json"}, f.maxBytes)
	if errors.Is(err, tool.ErrBodyTooLarge) {
		return nil, ErrTooLarge
	}
	return body, err
}

func (f *Fetcher) fromStore(ctx context.Context, store storage.Storage, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	body, err := storage.ReadLimited(ctx, store, key, f.maxBytes)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, ErrTooLarge
	}
	return body, err
}

// decodeDataURI supports base64 and percent-encoded payloads
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, ErrMalformedDataURI
	}
	if strings.Contains(strings.ToLower(header), ";base64") {
		payload = strings.TrimSpace(payload)
		for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
			if b, err := enc.DecodeString(payload); err == nil {
				return b, nil
			}
		}
		return nil, ErrMalformedDataURI
	}
	if unescaped, err := url.PathUnescape(payload); err == nil {
		return []byte(unescaped), nil
	}
	return []byte(payload), nil
}

func parseObject(body []byte) (map[string]any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}
