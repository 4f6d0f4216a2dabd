package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/imroc/req"

	"asset-aggregator/model"
	"asset-aggregator/tool"
)

// RemoteFetcher reads timeline pages from an aggregator over HTTP
type RemoteFetcher struct {
	baseURL string
	client  *req.Req
}

type pageEnvelope struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    *model.TimelinePage `json:"data"`
}

func NewRemoteFetcher(baseURL string, timeout time.Duration) *RemoteFetcher {
	return &RemoteFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  tool.NewClient(timeout),
	}
}

// FetchPage GET /api/v1/assets
func (f *RemoteFetcher) FetchPage(ctx context.Context, q model.PageQuery) (*model.TimelinePage, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(q.Offset, 10))
	params.Set("size", strconv.Itoa(q.Limit))
	if q.SortKey != "" {
		params.Set("sort", q.SortKey)
	}
	if q.SortOrder != "" {
		params.Set("order", q.SortOrder)
	}
	if q.Source != "" {
		params.Set("source", q.Source)
	}
	if q.Collection != "" {
		params.Set("collection", q.Collection)
	}
	target := f.baseURL + "/api/v1/assets?" + params.Encode()

	body, err := tool.GetBytes(ctx, f.client, target, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode timeline page: %w", err)
	}
	if env.Code != 0 {
		return nil, &tool.StatusError{StatusCode: env.Code, URL: target, Body: env.Message}
	}
	if env.Data == nil {
		return nil, fmt.Errorf("decode timeline page: empty data")
	}
	return env.Data, nil
}
