package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"asset-aggregator/chain"
	"asset-aggregator/controller/handler"
	"asset-aggregator/model"
	"asset-aggregator/service/asset_service"
	"asset-aggregator/service/enrich_service"
	"asset-aggregator/timeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAssets struct {
	mu         sync.Mutex
	total      int64
	queries    []model.PageQuery
	pageErr    error
	resolveErr error
}

func (f *fakeAssets) FetchPage(ctx context.Context, q model.PageQuery) (*model.TimelinePage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	err := f.pageErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	page := &model.TimelinePage{Offset: q.Offset, Total: f.total}
	for i := q.Offset; i < f.total && len(page.Items) < q.Limit; i++ {
		page.Items = append(page.Items, model.AssetRecord{ID: fmt.Sprintf("0xabc:%d", i), Title: fmt.Sprintf("#%d", i)})
	}
	page.NextOffset = q.Offset + int64(len(page.Items))
	page.HasMore = page.NextOffset < f.total
	return page, nil
}

func (f *fakeAssets) Resolve(ctx context.Context, contract string, tokenID any) (*model.AssetRecord, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &model.AssetRecord{ID: fmt.Sprintf("%s:%v", contract, tokenID), Title: "Resolved"}, nil
}

func (f *fakeAssets) Collections() []model.CollectionInfo {
	return []model.CollectionInfo{{Name: "Genesis", Source: "genesis", Contract: "0xabc"}}
}

func (f *fakeAssets) Total(ctx context.Context, q model.PageQuery) (int64, error) {
	return f.total, nil
}

func (f *fakeAssets) lastQuery() model.PageQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type fakeEnricher struct {
	err error
}

func (f *fakeEnricher) Enrich(ctx context.Context, hashes []string) (map[string]model.TxnEnrichment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(hashes) == 0 {
		return nil, enrich_service.ErrEmptyHashes
	}
	sender := "0xsender"
	out := make(map[string]model.TxnEnrichment, len(hashes))
	for _, h := range hashes {
		out[h] = model.TxnEnrichment{TimestampISO: "2025-06-01T12:00:00.000Z", Sender: &sender}
	}
	return out, nil
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"requestId"`
	Data      json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestHealth(t *testing.T) {
	r := SetupAggregatorRouter(&fakeAssets{}, &fakeEnricher{})
	w, _ := doRequest(t, r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"service":"aggregator"`)
}

func TestListAssets(t *testing.T) {
	assets := &fakeAssets{total: 25}
	r := SetupAggregatorRouter(assets, &fakeEnricher{})

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/assets?offset=20&size=10&order=asc&collection=genesis", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, env.Code)
	require.NotEmpty(t, env.RequestID)
	require.Equal(t, env.RequestID, w.Header().Get("X-Request-ID"))

	var page model.TimelinePage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 5)
	require.Equal(t, int64(25), page.NextOffset)
	require.False(t, page.HasMore)

	q := assets.lastQuery()
	require.Equal(t, int64(20), q.Offset)
	require.Equal(t, 10, q.Limit)
	require.Equal(t, model.SortKeyMinted, q.SortKey)
	require.Equal(t, model.SortOrderAsc, q.SortOrder)
	require.Equal(t, "genesis", q.Collection)
}

func TestListAssetsErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"negative offset", "/api/v1/assets?offset=-1", nil, http.StatusBadRequest},
		{"bad size", "/api/v1/assets?size=many", nil, http.StatusBadRequest},
		{"bad sort", "/api/v1/assets?sort=price", fmt.Errorf("%w: price", asset_service.ErrInvalidSort), http.StatusBadRequest},
		{"unknown collection", "/api/v1/assets?collection=nope", fmt.Errorf("list tokens: %w", chain.ErrUnknownCollection), http.StatusBadRequest},
		{"source down", "/api/v1/assets", fmt.Errorf("list tokens: %w", chain.ErrSourceUnavailable), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SetupAggregatorRouter(&fakeAssets{total: 5, pageErr: tt.err}, &fakeEnricher{})
			w, env := doRequest(t, r, http.MethodGet, tt.path, "")
			require.Equal(t, tt.status, w.Code)
			require.Equal(t, tt.status, env.Code)
			require.NotEmpty(t, env.Message)
		})
	}
}

func TestGetAsset(t *testing.T) {
	r := SetupAggregatorRouter(&fakeAssets{}, &fakeEnricher{})
	w, env := doRequest(t, r, http.MethodGet, "/api/v1/assets/0xabc/0x1f", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rec model.AssetRecord
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	require.Equal(t, "0xabc:0x1f", rec.ID)

	r = SetupAggregatorRouter(&fakeAssets{resolveErr: fmt.Errorf("%w: zz", chain.ErrInvalidAddress)}, &fakeEnricher{})
	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/assets/zz/1", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCollections(t *testing.T) {
	r := SetupAggregatorRouter(&fakeAssets{}, &fakeEnricher{})
	w, env := doRequest(t, r, http.MethodGet, "/api/v1/collections", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, string(env.Data), `"name":"Genesis"`)
	require.Contains(t, string(env.Data), `"total":1`)
}

func TestEnrichTransactions(t *testing.T) {
	r := SetupAggregatorRouter(&fakeAssets{}, &fakeEnricher{})

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/transactions/enrich", `{"hashes":["0x1","0x2"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]model.TxnEnrichment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 2)
	require.Equal(t, "0xsender", *out["0x1"].Sender)
	require.Equal(t, "2025-06-01T12:00:00.000Z", out["0x2"].TimestampISO)

	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/transactions/enrich", `{"hashes":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/transactions/enrich", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	r = SetupAggregatorRouter(&fakeAssets{}, &fakeEnricher{err: enrich_service.ErrTooManyHashes})
	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/transactions/enrich", `{"hashes":["0x1"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	r = SetupAggregatorRouter(&fakeAssets{}, &fakeEnricher{err: errors.New("boom")})
	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/transactions/enrich", `{"hashes":["0x1"]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

type socketMsg struct {
	Type     string          `json:"type"`
	Command  string          `json:"command"`
	Accepted *bool           `json:"accepted"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(socketMsg) bool) socketMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg socketMsg
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func readySnapshot(t *testing.T, conn *websocket.Conn) timeline.Snapshot {
	t.Helper()
	var snap timeline.Snapshot
	readUntil(t, conn, func(m socketMsg) bool {
		if m.Type != handler.MsgSnapshot {
			return false
		}
		require.NoError(t, json.Unmarshal(m.Data, &snap))
		return snap.State == timeline.StateReady
	})
	return snap
}

func TestTimelineSocket(t *testing.T) {
	srv := httptest.NewServer(SetupAggregatorRouter(&fakeAssets{total: 30}, &fakeEnricher{}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/timeline/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	snap := readySnapshot(t, conn)
	require.Len(t, snap.Items, 20)
	require.True(t, snap.HasMore)

	// inside the throttle window
	require.NoError(t, conn.WriteJSON(handler.SocketCommand{Type: handler.CmdLoadMore}))
	ack := readUntil(t, conn, func(m socketMsg) bool { return m.Type == handler.MsgAck })
	require.Equal(t, handler.CmdLoadMore, ack.Command)
	require.NotNil(t, ack.Accepted)
	require.False(t, *ack.Accepted)

	video := []string{"video"}
	require.NoError(t, conn.WriteJSON(handler.SocketCommand{Type: handler.CmdUpdateFilters, Filters: &model.FilterPatch{Categories: video}}))
	ack = readUntil(t, conn, func(m socketMsg) bool { return m.Type == handler.MsgAck })
	require.True(t, *ack.Accepted)

	bad := "sideways"
	require.NoError(t, conn.WriteJSON(handler.SocketCommand{Type: handler.CmdUpdateFilters, Filters: &model.FilterPatch{SortOrder: &bad}}))
	errMsg := readUntil(t, conn, func(m socketMsg) bool { return m.Type == handler.MsgError })
	require.Contains(t, errMsg.Message, "sort order")

	require.NoError(t, conn.WriteJSON(handler.SocketCommand{Type: "jump"}))
	errMsg = readUntil(t, conn, func(m socketMsg) bool { return m.Type == handler.MsgError })
	require.Equal(t, "unknown command", errMsg.Message)
}
