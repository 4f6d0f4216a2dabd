package asset_service

import (
	"context"
	"encoding/base64"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"asset-aggregator/metadata"
	"asset-aggregator/model"
)

const contractHex = "0x00000000000000000000000000000000000000A1"

var errNode = errors.New("node unavailable")

// fakeReader token uris and owners keyed by decimal token id
type fakeReader struct {
	mu     sync.Mutex
	uris   map[string]string
	owners map[string]common.Address
	calls  int
}

func (f *fakeReader) TokenURI(ctx context.Context, contract common.Address, id *big.Int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if u, ok := f.uris[id.String()]; ok {
		return u, nil
	}
	return "", errNode
}

func (f *fakeReader) OwnerOf(ctx context.Context, contract common.Address, id *big.Int) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.owners[id.String()]; ok {
		return o, nil
	}
	return common.Address{}, errNode
}

func (f *fakeReader) TotalSupply(context.Context, common.Address) (*big.Int, error) {
	return nil, errNode
}

func (f *fakeReader) TokenByIndex(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return nil, errNode
}

func (f *fakeReader) Name(context.Context, common.Address) (string, error) {
	return "", errNode
}

func dataURI(doc string) string {
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(doc))
}

func newTestResolver(reader *fakeReader) *Resolver {
	fetcher := metadata.NewFetcher(metadata.DefaultGateway, time.Second, 0)
	return NewResolver(reader, fetcher, metadata.NewNormalizer(metadata.DefaultGateway), 4)
}

func TestResolveInlineMetadata(t *testing.T) {
	owner := common.HexToAddress("0x2222222222222222222222222222222222222222")
	reader := &fakeReader{
		uris:   map[string]string{"42": dataURI(`{"name":"Dawn","image":"ipfs://QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o","license":"CC0"}`)},
		owners: map[string]common.Address{"42": owner},
	}
	r := newTestResolver(reader)

	rec, err := r.Resolve(context.Background(), strings.ToLower(contractHex), "0x2a")
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(contractHex)+":42", rec.ID)
	require.Equal(t, common.HexToAddress(contractHex).Hex(), rec.ContractAddress)
	require.Equal(t, "42", rec.TokenID)
	require.Equal(t, "Dawn", rec.Title)
	require.Equal(t, "CC0", rec.License.Type)
	require.Equal(t, "https://ipfs.io/ipfs/QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o", rec.MediaURL)
	require.Equal(t, owner.Hex(), rec.Owner)
}

func TestResolveDegradesOnUpstreamFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	reader := &fakeReader{
		uris:   map[string]string{"2": srv.URL + "/2.json"},
		owners: map[string]common.Address{},
	}
	r := newTestResolver(reader)
	ctx := context.Background()

	// no tokenURI, no owner
	rec, err := r.Resolve(ctx, contractHex, 1)
	require.NoError(t, err)
	require.Equal(t, "#1", rec.Title)
	require.Equal(t, model.DefaultLicenseType, rec.License.Type)
	require.Empty(t, rec.Owner)
	require.Empty(t, rec.MetadataURI)

	// tokenURI answers but the document fetch fails
	rec, err = r.Resolve(ctx, contractHex, "2")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/2.json", rec.MetadataURI)
	require.Equal(t, model.DefaultProtectionStatus, rec.Protection.Status)
	require.True(t, rec.License.Attribution)
}

func TestResolveRejectsBadInput(t *testing.T) {
	r := newTestResolver(&fakeReader{})
	ctx := context.Background()

	_, err := r.Resolve(ctx, "not-an-address", 1)
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = r.Resolve(ctx, contractHex, "-4")
	require.ErrorIs(t, err, ErrInvalidTokenID)

	_, err = r.Resolve(ctx, contractHex, struct{}{})
	require.ErrorIs(t, err, ErrInvalidTokenID)
}

func TestResolveManyKeepsOrder(t *testing.T) {
	reader := &fakeReader{uris: map[string]string{}, owners: map[string]common.Address{}}
	var keys []model.AssetKey
	for i := 1; i <= 12; i++ {
		id := big.NewInt(int64(i)).String()
		reader.uris[id] = dataURI(`{"name":"item ` + id + `"}`)
		keys = append(keys, model.AssetKey{Contract: contractHex, TokenID: id})
	}
	r := newTestResolver(reader)

	recs, err := r.ResolveMany(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, recs, 12)
	for i, rec := range recs {
		require.Equal(t, keys[i].TokenID, rec.TokenID)
		require.Equal(t, "item "+keys[i].TokenID, rec.Title)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.ResolveMany(ctx, keys)
	require.ErrorIs(t, err, context.Canceled)
}
