package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"asset-aggregator/conf"
	"asset-aggregator/model"
)

func newTestEnumerator(t *testing.T) *Enumerator {
	caller := newFakeCaller(t)
	// enumerable collection: 3 tokens with ids 100..102
	caller.on(erc721, "totalSupply", returns(big.NewInt(3)))
	caller.on(erc721, "tokenByIndex", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{new(big.Int).Add(args[0].(*big.Int), big.NewInt(100))}, nil
	})
	// erc1155 has neither totalSupply nor tokenByIndex

	r, err := NewEVMReader(caller, 0)
	require.NoError(t, err)
	return NewEnumerator(r, []conf.CollectionConfig{
		{Name: "Genesis", Source: "story", Contract: erc721.Hex(), MaxScan: 10},
		{Name: "Editions", Source: "market", Contract: erc1155.Hex(), MaxScan: 2, FirstTokenID: 1},
	})
}

func ids(keys []model.AssetKey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.TokenID)
	}
	return out
}

func TestEnumeratorPageOrder(t *testing.T) {
	e := newTestEnumerator(t)
	ctx := context.Background()

	keys, total, err := e.Page(ctx, model.PageQuery{Limit: 4, SortOrder: model.SortOrderAsc})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Equal(t, []string{"100", "101", "102", "1"}, ids(keys))
	require.Equal(t, erc721.Hex(), keys[0].Contract)
	require.Equal(t, erc1155.Hex(), keys[3].Contract)

	keys, _, err = e.Page(ctx, model.PageQuery{Limit: 2, SortOrder: model.SortOrderDesc})
	require.NoError(t, err)
	require.Equal(t, []string{"2", "1"}, ids(keys))

	keys, _, err = e.Page(ctx, model.PageQuery{Offset: 2, Limit: 10, SortOrder: model.SortOrderDesc})
	require.NoError(t, err)
	require.Equal(t, []string{"102", "101", "100"}, ids(keys))

	keys, _, err = e.Page(ctx, model.PageQuery{Offset: 5, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestEnumeratorFilters(t *testing.T) {
	e := newTestEnumerator(t)
	ctx := context.Background()

	keys, total, err := e.Page(ctx, model.PageQuery{Source: "STORY", SortOrder: model.SortOrderAsc})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, []string{"100", "101", "102"}, ids(keys))

	_, total, err = e.Page(ctx, model.PageQuery{Collection: "editions"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	_, _, err = e.Page(ctx, model.PageQuery{Collection: "missing"})
	require.ErrorIs(t, err, ErrUnknownCollection)

	require.Equal(t, "Genesis", e.CollectionName(erc721.Hex()))
	require.Len(t, e.Collections(), 2)
}

func TestEnumeratorTotal(t *testing.T) {
	e := newTestEnumerator(t)
	total, err := e.Total(context.Background(), model.PageQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)

	total, err = e.Total(context.Background(), model.PageQuery{Source: "market"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}
