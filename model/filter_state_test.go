package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFilterStateApply(t *testing.T) {
	base := DefaultFilterState()

	next, backend := base.Apply(FilterPatch{Search: strPtr("sunset")})
	require.False(t, backend)
	require.Equal(t, "sunset", next.Search)
	require.True(t, next.HasClientFilters())

	next, backend = next.Apply(FilterPatch{SortOrder: strPtr(SortOrderAsc)})
	require.True(t, backend)
	require.Equal(t, SortOrderAsc, next.SortOrder)
	require.Equal(t, "sunset", next.Search)

	// same value is not a change
	_, backend = next.Apply(FilterPatch{SortOrder: strPtr(SortOrderAsc)})
	require.False(t, backend)
}

func TestPageQueryNormalize(t *testing.T) {
	q := PageQuery{Offset: -3, Limit: 500}.Normalize()
	require.Equal(t, int64(0), q.Offset)
	require.Equal(t, MaxPageSize, q.Limit)
	require.Equal(t, SortKeyMinted, q.SortKey)
	require.Equal(t, SortOrderDesc, q.SortOrder)

	q = PageQuery{}.Normalize()
	require.Equal(t, DefaultPageSize, q.Limit)
}

func TestAssetKeyID(t *testing.T) {
	k := AssetKey{Contract: "0xABCdef0000000000000000000000000000000001", TokenID: "42"}
	require.Equal(t, "0xabcdef0000000000000000000000000000000001:42", k.ID())
}
