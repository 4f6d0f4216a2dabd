package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type callHandler func(args []interface{}) ([]interface{}, error)

// fakeCaller answers eth_call from per-contract method handlers; missing handlers revert
type fakeCaller struct {
	abi       abi.ABI
	contracts map[common.Address]map[string]callHandler
	calls     int
}

func newFakeCaller(t *testing.T) *fakeCaller {
	parsed, err := abi.JSON(strings.NewReader(tokenABI))
	require.NoError(t, err)
	return &fakeCaller{abi: parsed, contracts: map[common.Address]map[string]callHandler{}}
}

func (f *fakeCaller) on(contract common.Address, method string, h callHandler) {
	if f.contracts[contract] == nil {
		f.contracts[contract] = map[string]callHandler{}
	}
	f.contracts[contract][method] = h
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	h, ok := f.contracts[*msg.To][m.Name]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	args, err := m.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	outs, err := h(args)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(outs...)
}

func returns(v ...interface{}) callHandler {
	return func([]interface{}) ([]interface{}, error) { return v, nil }
}

var (
	erc721  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	erc1155 = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestEVMReaderTokenURI(t *testing.T) {
	caller := newFakeCaller(t)
	caller.on(erc721, "tokenURI", returns("ipfs://meta/1.json"))
	caller.on(erc1155, "uri", returns("https://api.example.com/{id}.json"))

	r, err := NewEVMReader(caller, time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	uri, err := r.TokenURI(ctx, erc721, big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, "ipfs://meta/1.json", uri)

	uri, err = r.TokenURI(ctx, erc1155, big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/000000000000000000000000000000000000000000000000000000000000000a.json", uri)

	_, err = r.TokenURI(ctx, common.HexToAddress("0x00000000000000000000000000000000000000c3"), big.NewInt(1))
	require.Error(t, err)
	require.True(t, IsUnsupported(err))
}

func TestEVMReaderOwnerAndSupply(t *testing.T) {
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	caller := newFakeCaller(t)
	caller.on(erc721, "ownerOf", returns(owner))
	caller.on(erc721, "totalSupply", returns(big.NewInt(42)))
	caller.on(erc721, "tokenByIndex", func(args []interface{}) ([]interface{}, error) {
		idx := args[0].(*big.Int)
		return []interface{}{new(big.Int).Add(idx, big.NewInt(1000))}, nil
	})
	caller.on(erc721, "name", returns("Genesis"))

	r, err := NewEVMReader(caller, time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := r.OwnerOf(ctx, erc721, big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, owner, got)

	supply, err := r.TotalSupply(ctx, erc721)
	require.NoError(t, err)
	require.Equal(t, int64(42), supply.Int64())

	id, err := r.TokenByIndex(ctx, erc721, big.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, int64(1003), id.Int64())

	name, err := r.Name(ctx, erc721)
	require.NoError(t, err)
	require.Equal(t, "Genesis", name)
}

func TestParseTokenID(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    string
		wantErr bool
	}{
		{"42", "42", false},
		{" 0x2a ", "42", false},
		{int(7), "7", false},
		{uint64(9), "9", false},
		{float64(12), "12", false},
		{big.NewInt(99), "99", false},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639935", "115792089237316195423570985008687907853269984665640564039457584007913129639935", false},
		{"115792089237316195423570985008687907853269984665640564039457584007913129639936", "", true},
		{"-1", "", true},
		{int64(-5), "", true},
		{float64(1.5), "", true},
		{"abc", "", true},
		{"", "", true},
		{nil, "", true},
		{[]byte("1"), "", true},
	}
	for _, tt := range tests {
		id, err := ParseTokenID(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidTokenID, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		require.Equal(t, tt.want, id.String())
	}
}

func TestValidateAddress(t *testing.T) {
	a, err := ValidateAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	require.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", a.Hex())

	_, err = ValidateAddress("0x123")
	require.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ValidateAddress("0x0000000000000000000000000000000000000000")
	require.ErrorIs(t, err, ErrInvalidAddress)
}
