package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyResult = errors.New("contract call returned no data")

// IsUnsupported the contract does not implement the called method
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrEmptyResult) || strings.Contains(err.Error(), "execution reverted")
}

// Reader read-only token queries, every method may fail independently
type Reader interface {
	TokenURI(ctx context.Context, contract common.Address, id *big.Int) (string, error)
	OwnerOf(ctx context.Context, contract common.Address, id *big.Int) (common.Address, error)
	TotalSupply(ctx context.Context, contract common.Address) (*big.Int, error)
	TokenByIndex(ctx context.Context, contract common.Address, index *big.Int) (*big.Int, error)
	Name(ctx context.Context, contract common.Address) (string, error)
}

// ContractCaller satisfied by *ethclient.Client
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// EVMReader Reader over eth_call
type EVMReader struct {
	caller  ContractCaller
	abi     abi.ABI
	timeout time.Duration
	closer  func()
}

// NewEVMReader wraps an existing caller, timeout bounds each eth_call
func NewEVMReader(caller ContractCaller, timeout time.Duration) (*EVMReader, error) {
	parsed, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EVMReader{caller: caller, abi: parsed, timeout: timeout}, nil
}

// DialEVMReader connects to an RPC endpoint
func DialEVMReader(ctx context.Context, rpcURL string, timeout time.Duration) (*EVMReader, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	r, err := NewEVMReader(client, timeout)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.closer = client.Close
	log.Infof("✅ Chain RPC connected: %s", rpcURL)
	return r, nil
}

// Close releases the RPC connection when the reader owns it
func (r *EVMReader) Close() {
	if r.closer != nil {
		r.closer()
	}
}

func (r *EVMReader) call(ctx context.Context, contract common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, contract.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s on %s: %w", method, contract.Hex(), ErrEmptyResult)
	}

	values, err := r.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s on %s: %w", method, contract.Hex(), ErrEmptyResult)
	}
	return values, nil
}

// TokenURI ERC-721 tokenURI, falling back to ERC-1155 uri with {id} substitution
func (r *EVMReader) TokenURI(ctx context.Context, contract common.Address, id *big.Int) (string, error) {
	values, err := r.call(ctx, contract, "tokenURI", id)
	if err == nil {
		if uri, ok := values[0].(string); ok && uri != "" {
			return uri, nil
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	values, err1155 := r.call(ctx, contract, "uri", id)
	if err1155 != nil {
		if err != nil {
			return "", err
		}
		return "", err1155
	}
	uri, _ := values[0].(string)
	if uri == "" {
		return "", fmt.Errorf("uri on %s: %w", contract.Hex(), ErrEmptyResult)
	}
	return ERC1155URI(uri, id), nil
}

// OwnerOf ERC-721 ownerOf
func (r *EVMReader) OwnerOf(ctx context.Context, contract common.Address, id *big.Int) (common.Address, error) {
	values, err := r.call(ctx, contract, "ownerOf", id)
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("ownerOf on %s: unexpected %T", contract.Hex(), values[0])
	}
	return owner, nil
}

// TotalSupply ERC-721 Enumerable totalSupply
func (r *EVMReader) TotalSupply(ctx context.Context, contract common.Address) (*big.Int, error) {
	values, err := r.call(ctx, contract, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBig(values[0], "totalSupply")
}

// TokenByIndex ERC-721 Enumerable tokenByIndex
func (r *EVMReader) TokenByIndex(ctx context.Context, contract common.Address, index *big.Int) (*big.Int, error) {
	values, err := r.call(ctx, contract, "tokenByIndex", index)
	if err != nil {
		return nil, err
	}
	return asBig(values[0], "tokenByIndex")
}

// Name contract name
func (r *EVMReader) Name(ctx context.Context, contract common.Address) (string, error) {
	values, err := r.call(ctx, contract, "name")
	if err != nil {
		return "", err
	}
	name, _ := values[0].(string)
	return name, nil
}

func asBig(v interface{}, method string) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return nil, fmt.Errorf("%s: unexpected %T", method, v)
	}
	return n, nil
}
