package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAddress = errors.New("invalid contract address")
	ErrInvalidTokenID = errors.New("invalid token id")
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ValidateAddress returns the EIP-55 checksummed form of addr
func ValidateAddress(addr string) (common.Address, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	a := common.HexToAddress(addr)
	if a == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address", ErrInvalidAddress)
	}
	return a, nil
}

// ParseTokenID accepts decimal or 0x-hex strings, integer kinds, json.Number and *big.Int
func ParseTokenID(v any) (*big.Int, error) {
	var id *big.Int
	switch t := v.(type) {
	case nil:
		return nil, ErrInvalidTokenID
	case *big.Int:
		if t == nil {
			return nil, ErrInvalidTokenID
		}
		id = new(big.Int).Set(t)
	case string:
		return parseTokenString(t)
	case json.Number:
		return parseTokenString(t.String())
	case int:
		id = big.NewInt(int64(t))
	case int32:
		id = big.NewInt(int64(t))
	case int64:
		id = big.NewInt(t)
	case uint:
		id = new(big.Int).SetUint64(uint64(t))
	case uint32:
		id = new(big.Int).SetUint64(uint64(t))
	case uint64:
		id = new(big.Int).SetUint64(t)
	case float64:
		// numbers decoded from JSON without UseNumber
		if t != math.Trunc(t) || t > 1<<53 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTokenID, t)
		}
		id = big.NewInt(int64(t))
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidTokenID, v)
	}
	return checkRange(id)
}

func parseTokenString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidTokenID
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	id, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTokenID, s)
	}
	return checkRange(id)
}

func checkRange(id *big.Int) (*big.Int, error) {
	if id.Sign() < 0 || id.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: %s out of range", ErrInvalidTokenID, id)
	}
	return id, nil
}

// ERC1155URI substitutes {id} with the zero-padded 64 char lower-case hex id
func ERC1155URI(template string, id *big.Int) string {
	if !strings.Contains(template, "{id}") {
		return template
	}
	return strings.ReplaceAll(template, "{id}", fmt.Sprintf("%064x", id))
}
