package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"asset-aggregator/conf"
	"asset-aggregator/model"
)

var (
	ErrSourceUnavailable = errors.New("no collection could be enumerated")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Enumerator pages token keys across the configured collections in mint order.
// Ascending order concatenates collections in configuration order; descending reverses the whole sequence.
type Enumerator struct {
	reader      Reader
	collections []conf.CollectionConfig
}

func NewEnumerator(reader Reader, collections []conf.CollectionConfig) *Enumerator {
	return &Enumerator{reader: reader, collections: collections}
}

// Collections configured collections as exposed to clients
func (e *Enumerator) Collections() []model.CollectionInfo {
	out := make([]model.CollectionInfo, 0, len(e.collections))
	for _, c := range e.collections {
		out = append(out, model.CollectionInfo{Name: c.Name, Source: c.Source, Contract: c.Contract})
	}
	return out
}

// CollectionName configured name of the collection at contract, "" when unknown
func (e *Enumerator) CollectionName(contract string) string {
	for _, c := range e.collections {
		if strings.EqualFold(c.Contract, contract) {
			return c.Name
		}
	}
	return ""
}

type segment struct {
	cfg        conf.CollectionConfig
	addr       common.Address
	total      int64
	enumerable bool
}

func (e *Enumerator) selectCollections(source, collection string) []conf.CollectionConfig {
	var out []conf.CollectionConfig
	for _, c := range e.collections {
		if source != "" && !strings.EqualFold(c.Source, source) {
			continue
		}
		if collection != "" && !strings.EqualFold(c.Name, collection) && !strings.EqualFold(c.Contract, collection) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// segments sizes every selected collection; collections whose node calls fail are skipped
func (e *Enumerator) segments(ctx context.Context, selected []conf.CollectionConfig) ([]segment, error) {
	var (
		segs    []segment
		lastErr error
	)
	for _, c := range selected {
		addr, err := ValidateAddress(c.Contract)
		if err != nil {
			log.Warnf("⚠️  Collection %s: %v", c.Name, err)
			lastErr = err
			continue
		}
		seg := segment{cfg: c, addr: addr, enumerable: true}
		supply, err := e.reader.TotalSupply(ctx, addr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !IsUnsupported(err) {
				log.Warnf("⚠️  totalSupply failed for %s: %v", c.Name, err)
				lastErr = err
				continue
			}
			// no totalSupply: probe sequential ids up to max_scan
			seg.total = c.MaxScan
			seg.enumerable = false
		} else if supply.IsInt64() {
			seg.total = supply.Int64()
		} else {
			seg.total = c.MaxScan
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, lastErr)
	}
	return segs, nil
}

// Total length of the ordered sequence for the query's source and collection
func (e *Enumerator) Total(ctx context.Context, q model.PageQuery) (int64, error) {
	selected := e.selectCollections(q.Source, q.Collection)
	if q.Collection != "" && len(selected) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, q.Collection)
	}
	segs, err := e.segments(ctx, selected)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, s := range segs {
		total += s.total
	}
	return total, nil
}

// Page returns the keys in [offset, offset+limit) of the ordered sequence plus its total length
func (e *Enumerator) Page(ctx context.Context, q model.PageQuery) ([]model.AssetKey, int64, error) {
	q = q.Normalize()
	selected := e.selectCollections(q.Source, q.Collection)
	if q.Collection != "" && len(selected) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownCollection, q.Collection)
	}

	segs, err := e.segments(ctx, selected)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for _, s := range segs {
		total += s.total
	}

	keys := make([]model.AssetKey, 0, q.Limit)
	for pos := q.Offset; pos < total && len(keys) < q.Limit; pos++ {
		global := pos
		if q.SortOrder == model.SortOrderDesc {
			global = total - 1 - pos
		}
		seg, local := locate(segs, global)
		// a gap would shift every later offset, so a failed lookup fails the page
		id, err := e.tokenAt(ctx, seg, local)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			return nil, 0, fmt.Errorf("token at %d in %s: %w", local, seg.cfg.Name, err)
		}
		keys = append(keys, model.AssetKey{Contract: seg.addr.Hex(), TokenID: id.String()})
	}
	return keys, total, nil
}

func locate(segs []segment, global int64) (*segment, int64) {
	for i := range segs {
		if global < segs[i].total {
			return &segs[i], global
		}
		global -= segs[i].total
	}
	last := &segs[len(segs)-1]
	return last, last.total - 1
}

// tokenAt resolves the token id at index, switching the segment to sequential ids
// the first time tokenByIndex is not supported
func (e *Enumerator) tokenAt(ctx context.Context, seg *segment, index int64) (*big.Int, error) {
	if seg.enumerable {
		id, err := e.reader.TokenByIndex(ctx, seg.addr, big.NewInt(index))
		if err == nil {
			return id, nil
		}
		if !IsUnsupported(err) {
			return nil, err
		}
		log.Debugf("%s is not enumerable, using sequential ids from %d", seg.cfg.Name, seg.cfg.FirstTokenID)
		seg.enumerable = false
	}
	return big.NewInt(seg.cfg.FirstTokenID + index), nil
}
