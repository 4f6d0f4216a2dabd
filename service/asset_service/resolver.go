package asset_service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"asset-aggregator/chain"
	"asset-aggregator/metadata"
	"asset-aggregator/model"
)

var (
	ErrInvalidAddress = chain.ErrInvalidAddress
	ErrInvalidTokenID = chain.ErrInvalidTokenID
)

// MetadataLoader loads the JSON document behind a token URI
type MetadataLoader interface {
	Load(ctx context.Context, uri string) (map[string]any, error)
}

// Resolver builds one AssetRecord from chain reads and the token's metadata document.
// Upstream failures only degrade fields; errors are reserved for invalid caller input.
type Resolver struct {
	reader      chain.Reader
	loader      MetadataLoader
	normalizer  *metadata.Normalizer
	collection  func(contract string) string
	concurrency int
}

func NewResolver(reader chain.Reader, loader MetadataLoader, normalizer *metadata.Normalizer, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Resolver{
		reader:      reader,
		loader:      loader,
		normalizer:  normalizer,
		collection:  func(string) string { return "" },
		concurrency: concurrency,
	}
}

// SetCollectionNames fallback collection name lookup by contract
func (r *Resolver) SetCollectionNames(lookup func(contract string) string) {
	if lookup != nil {
		r.collection = lookup
	}
}

// Resolve tokenID may be a decimal or hex string, an integer, json.Number or *big.Int
func (r *Resolver) Resolve(ctx context.Context, contract string, tokenID any) (*model.AssetRecord, error) {
	addr, err := chain.ValidateAddress(contract)
	if err != nil {
		return nil, err
	}
	id, err := chain.ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	rec := r.resolve(ctx, addr, id)
	return &rec, nil
}

func (r *Resolver) resolve(ctx context.Context, addr common.Address, id *big.Int) model.AssetRecord {
	key := model.AssetKey{Contract: addr.Hex(), TokenID: id.String()}

	var (
		uri   string
		owner string
		g     errgroup.Group
	)
	g.Go(func() error {
		u, err := r.reader.TokenURI(ctx, addr, id)
		if err != nil {
			log.Debugf("tokenURI %s: %v", key.ID(), err)
			return nil
		}
		uri = u
		return nil
	})
	g.Go(func() error {
		o, err := r.reader.OwnerOf(ctx, addr, id)
		if err != nil {
			log.Debugf("ownerOf %s: %v", key.ID(), err)
			return nil
		}
		owner = o.Hex()
		return nil
	})
	g.Wait()

	var doc map[string]any
	if uri != "" {
		d, err := r.loader.Load(ctx, uri)
		if err != nil {
			log.Debugf("metadata %s (%s): %v", key.ID(), uri, err)
		} else {
			doc = d
		}
	}

	return r.normalizer.Normalize(doc, metadata.Input{
		Key:         key,
		Owner:       owner,
		MetadataURI: uri,
		Collection:  r.collection(key.Contract),
	})
}

// ResolveMany resolves keys in order with bounded parallelism.
// Only cancellation of ctx is reported, individual tokens never fail the batch.
func (r *Resolver) ResolveMany(ctx context.Context, keys []model.AssetKey) ([]model.AssetRecord, error) {
	records := make([]model.AssetRecord, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, k := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			addr, err := chain.ValidateAddress(k.Contract)
			if err != nil {
				return fmt.Errorf("key %d: %w", i, err)
			}
			id, err := chain.ParseTokenID(k.TokenID)
			if err != nil {
				return fmt.Errorf("key %d: %w", i, err)
			}
			records[i] = r.resolve(gctx, addr, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
