package asset_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"asset-aggregator/model"
)

var (
	ErrInvalidSort  = errors.New("unsupported sort key")
	ErrInvalidOrder = errors.New("sort order must be asc or desc")
)

// KeySource ordered token keys for the timeline
type KeySource interface {
	Page(ctx context.Context, q model.PageQuery) ([]model.AssetKey, int64, error)
	Total(ctx context.Context, q model.PageQuery) (int64, error)
	Collections() []model.CollectionInfo
	CollectionName(contract string) string
}

// TimelineService serves resolved timeline pages
type TimelineService struct {
	keys     KeySource
	resolver *Resolver
}

func NewTimelineService(keys KeySource, resolver *Resolver) *TimelineService {
	resolver.SetCollectionNames(keys.CollectionName)
	return &TimelineService{keys: keys, resolver: resolver}
}

// ValidateQuery normalizes q and rejects unsupported backend filters
func ValidateQuery(q model.PageQuery) (model.PageQuery, error) {
	q = q.Normalize()
	q.SortKey = strings.ToLower(q.SortKey)
	q.SortOrder = strings.ToLower(q.SortOrder)
	if q.SortKey != model.SortKeyMinted {
		return q, fmt.Errorf("%w: %s", ErrInvalidSort, q.SortKey)
	}
	if q.SortOrder != model.SortOrderAsc && q.SortOrder != model.SortOrderDesc {
		return q, fmt.Errorf("%w: %s", ErrInvalidOrder, q.SortOrder)
	}
	return q, nil
}

// FetchPage one page of resolved assets starting at q.Offset
func (s *TimelineService) FetchPage(ctx context.Context, q model.PageQuery) (*model.TimelinePage, error) {
	q, err := ValidateQuery(q)
	if err != nil {
		return nil, err
	}

	keys, total, err := s.keys.Page(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	items, err := s.resolver.ResolveMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	next := q.Offset + int64(len(items))
	log.Debugf("timeline page offset=%d size=%d got=%d total=%d", q.Offset, q.Limit, len(items), total)
	return &model.TimelinePage{
		Items:      items,
		Offset:     q.Offset,
		NextOffset: next,
		Total:      total,
		HasMore:    next < total,
	}, nil
}

// Total current sequence length for the query's source and collection
func (s *TimelineService) Total(ctx context.Context, q model.PageQuery) (int64, error) {
	return s.keys.Total(ctx, q)
}

// Collections configured collections
func (s *TimelineService) Collections() []model.CollectionInfo {
	return s.keys.Collections()
}

// Resolve one asset by contract and token id
func (s *TimelineService) Resolve(ctx context.Context, contract string, tokenID any) (*model.AssetRecord, error) {
	return s.resolver.Resolve(ctx, contract, tokenID)
}
