package model

import (
	"sort"
	"strings"
)

// FilterState full set of user filters.
// SortKey, SortOrder, Source and Collection change what the backend returns;
// the rest only narrow what is already loaded.
type FilterState struct {
	SortKey    string `json:"sortKey"`
	SortOrder  string `json:"sortOrder"`
	Source     string `json:"source"`
	Collection string `json:"collection"`

	Search     string              `json:"search"`
	Categories []string            `json:"categories"`
	Traits     map[string][]string `json:"traits"`
}

// DefaultFilterState newest first, nothing narrowed
func DefaultFilterState() FilterState {
	return FilterState{
		SortKey:   SortKeyMinted,
		SortOrder: SortOrderDesc,
	}
}

// FilterPatch partial update, nil fields are left untouched
type FilterPatch struct {
	SortKey    *string `json:"sortKey,omitempty"`
	SortOrder  *string `json:"sortOrder,omitempty"`
	Source     *string `json:"source,omitempty"`
	Collection *string `json:"collection,omitempty"`

	Search     *string             `json:"search,omitempty"`
	Categories []string            `json:"categories,omitempty"`
	Traits     map[string][]string `json:"traits,omitempty"`
}

// Apply returns the patched state and whether backend-affecting fields changed
func (f FilterState) Apply(p FilterPatch) (FilterState, bool) {
	next := f
	if p.SortKey != nil {
		next.SortKey = *p.SortKey
	}
	if p.SortOrder != nil {
		next.SortOrder = *p.SortOrder
	}
	if p.Source != nil {
		next.Source = *p.Source
	}
	if p.Collection != nil {
		next.Collection = *p.Collection
	}
	if p.Search != nil {
		next.Search = *p.Search
	}
	if p.Categories != nil {
		next.Categories = append([]string(nil), p.Categories...)
	}
	if p.Traits != nil {
		next.Traits = make(map[string][]string, len(p.Traits))
		for k, v := range p.Traits {
			next.Traits[k] = append([]string(nil), v...)
		}
	}
	return next, !f.SameBackend(next)
}

// SameBackend compares only the backend-affecting fields
func (f FilterState) SameBackend(o FilterState) bool {
	return f.SortKey == o.SortKey &&
		f.SortOrder == o.SortOrder &&
		f.Source == o.Source &&
		f.Collection == o.Collection
}

// Query backend query for the given offset and page size
func (f FilterState) Query(offset int64, limit int) PageQuery {
	return PageQuery{
		Offset:     offset,
		Limit:      limit,
		SortKey:    f.SortKey,
		SortOrder:  f.SortOrder,
		Source:     f.Source,
		Collection: f.Collection,
	}
}

// HasClientFilters true when any client-only filter narrows the view
func (f FilterState) HasClientFilters() bool {
	if strings.TrimSpace(f.Search) != "" || len(f.Categories) > 0 {
		return true
	}
	for _, v := range f.Traits {
		if len(v) > 0 {
			return true
		}
	}
	return false
}

// TraitNames sorted trait filter keys
func (f FilterState) TraitNames() []string {
	names := make([]string, 0, len(f.Traits))
	for k := range f.Traits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
