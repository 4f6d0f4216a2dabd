package model

// Sort keys and orders accepted by the timeline backend
const (
	SortKeyMinted = "minted"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageQuery backend page request; offset counts records already held by the caller
type PageQuery struct {
	Offset     int64  `json:"offset"`
	Limit      int    `json:"limit"`
	SortKey    string `json:"sortKey"`
	SortOrder  string `json:"sortOrder"`
	Source     string `json:"source"`
	Collection string `json:"collection"`
}

// Normalize clamps limit and fills sort defaults
func (q PageQuery) Normalize() PageQuery {
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.SortKey == "" {
		q.SortKey = SortKeyMinted
	}
	if q.SortOrder == "" {
		q.SortOrder = SortOrderDesc
	}
	return q
}

// TimelinePage one page of resolved assets
type TimelinePage struct {
	Items      []AssetRecord `json:"items"`
	Offset     int64         `json:"offset"`
	NextOffset int64         `json:"nextOffset"`
	Total      int64         `json:"total"`
	HasMore    bool          `json:"hasMore"`
}

// CollectionInfo configured collection exposed as a source
type CollectionInfo struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Contract string `json:"contract"`
}
