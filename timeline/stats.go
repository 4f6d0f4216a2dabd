package timeline

import (
	"strings"

	"github.com/axiomhq/hyperloglog"

	"asset-aggregator/model"
)

// Stats derived counters for the current view
type Stats struct {
	RawCount       int            `json:"rawCount"`
	VisibleCount   int            `json:"visibleCount"`
	TotalCount     int64          `json:"totalCount"`
	UniqueCreators uint64         `json:"uniqueCreators"` // HyperLogLog estimate over loaded items
	ContentTypes   map[string]int `json:"contentTypes"`   // Visible items per content type
}

func computeStats(raw, visible []model.AssetRecord, total int64) Stats {
	sk := hyperloglog.New14()
	for i := range raw {
		if addr := raw[i].Creator.Address; addr != "" {
			sk.Insert([]byte(strings.ToLower(addr)))
		}
	}

	types := make(map[string]int)
	for i := range visible {
		types[visible[i].ContentType]++
	}

	return Stats{
		RawCount:       len(raw),
		VisibleCount:   len(visible),
		TotalCount:     total,
		UniqueCreators: sk.Estimate(),
		ContentTypes:   types,
	}
}
