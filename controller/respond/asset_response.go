package respond

import (
	"asset-aggregator/model"
)

// AssetListResponse timeline page response structure
type AssetListResponse struct {
	Items      []model.AssetRecord `json:"items"`
	Offset     int64               `json:"offset" example:"0"`
	NextOffset int64               `json:"nextOffset" example:"20"`
	Total      int64               `json:"total" example:"137"`
	HasMore    bool                `json:"hasMore" example:"true"`
}

// CollectionListResponse configured collections
type CollectionListResponse struct {
	Collections []model.CollectionInfo `json:"collections"`
	Total       int                    `json:"total" example:"2"`
}

// ToAssetListResponse convert a timeline page
func ToAssetListResponse(page *model.TimelinePage) AssetListResponse {
	items := page.Items
	if items == nil {
		items = []model.AssetRecord{}
	}
	return AssetListResponse{
		Items:      items,
		Offset:     page.Offset,
		NextOffset: page.NextOffset,
		Total:      page.Total,
		HasMore:    page.HasMore,
	}
}

// ToCollectionListResponse convert collections
func ToCollectionListResponse(collections []model.CollectionInfo) CollectionListResponse {
	if collections == nil {
		collections = []model.CollectionInfo{}
	}
	return CollectionListResponse{Collections: collections, Total: len(collections)}
}
