package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"asset-aggregator/chain"
	"asset-aggregator/controller/respond"
	"asset-aggregator/model"
	"asset-aggregator/service/asset_service"
)

// AssetService timeline and single asset lookups
type AssetService interface {
	FetchPage(ctx context.Context, q model.PageQuery) (*model.TimelinePage, error)
	Resolve(ctx context.Context, contract string, tokenID any) (*model.AssetRecord, error)
	Collections() []model.CollectionInfo
}

// AssetQueryHandler asset query handler
type AssetQueryHandler struct {
	assets AssetService
}

// NewAssetQueryHandler create asset query handler instance
func NewAssetQueryHandler(assets AssetService) *AssetQueryHandler {
	return &AssetQueryHandler{assets: assets}
}

// ListAssets get a page of the asset timeline
// @Summary      List assets
// @Description  Offset paginated timeline of resolved assets, newest mint first by default
// @Tags         Asset Query
// @Accept       json
// @Produce      json
// @Param        offset      query     int     false  "Records already held by the caller"  default(0)
// @Param        size        query     int     false  "Page size (1-100)"                   default(20)
// @Param        sort        query     string  false  "Sort key"                            default(minted)
// @Param        order       query     string  false  "asc or desc"                         default(desc)
// @Param        source      query     string  false  "Collection source"
// @Param        collection  query     string  false  "Collection name or contract"
// @Success      200         {object}  respond.Response{data=respond.AssetListResponse}
// @Failure      400         {object}  respond.Response
// @Failure      500         {object}  respond.Response
// @Router       /assets [get]
func (h *AssetQueryHandler) ListAssets(c *gin.Context) {
	offset, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	if err != nil || offset < 0 {
		respond.InvalidParam(c, "offset must be a non-negative integer")
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(model.DefaultPageSize)))
	if err != nil {
		respond.InvalidParam(c, "size must be an integer")
		return
	}

	q := model.PageQuery{
		Offset:     offset,
		Limit:      size,
		SortKey:    c.DefaultQuery("sort", model.SortKeyMinted),
		SortOrder:  c.DefaultQuery("order", model.SortOrderDesc),
		Source:     c.Query("source"),
		Collection: c.Query("collection"),
	}

	page, err := h.assets.FetchPage(c.Request.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, asset_service.ErrInvalidSort),
			errors.Is(err, asset_service.ErrInvalidOrder),
			errors.Is(err, chain.ErrUnknownCollection):
			respond.InvalidParam(c, err.Error())
		default:
			log.Errorf("❌ List assets offset=%d failed: %v", offset, err)
			respond.ServerError(c, err.Error())
		}
		return
	}

	respond.Success(c, respond.ToAssetListResponse(page))
}

// GetAsset get one asset by contract and token id
// @Summary      Get asset
// @Description  Resolve a single token into a normalized asset record
// @Tags         Asset Query
// @Accept       json
// @Produce      json
// @Param        contract  path      string  true  "Contract address"
// @Param        tokenId   path      string  true  "Token id, decimal or 0x hex"
// @Success      200       {object}  respond.Response{data=model.AssetRecord}
// @Failure      400       {object}  respond.Response
// @Router       /assets/{contract}/{tokenId} [get]
func (h *AssetQueryHandler) GetAsset(c *gin.Context) {
	contract := c.Param("contract")
	if contract == "" {
		respond.InvalidParam(c, "contract is required")
		return
	}
	tokenID := c.Param("tokenId")
	if tokenID == "" {
		respond.InvalidParam(c, "tokenId is required")
		return
	}

	record, err := h.assets.Resolve(c.Request.Context(), contract, tokenID)
	if err != nil {
		if errors.Is(err, chain.ErrInvalidAddress) || errors.Is(err, chain.ErrInvalidTokenID) {
			respond.InvalidParam(c, err.Error())
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, record)
}

// ListCollections get configured collections
// @Summary      List collections
// @Description  Collections the timeline enumerates
// @Tags         Asset Query
// @Produce      json
// @Success      200  {object}  respond.Response{data=respond.CollectionListResponse}
// @Router       /collections [get]
func (h *AssetQueryHandler) ListCollections(c *gin.Context) {
	respond.Success(c, respond.ToCollectionListResponse(h.assets.Collections()))
}
