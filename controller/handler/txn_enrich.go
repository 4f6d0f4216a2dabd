package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"asset-aggregator/controller/respond"
	"asset-aggregator/model"
	"asset-aggregator/service/enrich_service"
)

// TxnEnricher batch transaction enrichment
type TxnEnricher interface {
	Enrich(ctx context.Context, hashes []string) (map[string]model.TxnEnrichment, error)
}

// TxnEnrichHandler transaction enrichment handler
type TxnEnrichHandler struct {
	enricher TxnEnricher
}

// NewTxnEnrichHandler create transaction enrichment handler instance
func NewTxnEnrichHandler(enricher TxnEnricher) *TxnEnrichHandler {
	return &TxnEnrichHandler{enricher: enricher}
}

// Enrich resolve sender and timestamp for a batch of transaction hashes
// @Summary      Enrich transactions
// @Description  Returns a map of hash to {timestampIso, sender}. Hashes the explorer cannot answer get the current time and no sender.
// @Tags         Transaction
// @Accept       json
// @Produce      json
// @Param        request  body      model.EnrichRequest  true  "Transaction hashes"
// @Success      200      {object}  map[string]model.TxnEnrichment
// @Failure      400      {object}  respond.Response
// @Failure      500      {object}  respond.Response
// @Router       /transactions/enrich [post]
func (h *TxnEnrichHandler) Enrich(c *gin.Context) {
	var req model.EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, "hashes must be a non-empty list")
		return
	}

	result, err := h.enricher.Enrich(c.Request.Context(), req.Hashes)
	if err != nil {
		if errors.Is(err, enrich_service.ErrEmptyHashes) || errors.Is(err, enrich_service.ErrTooManyHashes) {
			respond.InvalidParam(c, err.Error())
			return
		}
		log.Errorf("❌ Enrich %d hashes failed: %v", len(req.Hashes), err)
		respond.ServerError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
