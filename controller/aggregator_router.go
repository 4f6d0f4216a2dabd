package controller

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"asset-aggregator/conf"
	"asset-aggregator/controller/handler"
	"asset-aggregator/controller/respond"
	aggregatorDocs "asset-aggregator/docs/aggregator"
	"asset-aggregator/timeline"
)

// TimelineAPI everything the query and socket handlers need from the timeline
type TimelineAPI interface {
	handler.AssetService
	handler.TimelineBackend
}

// SetupAggregatorRouter setup aggregator service router
func SetupAggregatorRouter(assets TimelineAPI, enricher handler.TxnEnricher) *gin.Engine {
	timelineCfg := timeline.DefaultConfig()
	pollInterval := 30 * time.Second
	if conf.Cfg != nil {
		// Set Swagger host from config
		aggregatorDocs.SwaggerInfoaggregator.Host = conf.Cfg.SwaggerBaseUrl
		timelineCfg = timeline.ConfigFrom(conf.Cfg.Timeline)
		pollInterval = conf.Cfg.Timeline.PollInterval
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Cache-Control", "X-Requested-With", respond.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", respond.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * 3600, // 12 hours
	}))

	// Add timing middleware
	r.Use(respond.TimingMiddleware())

	assetQueryHandler := handler.NewAssetQueryHandler(assets)
	txnEnrichHandler := handler.NewTxnEnrichHandler(enricher)
	timelineSocketHandler := handler.NewTimelineSocketHandler(assets, timelineCfg, pollInterval)

	v1 := r.Group("/api/v1")
	{
		assetsGroup := v1.Group("/assets")
		{
			// Timeline page (offset pagination)
			assetsGroup.GET("", assetQueryHandler.ListAssets)

			// Single asset by contract and token id
			assetsGroup.GET("/:contract/:tokenId", assetQueryHandler.GetAsset)
		}

		v1.GET("/collections", assetQueryHandler.ListCollections)

		v1.POST("/transactions/enrich", txnEnrichHandler.Enrich)

		// Live timeline session
		v1.GET("/timeline/ws", timelineSocketHandler.Serve)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "aggregator",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName("aggregator")))

	return r
}
