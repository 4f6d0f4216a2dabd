package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"asset-aggregator/chain"
	"asset-aggregator/conf"
	"asset-aggregator/controller"
	"asset-aggregator/database"
	"asset-aggregator/explorer"
	"asset-aggregator/metadata"
	"asset-aggregator/ratelimit"
	"asset-aggregator/service/asset_service"
	"asset-aggregator/service/enrich_service"
	"asset-aggregator/storage"
)

var ENV string

func init() {
	flag.StringVar(&ENV, "env", "mainnet", "Environment: loc/mainnet/testnet/example")
}

// @title           Asset Aggregator API
// @version         1.0
// @description     Resolved token metadata timeline and transaction enrichment

// @host      localhost:7290
// @BasePath  /api/v1

// @schemes https http

func main() {
	srv, cleanup := initAll()
	defer cleanup()

	go startServer(srv)
	log.Info("Aggregator API service started successfully")

	waitForShutdown()

	log.Info("Shutting down aggregator service...")
	shutdownServer(srv)
	log.Info("Server exited")
}

// initEnv initialize environment
func initEnv() {
	conf.SystemEnvironmentEnum = conf.ParseEnvironment(ENV)
	fmt.Printf("Environment: %s\n", conf.SystemEnvironmentEnum)
}

// initAll initialize all components
func initAll() (*http.Server, func()) {
	flag.Parse()
	initEnv()

	if err := conf.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	conf.InitLogger(conf.Cfg.LogLevel)
	log.Infof("Configuration loaded: env=%s, port=%s, collections=%d", ENV, conf.Cfg.Port, len(conf.Cfg.Collections))

	// Redis is optional, only the explorer rate limit is shared through it
	redisClient, err := database.InitRedis(conf.Cfg.Redis)
	if err != nil {
		log.Warnf("⚠️  Redis initialization failed (rate limit stays local): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	reader, err := chain.DialEVMReader(ctx, conf.Cfg.Chain.RpcUrl, conf.Cfg.Chain.CallTimeout)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect chain rpc: %v", err)
	}

	// Bucket store for s3:// oss:// file:// metadata documents
	var stores []storage.Storage
	stor, err := storage.NewStorage(conf.Cfg.Storage)
	if err != nil {
		log.Warnf("⚠️  Storage unavailable, bucket metadata will go through public domains: %v", err)
	} else {
		stores = append(stores, stor)
		log.Infof("Storage initialized: type=%s", conf.Cfg.Storage.Type)
	}

	gateway := metadata.Gateway{
		IPFS:    conf.Cfg.Metadata.IpfsGateway,
		Arweave: conf.Cfg.Metadata.ArweaveGateway,
		Buckets: conf.Cfg.BucketDomains(),
	}
	fetcher := metadata.NewFetcher(gateway, conf.Cfg.Metadata.Timeout, conf.Cfg.Metadata.MaxBytes, stores...)
	resolver := asset_service.NewResolver(reader, fetcher, metadata.NewNormalizer(gateway), conf.Cfg.Timeline.ResolveConcurrency)
	timelineService := asset_service.NewTimelineService(chain.NewEnumerator(reader, conf.Cfg.Collections), resolver)

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedis(redisClient, conf.Cfg.Redis.KeyPrefix+":explorer", conf.Cfg.Explorer.RateLimit, conf.Cfg.Explorer.RateBurst)
	} else {
		limiter = ratelimit.NewLocal(conf.Cfg.Explorer.RateLimit, conf.Cfg.Explorer.RateBurst)
	}
	explorerClient := explorer.NewClient(conf.Cfg.Explorer.BaseUrl, conf.Cfg.Explorer.ApiKey, conf.Cfg.Explorer.Timeout, limiter)
	enricher := enrich_service.NewEnricherFromConfig(explorerClient, conf.Cfg.Enricher)
	log.Infof("Explorer: %s (rate limit %d/s)", explorerClient.BaseURL(), conf.Cfg.Explorer.RateLimit)

	router := controller.SetupAggregatorRouter(timelineService, enricher)

	srv := &http.Server{
		Addr:    ":" + conf.Cfg.Port,
		Handler: router,
	}

	cleanup := func() {
		reader.Close()
		if err := database.CloseRedis(); err != nil {
			log.Warnf("Failed to close Redis: %v", err)
		}
	}

	return srv, cleanup
}

// startServer start HTTP server
func startServer(srv *http.Server) {
	log.Infof("Aggregator API service starting on port %s...", conf.Cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForShutdown wait for shutdown signal
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

// shutdownServer gracefully shutdown server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("Server forced to shutdown: %v", err)
	}
}
