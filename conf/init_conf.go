package conf

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	Port           string // HTTP API port
	SwaggerBaseUrl string // Swagger API base URL (e.g., "example.com:7290")
	LogLevel       string

	Chain       ChainConfig
	Collections []CollectionConfig
	Explorer    ExplorerConfig
	Enricher    EnricherConfig
	Timeline    TimelineConfig
	Metadata    MetadataConfig
	Storage     StorageConfig
	Redis       RedisConfig
}

// ChainConfig EVM node configuration
type ChainConfig struct {
	RpcUrl      string
	CallTimeout time.Duration // Per eth_call timeout
}

// CollectionConfig one enumerable NFT contract exposed on the timeline
type CollectionConfig struct {
	Name     string `mapstructure:"name"`
	Source   string `mapstructure:"source"` // Marketplace or platform label used by the source filter
	Contract string `mapstructure:"contract"`
	// MaxScan number of sequential token ids exposed when the contract has no totalSupply
	MaxScan      int64 `mapstructure:"max_scan"`
	FirstTokenID int64 `mapstructure:"first_token_id"`
}

// ExplorerConfig block explorer API
type ExplorerConfig struct {
	BaseUrl   string
	ApiKey    string
	Timeout   time.Duration
	RateLimit int // Requests per second shared by all workers, 0 = unlimited
	RateBurst int
}

// EnricherConfig batch transaction enrichment
type EnricherConfig struct {
	Workers      int
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxJitter    time.Duration
	MaxHashes    int
	BatchTimeout time.Duration // Ceiling for one batch, unfinished hashes soft-fail
}

// TimelineConfig paginated loader
type TimelineConfig struct {
	PageSize           int
	MinInterval        time.Duration // Minimum spacing between LoadMore/Refresh starts
	MaxRetries         int
	RetryStep          time.Duration // Linear backoff step
	PollInterval       time.Duration // New item announcement interval for socket sessions
	ResolveConcurrency int           // Parallel token resolutions per page
}

// MetadataConfig token metadata loading
type MetadataConfig struct {
	IpfsGateway    string
	ArweaveGateway string
	Timeout        time.Duration
	MaxBytes       int64
}

// StorageConfig storage configuration
type StorageConfig struct {
	Type  string
	Local LocalStorageConfig
	OSS   OSSStorageConfig
	S3    S3StorageConfig
	MinIO MinIOStorageConfig
}

// LocalStorageConfig local storage configuration
type LocalStorageConfig struct {
	BasePath string
}

// OSSStorageConfig OSS storage configuration
type OSSStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string
}

// S3StorageConfig AWS S3 storage configuration
type S3StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string
	Endpoint  string // Optional custom endpoint
}

// MinIOStorageConfig MinIO storage configuration
type MinIOStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Domain    string
}

// RedisConfig redis configuration, used for the shared explorer rate limit
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration
func InitConfig() error {
	viper.SetConfigFile(GetYaml())
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Fatal error config file: %s", err)
	}
	Cfg = Load(viper.GetViper())
	return nil
}

// Load builds a Config from v, binding env overrides and filling defaults
func Load(v *viper.Viper) *Config {
	v.BindEnv("explorer.base_url", "VOYAGER_BASE_URL", "EXPLORER_BASE_URL")
	v.BindEnv("explorer.api_key", "VOYAGER_API_KEY", "EXPLORER_API_KEY")
	v.BindEnv("chain.rpc_url", "CHAIN_RPC_URL")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	c := &Config{
		Port:           v.GetString("port"),
		SwaggerBaseUrl: v.GetString("swagger_base_url"),
		LogLevel:       v.GetString("log_level"),

		Chain: ChainConfig{
			RpcUrl:      v.GetString("chain.rpc_url"),
			CallTimeout: v.GetDuration("chain.call_timeout"),
		},

		Explorer: ExplorerConfig{
			BaseUrl:   strings.TrimRight(v.GetString("explorer.base_url"), "/"),
			ApiKey:    v.GetString("explorer.api_key"),
			Timeout:   v.GetDuration("explorer.timeout"),
			RateLimit: v.GetInt("explorer.rate_limit"),
			RateBurst: v.GetInt("explorer.rate_burst"),
		},

		Enricher: EnricherConfig{
			Workers:      v.GetInt("enricher.workers"),
			MaxAttempts:  v.GetInt("enricher.max_attempts"),
			BaseDelay:    v.GetDuration("enricher.base_delay"),
			MaxJitter:    v.GetDuration("enricher.max_jitter"),
			MaxHashes:    v.GetInt("enricher.max_hashes"),
			BatchTimeout: v.GetDuration("enricher.batch_timeout"),
		},

		Timeline: TimelineConfig{
			PageSize:           v.GetInt("timeline.page_size"),
			MinInterval:        v.GetDuration("timeline.min_interval"),
			MaxRetries:         v.GetInt("timeline.max_retries"),
			RetryStep:          v.GetDuration("timeline.retry_step"),
			PollInterval:       v.GetDuration("timeline.poll_interval"),
			ResolveConcurrency: v.GetInt("timeline.resolve_concurrency"),
		},

		Metadata: MetadataConfig{
			IpfsGateway:    strings.TrimRight(v.GetString("metadata.ipfs_gateway"), "/"),
			ArweaveGateway: strings.TrimRight(v.GetString("metadata.arweave_gateway"), "/"),
			Timeout:        v.GetDuration("metadata.timeout"),
			MaxBytes:       v.GetInt64("metadata.max_bytes"),
		},

		Storage: StorageConfig{
			Type: v.GetString("storage.type"),
			Local: LocalStorageConfig{
				BasePath: v.GetString("storage.local.base_path"),
			},
			OSS: OSSStorageConfig{
				Endpoint:  v.GetString("storage.oss.endpoint"),
				AccessKey: v.GetString("storage.oss.access_key"),
				SecretKey: v.GetString("storage.oss.secret_key"),
				Bucket:    v.GetString("storage.oss.bucket"),
				Domain:    v.GetString("storage.oss.domain"),
			},
			S3: S3StorageConfig{
				Region:    v.GetString("storage.s3.region"),
				AccessKey: v.GetString("storage.s3.access_key"),
				SecretKey: v.GetString("storage.s3.secret_key"),
				Bucket:    v.GetString("storage.s3.bucket"),
				Domain:    v.GetString("storage.s3.domain"),
				Endpoint:  v.GetString("storage.s3.endpoint"),
			},
			MinIO: MinIOStorageConfig{
				Endpoint:  v.GetString("storage.minio.endpoint"),
				AccessKey: v.GetString("storage.minio.access_key"),
				SecretKey: v.GetString("storage.minio.secret_key"),
				Bucket:    v.GetString("storage.minio.bucket"),
				UseSSL:    v.GetBool("storage.minio.use_ssl"),
				Domain:    v.GetString("storage.minio.domain"),
			},
		},

		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
	}

	if v.IsSet("collections") {
		var collections []CollectionConfig
		if err := v.UnmarshalKey("collections", &collections); err != nil {
			log.Warnf("⚠️  Failed to parse collections: %v", err)
		}
		for _, col := range collections {
			if col.Contract == "" {
				log.Warnf("⚠️  Collection %q has no contract, skipped", col.Name)
				continue
			}
			c.Collections = append(c.Collections, col)
		}
		log.Infof("✅ Loaded %d collections", len(c.Collections))
	} else {
		log.Info("ℹ️  No collections configured, timeline will be empty")
	}

	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Port == "" {
		c.Port = "7290"
	}
	if c.SwaggerBaseUrl == "" {
		c.SwaggerBaseUrl = "localhost:" + c.Port
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Chain.CallTimeout <= 0 {
		c.Chain.CallTimeout = 10 * time.Second
	}
	if c.Explorer.BaseUrl == "" {
		c.Explorer.BaseUrl = "https://voyager.online"
	}
	if c.Explorer.Timeout <= 0 {
		c.Explorer.Timeout = 10 * time.Second
	}
	if c.Explorer.RateBurst <= 0 {
		c.Explorer.RateBurst = 1
	}
	if c.Enricher.Workers <= 0 {
		c.Enricher.Workers = 4
	}
	if c.Enricher.MaxAttempts <= 0 {
		c.Enricher.MaxAttempts = 5
	}
	if c.Enricher.BaseDelay <= 0 {
		c.Enricher.BaseDelay = 300 * time.Millisecond
	}
	if c.Enricher.MaxJitter <= 0 {
		c.Enricher.MaxJitter = 150 * time.Millisecond
	}
	if c.Enricher.MaxHashes <= 0 {
		c.Enricher.MaxHashes = 100
	}
	if c.Enricher.BatchTimeout <= 0 {
		c.Enricher.BatchTimeout = 45 * time.Second
	}
	if c.Timeline.PageSize <= 0 {
		c.Timeline.PageSize = 20
	}
	if c.Timeline.MinInterval <= 0 {
		c.Timeline.MinInterval = 2 * time.Second
	}
	if c.Timeline.MaxRetries <= 0 {
		c.Timeline.MaxRetries = 10
	}
	if c.Timeline.RetryStep <= 0 {
		c.Timeline.RetryStep = time.Second
	}
	if c.Timeline.PollInterval <= 0 {
		c.Timeline.PollInterval = 30 * time.Second
	}
	if c.Timeline.ResolveConcurrency <= 0 {
		c.Timeline.ResolveConcurrency = 8
	}
	if c.Metadata.IpfsGateway == "" {
		c.Metadata.IpfsGateway = "https://ipfs.io"
	}
	if c.Metadata.ArweaveGateway == "" {
		c.Metadata.ArweaveGateway = "https://arweave.net"
	}
	if c.Metadata.Timeout <= 0 {
		c.Metadata.Timeout = 7 * time.Second
	}
	if c.Metadata.MaxBytes <= 0 {
		c.Metadata.MaxBytes = 2 << 20 // 2MB
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.Local.BasePath == "" {
		c.Storage.Local.BasePath = "./data/files"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "aggregator"
	}
	for i := range c.Collections {
		if c.Collections[i].MaxScan <= 0 {
			c.Collections[i].MaxScan = 10000
		}
		if c.Collections[i].Name == "" {
			c.Collections[i].Name = c.Collections[i].Contract
		}
	}
}

// BucketDomains public domains of the configured buckets keyed by URI scheme
func (c *Config) BucketDomains() map[string]string {
	domains := map[string]string{}
	if c.Storage.S3.Domain != "" {
		domains["s3"] = strings.TrimRight(c.Storage.S3.Domain, "/")
	}
	if c.Storage.OSS.Domain != "" {
		domains["oss"] = strings.TrimRight(c.Storage.OSS.Domain, "/")
	}
	if c.Storage.MinIO.Domain != "" {
		domains["minio"] = strings.TrimRight(c.Storage.MinIO.Domain, "/")
	}
	return domains
}

// InitLogger apply configured log level and formatter
func InitLogger(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("⚠️  Unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
