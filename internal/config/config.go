package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all client configuration
type Config struct {
	API     APIConfig
	Cache   CacheConfig
	Feed    FeedConfig
	Search  SearchConfig
	Media   MediaConfig
	Logging LoggingConfig
}

// APIConfig holds command-endpoint settings
type APIConfig struct {
	Endpoint           string
	Token              string
	UserID             string
	Timeout            time.Duration
	MinRequestInterval time.Duration
}

// CacheConfig holds resolver cache configuration
type CacheConfig struct {
	Backend    string // "memory" or "redis"
	RedisAddr  string
	CommentTTL time.Duration
}

// FeedConfig holds pagination settings
type FeedConfig struct {
	PageLimit int
}

// SearchConfig holds search overlay settings. Query, when set, makes the
// demo binary run one search against the loaded feed.
type SearchConfig struct {
	Debounce time.Duration
	Query    string
}

// MediaConfig holds signed-URL resolution settings. When Presign is enabled
// the client presigns media URLs directly against the bucket instead of
// asking the backend.
type MediaConfig struct {
	SignedURLTTL time.Duration
	Presign      bool
	AWSRegion    string
	Bucket       string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	endpoint := flag.String("endpoint", "", "Command dispatch endpoint URL")
	token := flag.String("token", "", "Bearer token for API requests")
	userID := flag.String("user-id", "", "User ID for user-scoped commands")
	timeout := flag.Duration("timeout", 8*time.Second, "Request timeout (clamped to 5-10s)")
	minInterval := flag.Duration("min-request-interval", 0, "Minimum delay between requests to the endpoint (0 disables)")
	cacheBackend := flag.String("cache-backend", "memory", "Resolver cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	commentTTL := flag.Duration("comment-cache-ttl", 30*time.Second, "Comment count cache TTL")
	pageLimit := flag.Int("page-limit", 10, "Posts per feed page")
	debounce := flag.Duration("search-debounce", 300*time.Millisecond, "Search input quiet period")
	searchQuery := flag.String("search-query", "", "Run one search against the loaded feed")
	signedURLTTL := flag.Duration("signed-url-ttl", 15*time.Minute, "Signed media URL lifetime")
	presign := flag.Bool("presign", false, "Presign media URLs directly against S3")
	awsRegion := flag.String("aws-region", "", "AWS region for direct presigning")
	bucket := flag.String("media-bucket", "", "S3 bucket for direct presigning")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()

	applyEnvOverrides(endpoint, token, userID, timeout, minInterval, cacheBackend,
		redisAddr, commentTTL, pageLimit, debounce, searchQuery, signedURLTTL, presign, awsRegion, bucket, logLevel)

	return &Config{
		API: APIConfig{
			Endpoint:           *endpoint,
			Token:              *token,
			UserID:             *userID,
			Timeout:            *timeout,
			MinRequestInterval: *minInterval,
		},
		Cache: CacheConfig{
			Backend:    *cacheBackend,
			RedisAddr:  *redisAddr,
			CommentTTL: *commentTTL,
		},
		Feed: FeedConfig{
			PageLimit: *pageLimit,
		},
		Search: SearchConfig{
			Debounce: *debounce,
			Query:    *searchQuery,
		},
		Media: MediaConfig{
			SignedURLTTL: *signedURLTTL,
			Presign:      *presign,
			AWSRegion:    *awsRegion,
			Bucket:       *bucket,
		},
		Logging: LoggingConfig{
			Level: *logLevel,
		},
	}
}

func applyEnvOverrides(
	endpoint *string,
	token *string,
	userID *string,
	timeout *time.Duration,
	minInterval *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	commentTTL *time.Duration,
	pageLimit *int,
	debounce *time.Duration,
	searchQuery *string,
	signedURLTTL *time.Duration,
	presign *bool,
	awsRegion *string,
	bucket *string,
	logLevel *string,
) {
	if v := os.Getenv("FEED_ENDPOINT"); v != "" {
		*endpoint = v
	}
	if v := os.Getenv("FEED_TOKEN"); v != "" {
		*token = v
	}
	if v := os.Getenv("FEED_USER_ID"); v != "" {
		*userID = v
	}
	if v := os.Getenv("FEED_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*timeout = d
		}
	}
	if v := os.Getenv("FEED_MIN_REQUEST_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*minInterval = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("COMMENT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*commentTTL = d
		}
	}
	if v := os.Getenv("FEED_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*pageLimit = n
		}
	}
	if v := os.Getenv("SEARCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*debounce = d
		}
	}
	if v := os.Getenv("SEARCH_QUERY"); v != "" {
		*searchQuery = v
	}
	if v := os.Getenv("SIGNED_URL_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*signedURLTTL = d
		}
	}
	if v := os.Getenv("MEDIA_PRESIGN"); v == "true" || v == "1" {
		*presign = true
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		*awsRegion = v
	}
	if v := os.Getenv("MEDIA_BUCKET"); v != "" {
		*bucket = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
}
