package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default category entry URLs for the Nike India product wall.
const defaultCategoryURLs = "https://www.nike.com/in/w/mens-shoes-nik1zy7ok," +
	"https://www.nike.com/in/w/mens-clothing-6ymx6znik1," +
	"https://www.nike.com/in/w/mens-accessories-equipment-awwpwznik1," +
	"https://www.nike.com/in/w/womens-shoes-5e1x6zy7ok," +
	"https://www.nike.com/in/w/womens-clothing-5e1x6z6ymx6," +
	"https://www.nike.com/in/w/womens-accessories-equipment-5e1x6zawwpw," +
	"https://www.nike.com/in/w/kids-shoes-v4dhzy7ok," +
	"https://www.nike.com/in/w/kids-clothing-6ymx6zv4dh," +
	"https://www.nike.com/in/w/kids-accessories-equipment-awwpwzv4dh"

// Config represents the application configuration
type Config struct {
	// Crawl configuration
	CategoryURLs  []string
	WorkerCount   int
	PageSize      int
	DelayMin      time.Duration
	DelayMax      time.Duration
	BlockTime     time.Duration
	CrawlInterval time.Duration

	// Catalog API configuration
	APIBase     string
	Marketplace string
	Language    string
	ChannelID   string

	// Storage configuration
	DBPath string

	// Optional Redis run-summary stream
	RedisAddr   string
	RedisDB     int
	RedisStream string

	// Optional Memcache rate-limit block list
	MemcacheAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	workerCount, _ := strconv.Atoi(getEnv("WORKER_COUNT", "16"))
	pageSize, _ := strconv.Atoi(getEnv("PAGE_SIZE", "100"))
	delayMinMs, _ := strconv.Atoi(getEnv("PAGE_DELAY_MIN_MS", "1000"))
	delayMaxMs, _ := strconv.Atoi(getEnv("PAGE_DELAY_MAX_MS", "3000"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "600"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "0"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		CategoryURLs:  splitURLs(getEnv("CATEGORY_URLS", defaultCategoryURLs)),
		WorkerCount:   workerCount,
		PageSize:      pageSize,
		DelayMin:      time.Duration(delayMinMs) * time.Millisecond,
		DelayMax:      time.Duration(delayMaxMs) * time.Millisecond,
		BlockTime:     time.Duration(blockSeconds) * time.Second,
		CrawlInterval: time.Duration(crawlInterval) * time.Second,
		APIBase:       getEnv("API_BASE", "https://api.nike.com"),
		Marketplace:   getEnv("MARKETPLACE", "IN"),
		Language:      getEnv("LANGUAGE", "en-GB"),
		ChannelID:     getEnv("CONSUMER_CHANNEL_ID", "d9a5bc42-4b9c-4976-858a-f159cf99c647"),
		DBPath:        getEnv("DB_PATH", "nike_tracker.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisDB:       redisDB,
		RedisStream:   getEnv("REDIS_STREAM", "crawlruns"),
		MemcacheAddr:  getEnv("MEMCACHE_ADDR", ""),
		Environment:   getEnv("NIKEWATCHER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if len(c.CategoryURLs) == 0 {
		return fmt.Errorf("no category URLs configured")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.WorkerCount)
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		return fmt.Errorf("page size must be in 1..100, got %d", c.PageSize)
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("invalid page delay range [%s, %s]", c.DelayMin, c.DelayMax)
	}
	if c.APIBase == "" {
		return fmt.Errorf("API base must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	return nil
}

// splitURLs splits a comma-separated URL list, dropping empty entries
func splitURLs(s string) []string {
	var urls []string
	for _, u := range strings.Split(s, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
