package config

import "time"

type Config struct {
	Port        int           `mapstructure:"port"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFile     string        `mapstructure:"log_file"`
	NATSURL     string        `mapstructure:"nats_url"`
	RedisURL    string        `mapstructure:"redis_url"`
	DatabaseURL string        `mapstructure:"database_url"`
	CachePrefix string        `mapstructure:"cache_prefix"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}
