package config

import (
	"os"
	"strconv"
	"sync"
)

var (
	redisOnce   sync.Once
	redisConfig *RedisConfig
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func GetRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		loadEnv()

		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		db := 0
		if raw := os.Getenv("REDIS_DB"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				db = parsed
			}
		}

		redisConfig = &RedisConfig{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		}
	})
	return redisConfig
}
