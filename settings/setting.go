package settings

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func InitSettings(confPath string) {
	viper.SetDefault("server.ip", "")
	viper.SetDefault("server.port", 8081)
	viper.SetDefault("server.lang", "en")
	viper.SetDefault("server.start_time", "2025-03-01") // snowflake epoch
	viper.SetDefault("server.machine_id", 1)
	viper.SetDefault("server.develop_mode", false)
	viper.SetDefault("server.shutdown_waitting_time", 30) // 收到 SIGINT 后最多等待 30s

	viper.SetDefault("CORF.frontend_path", "http://localhost:5173")

	viper.SetDefault("api.base_url", "http://localhost:8080")
	viper.SetDefault("api.timeout", 10)
	viper.SetDefault("api.rps", 50) // 对后端的请求速率上限

	viper.SetDefault("store.cache_ttl", 5) // 帖子分页缓存 5s 有效
	viper.SetDefault("store.cache_size", 256)
	viper.SetDefault("store.page_size", 20)
	viper.SetDefault("store.search_timeout", 8)
	viper.SetDefault("store.offline_search", true)

	viper.SetDefault("session.size", 1024)
	viper.SetDefault("session.idle_expire", 1800)

	viper.SetDefault("localstore.driver", "sqlite")
	viper.SetDefault("localstore.sqlite_path", "./data/localstore.db")
	viper.SetDefault("localstore.retention_days", 30)

	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.poolsize", 10)
	viper.SetDefault("redis.max_oper_time", 3)

	viper.SetDefault("weblog.sink", "http")
	viper.SetDefault("weblog.flush_interval", 5)
	viper.SetDefault("weblog.batch_size", 100)
	viper.SetDefault("weblog.pool_size", 4)
	viper.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	viper.SetDefault("kafka.topic_weblog", "eum-weblog")
	viper.SetDefault("kafka.producer_retry_time", 3)

	viper.SetDefault("ratelimit.rate", 1000)
	viper.SetDefault("ratelimit.capacity", 5000)

	viper.SetDefault("logger.level", 0)
	viper.SetDefault("logger.path", "./logs/eum.log")
	viper.SetDefault("logger.max_size", 16)
	viper.SetDefault("logger.max_backups", 5)
	viper.SetDefault("logger.compress", false)
	viper.SetDefault("logger.console", true)

	// .env 是可选的，与前端共用 VITE_API_BASE_URL
	_ = godotenv.Load()
	_ = viper.BindEnv("api.base_url", "VITE_API_BASE_URL")

	if _, err := os.Stat(confPath); err != nil {
		return // 没有配置文件时只使用默认值和环境变量
	}
	viper.SetConfigFile(confPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(err.Error())
	}
}
