package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"sync"
	"time"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		// .env is optional, real environment variables win
		_ = godotenv.Load()

		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("api_pro_key", "API_PRO_KEY")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("updates_timeout", "UPDATES_TIMEOUT")

		viper.BindEnv("store_backend", "STORE_BACKEND")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("redis_addr", "REDIS_ADDR")
		viper.BindEnv("redis_password", "REDIS_PASSWORD")
		viper.BindEnv("redis_db", "REDIS_DB")
		viper.BindEnv("redis_key", "REDIS_KEY")

		viper.BindEnv("feed_source", "FEED_SOURCE")
		viper.BindEnv("ticker_url", "TICKER_URL")
		viper.BindEnv("quote_currency", "QUOTE_CURRENCY")

		viper.BindEnv("check_interval", "CHECK_INTERVAL")
		viper.BindEnv("fetch_timeout", "FETCH_TIMEOUT")
		viper.BindEnv("notify_timeout", "NOTIFY_TIMEOUT")
		viper.BindEnv("retire_on_notify_failure", "RETIRE_ON_NOTIFY_FAILURE")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("updates_timeout", 60)

		viper.SetDefault("store_backend", "sqlite")
		viper.SetDefault("db_path", "/app/data/bot.db")
		viper.SetDefault("redis_addr", "localhost:6379")
		viper.SetDefault("redis_db", 0)
		viper.SetDefault("redis_key", "alerts")

		viper.SetDefault("feed_source", "coindcx")
		viper.SetDefault("ticker_url", "https://public.coindcx.com/market_data/ticker")
		viper.SetDefault("quote_currency", "INR")

		viper.SetDefault("check_interval", 30*time.Second)
		viper.SetDefault("fetch_timeout", 10*time.Second)
		viper.SetDefault("notify_timeout", 10*time.Second)
		viper.SetDefault("retire_on_notify_failure", true)
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
