package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("database_path", "DATABASE_PATH")
		viper.BindEnv("tick_alarm_interval", "TICK_ALARM_INTERVAL")
		viper.BindEnv("whale_alarm_interval", "WHALE_ALARM_INTERVAL")
		viper.BindEnv("fetch_timeout", "FETCH_TIMEOUT")
		viper.BindEnv("recent_tick_limit", "RECENT_TICK_LIMIT")
		viper.BindEnv("sweep_concurrency", "SWEEP_CONCURRENCY")
		viper.BindEnv("send_rate", "SEND_RATE")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("database_path", "/app/data/bot.db")
		viper.SetDefault("tick_alarm_interval", 5*time.Second)
		viper.SetDefault("whale_alarm_interval", 30*time.Second)
		viper.SetDefault("fetch_timeout", 3*time.Second)
		viper.SetDefault("recent_tick_limit", 500)
		viper.SetDefault("sweep_concurrency", 8)
		viper.SetDefault("send_rate", 25.0)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
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

func GetFloat64(key string) float64 {
	InitConfig()
	return viper.GetFloat64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
