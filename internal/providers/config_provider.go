package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"varietyd/internal/structures"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "varietyd"

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8934)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("upstream.baseUrl", "https://sullygnome.com")
	v.SetDefault("upstream.userAgent", AppName+"/1.0")
	v.SetDefault("upstream.timeout", 20*time.Second)
	v.SetDefault("upstream.rateLimit", 5.0)
	v.SetDefault("upstream.burst", 10)
	v.SetDefault("snapshot.ttl", 10*time.Minute)
	v.SetDefault("snapshot.minYear", 2021)
	v.SetDefault("snapshot.mainGame", "Overwatch")
	v.SetDefault("snapshot.varietyThreshold", 0.30)
	v.SetDefault("snapshot.queueSize", 64)
	v.SetDefault("snapshot.requestTimeout", 30*time.Second)
	v.SetDefault("snapshot.bulkConcurrency", 2)
	v.SetDefault("cache.ttl", time.Minute)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// optional .env next to the config file
	envFile := filepath.Join(filepath.Dir(flags.ConfigPath), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("unable to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	_ = v.BindEnv("logger.level", "VARIETYD_LOG_LEVEL")
	_ = v.BindEnv("logger.dir", "VARIETYD_LOG_DIR")
	_ = v.BindEnv("upstream.baseUrl", "VARIETYD_UPSTREAM_URL")
	_ = v.BindEnv("upstream.channelId", "VARIETYD_CHANNEL_ID")
	_ = v.BindEnv("snapshot.mainGame", "VARIETYD_MAIN_GAME")
	_ = v.BindEnv("snapshot.ttl", "VARIETYD_SNAPSHOT_TTL")
	_ = v.BindEnv("cache.enabled", "VARIETYD_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "VARIETYD_CACHE_SIZE")
	_ = v.BindEnv("metrics.enabled", "VARIETYD_METRICS_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
