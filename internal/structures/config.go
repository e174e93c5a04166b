package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type UpstreamConfig struct {
	BaseUrl   string        `yaml:"baseUrl" validate:"required|fullUrl"`
	ChannelId string        `yaml:"channelId" validate:"required"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout" validate:"required|min:1"`
	RateLimit float64       `yaml:"rateLimit"`
	Burst     int           `yaml:"burst"`
}

type SnapshotConfig struct {
	TTL              time.Duration `yaml:"ttl" validate:"required|min:1"`
	MinYear          int           `yaml:"minYear" validate:"required|min:2000"`
	MainGame         string        `yaml:"mainGame" validate:"required"`
	VarietyThreshold float64       `yaml:"varietyThreshold"`
	QueueSize        int           `yaml:"queueSize" validate:"required|min:1"`
	RequestTimeout   time.Duration `yaml:"requestTimeout" validate:"required|min:1"`
	BulkConcurrency  int           `yaml:"bulkConcurrency"`
	WarmInterval     time.Duration `yaml:"warmInterval"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server         `yaml:"webServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Upstream  UpstreamConfig `yaml:"upstream"`
	Snapshot  SnapshotConfig `yaml:"snapshot"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
