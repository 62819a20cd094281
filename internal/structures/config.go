package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SyncConfig struct {
	StatsInterval      time.Duration `yaml:"statsInterval" validate:"required|min:1"`
	PulseInterval      time.Duration `yaml:"pulseInterval" validate:"required|min:1"`
	HistorySamples     int           `yaml:"historySamples"`
	ActivityPerChannel int           `yaml:"activityPerChannel"`
}

type ProviderConfig struct {
	BaseURL       string   `yaml:"baseUrl" validate:"required"`
	Keys          []string `yaml:"keys"`
	RatePerSecond float64  `yaml:"ratePerSecond"`
	Burst         int      `yaml:"burst"`
}

type AuthConfig struct {
	AdminToken string `yaml:"adminToken"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Sync        SyncConfig     `yaml:"sync"`
	Provider    ProviderConfig `yaml:"provider"`
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Auth        AuthConfig     `yaml:"auth"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}
