package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"studiosync/internal/structures"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "STUDIOSYNC_LOG_LEVEL")
	viper.BindEnv("sync.statsInterval", "STUDIOSYNC_STATS_INTERVAL")
	viper.BindEnv("sync.pulseInterval", "STUDIOSYNC_PULSE_INTERVAL")
	viper.BindEnv("provider.keys", "STUDIOSYNC_API_KEYS")
	viper.BindEnv("auth.adminToken", "STUDIOSYNC_ADMIN_TOKEN")
	viper.BindEnv("cache.enabled", "STUDIOSYNC_CACHE_ENABLED")
	viper.BindEnv("cache.size", "STUDIOSYNC_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	// Keys supplied through the environment arrive as one comma-joined string.
	if len(conf.Provider.Keys) == 1 && strings.Contains(conf.Provider.Keys[0], ",") {
		conf.Provider.Keys = strings.Split(conf.Provider.Keys[0], ",")
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	applyDefaults(&conf)

	conf.AppName = "StudioSync"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func applyDefaults(conf *structures.Config) {
	if conf.Sync.HistorySamples <= 0 {
		conf.Sync.HistorySamples = 30
	}
	if conf.Sync.ActivityPerChannel <= 0 {
		conf.Sync.ActivityPerChannel = 5
	}
	if conf.Provider.RatePerSecond <= 0 {
		conf.Provider.RatePerSecond = 5
	}
	if conf.Provider.Burst <= 0 {
		conf.Provider.Burst = 10
	}
	if conf.Cache.TTL <= 0 {
		conf.Cache.TTL = 30
	}
}
