package conf

import (
	"fmt"
	"os"

	"github.com/ccfos/solo/elect/econf"
	"github.com/ccfos/solo/pkg/cfg"
	"github.com/ccfos/solo/pkg/httpx"
	"github.com/ccfos/solo/pkg/logx"
	"github.com/ccfos/solo/storage"
)

type ConfigType struct {
	Global   GlobalConfig
	Log      logx.Config
	HTTP     httpx.Config
	Redis    storage.RedisConfig
	Election econf.Election
}

type GlobalConfig struct {
	RunMode string
}

func InitConfig(configDir string) (*ConfigType, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config dir %s not exist", configDir)
	}

	var config = new(ConfigType)

	if err := cfg.LoadConfigByDir(configDir, config); err != nil {
		return nil, fmt.Errorf("failed to load configs of directory: %s error: %s", configDir, err)
	}

	config.Election.PreCheck()

	if config.Global.RunMode == "" {
		config.Global.RunMode = "release"
	}

	if config.HTTP.ShutdownTimeout == 0 {
		config.HTTP.ShutdownTimeout = 30
	}

	return config, nil
}
