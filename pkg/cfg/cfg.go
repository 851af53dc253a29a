package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/koding/multiconfig"
)

// LoadConfigByDir loads every recognized config file under configDir into
// configPtr. Files are applied in lexical order, later files override
// earlier ones, environment variables override everything.
func LoadConfigByDir(configDir string, configPtr interface{}) error {
	var fpaths []string

	err := filepath.Walk(configDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".toml", ".conf", ".json", ".yaml", ".yml":
			fpaths = append(fpaths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk config dir %s: %v", configDir, err)
	}

	if len(fpaths) == 0 {
		return fmt.Errorf("no config file found under %s, valid exts: .conf,.toml,.json,.yaml,.yml", configDir)
	}

	sort.Strings(fpaths)

	loaders := []multiconfig.Loader{
		&multiconfig.TagLoader{},
	}

	for _, fpath := range fpaths {
		switch {
		case strings.HasSuffix(fpath, "toml"), strings.HasSuffix(fpath, "conf"):
			loaders = append(loaders, &multiconfig.TOMLLoader{Path: fpath})
		case strings.HasSuffix(fpath, "json"):
			loaders = append(loaders, &multiconfig.JSONLoader{Path: fpath})
		case strings.HasSuffix(fpath, "yaml"), strings.HasSuffix(fpath, "yml"):
			loaders = append(loaders, &multiconfig.YAMLLoader{Path: fpath})
		}
	}

	loaders = append(loaders, &multiconfig.EnvironmentLoader{})

	m := multiconfig.DefaultLoader{
		Loader:    multiconfig.MultiLoader(loaders...),
		Validator: multiconfig.MultiValidator(&multiconfig.RequiredValidator{}),
	}

	return m.Load(configPtr)
}
