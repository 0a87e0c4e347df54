package config

import (
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/sitevault/pkg/errors"
)

// fileSettings mirrors the config file shape for generation.
type fileSettings struct {
	Store storeSettings `toml:"store" yaml:"store"`
}

type storeSettings struct {
	Path      string `toml:"path" yaml:"path"`
	MasterKey string `toml:"masterkey" yaml:"masterkey"`
	Protect   bool   `toml:"protect" yaml:"protect"`
}

func defaultSettings() fileSettings {
	d := defaults()
	return fileSettings{
		Store: storeSettings{
			Path:      d["store.path"].(string),
			MasterKey: d["store.masterkey"].(string),
			Protect:   d["store.protect"].(bool),
		},
	}
}

// DefaultTOML renders the default settings as a TOML config file.
func DefaultTOML() ([]byte, error) {
	data, err := toml.Marshal(defaultSettings())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render default config")
	}
	return data, nil
}

// DefaultYAML renders the default settings as a YAML config file.
func DefaultYAML() ([]byte, error) {
	data, err := yaml.Marshal(defaultSettings())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render default config")
	}
	return data, nil
}
