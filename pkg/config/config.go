// Package config loads sitevault's application settings: defaults first,
// then a config file, then environment variables, each layer overriding
// the previous one.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/sitevault/pkg/errors"
	"github.com/arthur-debert/sitevault/pkg/secrets"
)

const appName = "sitevault"

// envPrefix is stripped from environment overrides, so
// SITEVAULT_STORE_MASTERKEY maps to store.masterkey.
const envPrefix = "SITEVAULT_"

// Config holds the resolved application settings.
type Config struct {
	// StorePath is where the site document lives.
	StorePath string

	// MasterKey is the base64 public key passwords are sealed under.
	// Empty means passwords are stored base64-encoded instead.
	MasterKey string

	// ProtectPasswords seals passwords on save when a MasterKey is set.
	ProtectPasswords bool
}

// Load resolves settings. When configFile is empty, config.toml then
// config.yaml are tried under the XDG config directory.
func Load(configFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if configFile != "" {
		if err := loadFile(k, configFile); err != nil {
			return nil, err
		}
	} else {
		for _, name := range []string{"config.toml", "config.yaml"} {
			path := filepath.Join(configDir(), name)
			if _, err := os.Stat(path); err == nil {
				if err := loadFile(k, path); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	return &Config{
		StorePath:        k.String("store.path"),
		MasterKey:        k.String("store.masterkey"),
		ProtectPasswords: k.Bool("store.protect"),
	}, nil
}

// Sealer builds the password sealer from the configured master key, or
// nil when sealing is disabled or no key is configured.
func (c *Config) Sealer() (secrets.Sealer, error) {
	if !c.ProtectPasswords || c.MasterKey == "" {
		return nil, nil
	}
	key, err := secrets.ParsePublicKey(c.MasterKey)
	if err != nil {
		return nil, err
	}
	return secrets.NewSealer(key), nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"store.path":      filepath.Join(configDir(), "sites.xml"),
		"store.masterkey": "",
		"store.protect":   false,
	}
}

func configDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

func loadFile(k *koanf.Koanf, path string) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrConfigParse, "unsupported config format %q", filepath.Ext(path))
}

// envToKey maps SITEVAULT_STORE_PATH to store.path.
func envToKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
}
