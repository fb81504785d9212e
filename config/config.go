package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/optimistiq/go-rolluptree/hasher"
	"github.com/optimistiq/go-rolluptree/log"
)

const envPrefix = "ROLLUPTREE"

// Config holds the tree parameters and the ambient setup
type Config struct {
	// TreeDepth is the fixed depth of the tree; capacity is 2^TreeDepth
	TreeDepth uint8 `mapstructure:"TreeDepth"`
	// Hasher selects the parent hash: "keccak", "poseidon" or "mimc7"
	Hasher string `mapstructure:"Hasher"`
	// SubTreeDepth is the default depth used by sub-tree roll-ups
	SubTreeDepth uint8 `mapstructure:"SubTreeDepth"`
	// DBPath is the sqlite file for persisted accumulators
	DBPath string `mapstructure:"DBPath"`
	// Log is the logging configuration
	Log log.Config `mapstructure:"Log"`
}

// NewHasher builds the configured hasher
func (c *Config) NewHasher() (hasher.Hasher, error) {
	switch strings.ToLower(c.Hasher) {
	case "", "keccak":
		return hasher.NewKeccak(c.TreeDepth), nil
	case "poseidon":
		return hasher.NewPoseidon(c.TreeDepth), nil
	case "mimc7":
		return hasher.NewMiMC7(c.TreeDepth), nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", c.Hasher)
	}
}

// Default returns the default configuration
func Default() (*Config, error) {
	cfg := &Config{}
	if err := loadString(cfg, DefaultValues, "toml", false); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration from a TOML file, layered on top of the
// defaults. When a file is given, environment variables prefixed with
// ROLLUPTREE_ override the keys that the file sets; keys the file leaves out
// keep the values Default returns and are not read from the environment.
func Load(configFilePath string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if configFilePath != "" {
		configData, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}
		if err := loadString(cfg, string(configData), "toml", true); err != nil {
			return nil, err
		}
		log.Infof("loaded configuration from %s", configFilePath)
	}
	return cfg, nil
}

func loadString(cfg *Config, configData string, configType string, allowEnvVars bool) error {
	viper.SetConfigType(configType)
	if allowEnvVars {
		replacer := strings.NewReplacer(".", "_")
		viper.SetEnvKeyReplacer(replacer)
		viper.SetEnvPrefix(envPrefix)
		viper.AutomaticEnv()
	}
	if err := viper.ReadConfig(bytes.NewBuffer([]byte(configData))); err != nil {
		return err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}
	return viper.Unmarshal(cfg, decodeHooks...)
}
