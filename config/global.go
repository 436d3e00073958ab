package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Global is the daemon-level (non-DAO) configuration: storage location,
// observability endpoints, and a DefaultDAO parameter set written into the
// default file. CreateDAO always takes an explicit DAOConfig; nothing in
// this module reads DefaultDAO.
type Global struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	BoltPath      string `toml:"BoltPath"`

	LogLevel   string `toml:"LogLevel"`
	MetricsAddr string `toml:"MetricsAddr"`
	OTELEndpoint string `toml:"OTELEndpoint"`

	SwapRateLimitPerSec float64 `toml:"SwapRateLimitPerSec"`
	SwapRateLimitBurst  int     `toml:"SwapRateLimitBurst"`

	DefaultDAO DAOConfig `toml:"DefaultDAO"`
}

func defaultGlobal() *Global {
	return &Global{
		ListenAddress:       ":7700",
		DataDir:             "./futarchy-data",
		BoltPath:            "./futarchy-data/futarchy.db",
		LogLevel:            "info",
		MetricsAddr:         ":9464",
		OTELEndpoint:        "",
		SwapRateLimitPerSec: 50,
		SwapRateLimitBurst:  100,
		DefaultDAO:          *defaultDAOConfig(),
	}
}

// LoadGlobal loads Global from path, creating and persisting a default
// configuration file if none exists yet.
func LoadGlobal(path string) (*Global, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultGlobal(path)
	}
	cfg := &Global{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefaultGlobal(path string) (*Global, error) {
	cfg := defaultGlobal()
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
