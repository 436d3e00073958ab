// Package config loads the protocol's per-DAO and global configuration,
// following the teacher's TOML load/create-default idiom (config/config.go).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"futarchy/fxmath"
)

// DAOConfig holds the per-DAO tunables enumerated in spec.md §6.
type DAOConfig struct {
	ReviewPeriodMs    int64 `toml:"ReviewPeriodMs" yaml:"ReviewPeriodMs"`
	TradingPeriodMs   int64 `toml:"TradingPeriodMs" yaml:"TradingPeriodMs"`
	ExecutionWindowMs int64 `toml:"ExecutionWindowMs" yaml:"ExecutionWindowMs"`

	AMMFeeBps            uint32 `toml:"AMMFeeBps" yaml:"AMMFeeBps"`
	MaxOutcomes          int    `toml:"MaxOutcomes" yaml:"MaxOutcomes"`
	MaxActionsPerOutcome int    `toml:"MaxActionsPerOutcome" yaml:"MaxActionsPerOutcome"`

	ProposalFeePerOutcome string `toml:"ProposalFeePerOutcome" yaml:"ProposalFeePerOutcome"` // decimal literal, parsed via fxmath.ParsePrice

	TWAPStartDelayMs int64  `toml:"TWAPStartDelayMs" yaml:"TWAPStartDelayMs"`
	TWAPStepMax      string `toml:"TWAPStepMax" yaml:"TWAPStepMax"`

	// TWAPWinThreshold is a SignedU128 serialized as "-"-prefixed decimal.
	TWAPWinThreshold string `toml:"TWAPWinThreshold" yaml:"TWAPWinThreshold"`

	ConditionalLiquidityRatioPct uint32 `toml:"ConditionalLiquidityRatioPct" yaml:"ConditionalLiquidityRatioPct"`
	MinConditionalLiquidity      string `toml:"MinConditionalLiquidity" yaml:"MinConditionalLiquidity"`

	// SponsorshipBiasMode resolves spec.md §7 Open Question (c): the bias
	// a sponsor's threshold applies to TWAP-based winner selection is
	// always additive in this implementation.
	SponsorshipBiasMode string `toml:"SponsorshipBiasMode" yaml:"SponsorshipBiasMode"`

	PCWWindowSizeMs   int64  `toml:"PCWWindowSizeMs" yaml:"PCWWindowSizeMs"`
	PCWMaxMovementPpm uint64 `toml:"PCWMaxMovementPpm" yaml:"PCWMaxMovementPpm"`
}

// ProposalFee parses ProposalFeePerOutcome into a Price.
func (c *DAOConfig) ProposalFee() (fxmath.Price, error) {
	return fxmath.ParsePrice(c.ProposalFeePerOutcome)
}

// TWAPStep parses TWAPStepMax into a Price.
func (c *DAOConfig) TWAPStep() (fxmath.Price, error) {
	return fxmath.ParsePrice(c.TWAPStepMax)
}

// WinThreshold parses TWAPWinThreshold into a SignedU128.
func (c *DAOConfig) WinThreshold() (fxmath.SignedU128, error) {
	return fxmath.ParseSignedU128(c.TWAPWinThreshold)
}

// MinConditionalLiquidityPrice parses MinConditionalLiquidity into a Price.
func (c *DAOConfig) MinConditionalLiquidityPrice() (fxmath.Price, error) {
	return fxmath.ParsePrice(c.MinConditionalLiquidity)
}

func defaultDAOConfig() *DAOConfig {
	return &DAOConfig{
		ReviewPeriodMs:               30_000,
		TradingPeriodMs:              60_000,
		ExecutionWindowMs:            600_000,
		AMMFeeBps:                    30,
		MaxOutcomes:                  8,
		MaxActionsPerOutcome:         16,
		ProposalFeePerOutcome:        "0",
		TWAPStartDelayMs:             0,
		TWAPStepMax:                  "1000000000000000",
		TWAPWinThreshold:             "0",
		ConditionalLiquidityRatioPct: 50,
		MinConditionalLiquidity:      "0",
		SponsorshipBiasMode:          "additive",
		PCWWindowSizeMs:              3_600_000,
		PCWMaxMovementPpm:            50_000,
	}
}

// LoadDAOConfig loads a DAOConfig from path, writing and returning the
// defaults if the file does not yet exist (teacher's config.Load idiom).
func LoadDAOConfig(path string) (*DAOConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultDAOConfig(path)
	}
	cfg := &DAOConfig{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createDefaultDAOConfig(path string) (*DAOConfig, error) {
	cfg := defaultDAOConfig()
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

// DAOConfigBundle is a named set of DAOConfig fixtures, keyed by DAO label,
// for operators who provision many DAOs from one policy bundle rather than
// one TOML file per DAO.
type DAOConfigBundle map[string]*DAOConfig

// LoadDAOConfigBundle loads a YAML bundle of named DAOConfig fixtures from
// path, validating every entry. Secondary to LoadDAOConfig's per-DAO TOML
// file, matching the teacher's use of gopkg.in/yaml.v3 alongside TOML for
// bulk fixture loading.
func LoadDAOConfigBundle(path string) (DAOConfigBundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	bundle := make(DAOConfigBundle)
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("config: decode dao config bundle: %w", err)
	}
	for name, cfg := range bundle {
		if cfg == nil {
			return nil, fmt.Errorf("config: bundle entry %q is empty", name)
		}
		if err := ValidateDAOConfig(cfg); err != nil {
			return nil, fmt.Errorf("config: bundle entry %q: %w", name, err)
		}
	}
	return bundle, nil
}
