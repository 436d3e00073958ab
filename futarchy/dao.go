package futarchy

import (
	"futarchy/config"
	"futarchy/store"
)

// DAO is the durable root record binding a governance DAO to its spot
// pool, spot PCW oracle, and configuration, per spec.md §3.
type DAO struct {
	store.Versioned

	Config      config.DAOConfig `json:"config"`
	SpotPoolID  store.ID         `json:"spot_pool_id"`
	PCWOracleID store.ID         `json:"pcw_oracle_id"`
}
