package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lagoon-protocol/vault-deployer/core/chain"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath    = "config.json"
	DefaultAddressesPath = "addresses.toml"
	DefaultChainsPath    = "chains.toml"
)

// ChainCfg lists extra RPC endpoints for one chain. They are tried before the
// registry defaults.
type ChainCfg struct {
	Rpcs []string `toml:"rpcs" json:"rpcs"`
}

// ChainsCfg is keyed by chain id.
type ChainsCfg struct {
	Chains map[string]ChainCfg `toml:"chains"`
}

// loadChainConfig reads the optional chains.toml. A missing file yields an
// empty config.
func loadChainConfig(filePath string) (*ChainsCfg, error) {
	cfg := &ChainsCfg{Chains: map[string]ChainCfg{}}
	if filePath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(filePath, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return cfg, nil
}

// Overrides converts the config to the per-chain endpoint map of the client
// factory.
func (c *ChainsCfg) Overrides() (map[uint64][]string, error) {
	overrides := make(map[uint64][]string, len(c.Chains))
	for key, chainCfg := range c.Chains {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chains.%s: chain id is not a number", key)
		}
		if err := chain.AssertValidChainID(id); err != nil {
			return nil, fmt.Errorf("chains.%s: %w", key, err)
		}
		overrides[id] = chainCfg.Rpcs
	}
	return overrides, nil
}

// LoadConfig reads the deployment config. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON. Unknown keys are rejected.
func LoadConfig(filePath string) (*types.Config, error) {
	dat, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := new(types.Config)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(dat))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(dat))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %v: %w", filePath, err, types.ErrValidation)
	}

	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("config %s: chainId is required: %w", filePath, types.ErrValidation)
	}
	if len(cfg.Vaults) == 0 {
		return nil, fmt.Errorf("config %s: vaultsToDeploy is empty: %w", filePath, types.ErrValidation)
	}
	return cfg, nil
}
