package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"
)

// LatestVersion selects the logic contract the factory currently points to.
const LatestVersion = "latest"

type Config struct {
	ChainID uint64        `json:"chainId" yaml:"chainId"`
	Vaults  []VaultConfig `json:"vaultsToDeploy" yaml:"vaultsToDeploy"`
}

// VaultConfig is one vault entry as written in the config file. Values are
// kept textual so a malformed entry is reported against its index instead of
// failing the whole file decode.
type VaultConfig struct {
	Version            string         `json:"version" yaml:"version"`
	InitialDelay       NumberOrString `json:"initialDelay,omitempty" yaml:"initialDelay,omitempty"`
	InitialOwner       string         `json:"initialOwner,omitempty" yaml:"initialOwner,omitempty"`
	Underlying         string         `json:"underlying" yaml:"underlying"`
	Name               string         `json:"name" yaml:"name"`
	Symbol             string         `json:"symbol" yaml:"symbol"`
	Safe               string         `json:"safe" yaml:"safe"`
	Admin              string         `json:"admin" yaml:"admin"`
	WhitelistManager   string         `json:"whitelistManager" yaml:"whitelistManager"`
	FeeReceiver        string         `json:"feeReceiver" yaml:"feeReceiver"`
	ValuationManager   string         `json:"valuationManager" yaml:"valuationManager"`
	PerformanceRate    int64          `json:"performanceRate" yaml:"performanceRate"`
	ManagementRate     int64          `json:"managementRate" yaml:"managementRate"`
	RateUpdateCooldown NumberOrString `json:"rateUpdateCooldown" yaml:"rateUpdateCooldown"`
	EnableWhitelist    bool           `json:"enableWhitelist" yaml:"enableWhitelist"`
	Salt               string         `json:"salt,omitempty" yaml:"salt,omitempty"`
}

// VaultInit mirrors the factory's InitStruct tuple. Field names map to the
// ABI component names.
type VaultInit struct {
	Underlying         common.Address
	Name               string
	Symbol             string
	Safe               common.Address
	WhitelistManager   common.Address
	ValuationManager   common.Address
	Admin              common.Address
	FeeReceiver        common.Address
	ManagementRate     uint16
	PerformanceRate    uint16
	EnableWhitelist    bool
	RateUpdateCooldown *big.Int
}

// VaultParams is a validated VaultConfig. Optional values stay nil when the
// config did not set them.
type VaultParams struct {
	Version      string
	InitialDelay *big.Int
	InitialOwner *common.Address
	Salt         *common.Hash
	Init         VaultInit
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Validate checks every field of the entry at position index and returns the
// typed parameters. Errors are *FieldError and match ErrValidation.
func (v VaultConfig) Validate(index int) (*VaultParams, error) {
	fail := func(field, msg string) (*VaultParams, error) {
		return nil, &FieldError{Index: index, Field: field, Msg: msg}
	}

	p := &VaultParams{Version: strings.TrimSpace(v.Version)}
	if p.Version == "" {
		return fail("version", "required")
	}
	if v.Name == "" {
		return fail("name", "required")
	}
	if v.Symbol == "" {
		return fail("symbol", "required")
	}

	required := []struct {
		field string
		value string
		dst   *common.Address
	}{
		{"underlying", v.Underlying, &p.Init.Underlying},
		{"safe", v.Safe, &p.Init.Safe},
		{"admin", v.Admin, &p.Init.Admin},
		{"feeReceiver", v.FeeReceiver, &p.Init.FeeReceiver},
		{"valuationManager", v.ValuationManager, &p.Init.ValuationManager},
	}
	for _, r := range required {
		addr, err := parseAddress(r.value)
		if err != nil {
			return fail(r.field, err.Error())
		}
		*r.dst = addr
	}

	if v.WhitelistManager != "" {
		addr, err := parseAddress(v.WhitelistManager)
		if err != nil {
			return fail("whitelistManager", err.Error())
		}
		p.Init.WhitelistManager = addr
	}

	if v.InitialOwner != "" {
		addr, err := parseAddress(v.InitialOwner)
		if err != nil {
			return fail("initialOwner", err.Error())
		}
		p.InitialOwner = &addr
	}

	if v.PerformanceRate < 0 || v.PerformanceRate > 0xffff {
		return fail("performanceRate", "must be between 0 and 65535")
	}
	if v.ManagementRate < 0 || v.ManagementRate > 0xffff {
		return fail("managementRate", "must be between 0 and 65535")
	}
	p.Init.PerformanceRate = uint16(v.PerformanceRate)
	p.Init.ManagementRate = uint16(v.ManagementRate)

	cooldown, err := v.RateUpdateCooldown.Uint256()
	if err != nil {
		return fail("rateUpdateCooldown", err.Error())
	}
	if cooldown == nil {
		return fail("rateUpdateCooldown", "required")
	}
	p.Init.RateUpdateCooldown = cooldown

	delay, err := v.InitialDelay.Uint256()
	if err != nil {
		return fail("initialDelay", err.Error())
	}
	p.InitialDelay = delay

	if v.Salt != "" {
		b, err := hexutil.Decode(v.Salt)
		if err != nil || len(b) != common.HashLength {
			return fail("salt", "must be 0x-prefixed 32-byte hex")
		}
		salt := common.BytesToHash(b)
		p.Salt = &salt
	}

	p.Init.Name = v.Name
	p.Init.Symbol = v.Symbol
	p.Init.EnableWhitelist = v.EnableWhitelist

	return p, nil
}

func parseAddress(v string) (common.Address, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return common.Address{}, errors.New("required")
	}
	if !strings.HasPrefix(v, "0x") || !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("invalid address %s", v)
	}
	return common.HexToAddress(v), nil
}

// NumberOrString holds an unsigned integer written either as a JSON number
// or as a decimal (or 0x-hex) string.
type NumberOrString string

func (n *NumberOrString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberOrString(s)
		return nil
	}
	*n = NumberOrString(data)
	return nil
}

func (n NumberOrString) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if _, ok := new(big.Int).SetString(string(n), 10); ok {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

func (n *NumberOrString) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*n = ""
		return nil
	}
	*n = NumberOrString(node.Value)
	return nil
}

// Uint256 parses the value. It returns nil, nil when the value is unset.
func (n NumberOrString) Uint256() (*big.Int, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return nil, nil
	}

	var (
		v  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("not an integer: %s", s)
	}
	if v.Sign() < 0 {
		return nil, errors.New("must not be negative")
	}
	if v.Cmp(maxUint256) > 0 {
		return nil, errors.New("does not fit uint256")
	}
	return v, nil
}
