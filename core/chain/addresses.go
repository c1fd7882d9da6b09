package chain

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lagoon-protocol/vault-deployer/core/types"
)

// DeploymentAddresses is the factory to call and the logic contract the new
// proxy delegates to. Logic is the zero address for the latest version, in
// which case the factory uses its own default logic.
type DeploymentAddresses struct {
	Factory common.Address
	Logic   common.Address
}

type addressBookCfg struct {
	Chains map[string]chainAddressesCfg `toml:"chains"`
}

type chainAddressesCfg struct {
	Factory  string            `toml:"factory"`
	Versions map[string]string `toml:"versions"`
}

type chainAddresses struct {
	factory  common.Address
	versions map[string]common.Address
}

// AddressBook holds the externally provisioned factory and per-version logic
// addresses of every chain. It is read-only once loaded.
type AddressBook struct {
	chains map[uint64]chainAddresses
}

func LoadAddressBook(filePath string) (*AddressBook, error) {
	cfg := new(addressBookCfg)
	if _, err := toml.DecodeFile(filePath, cfg); err != nil {
		return nil, fmt.Errorf("decode address book %s: %w", filePath, err)
	}
	return newAddressBook(cfg)
}

func ParseAddressBook(data string) (*AddressBook, error) {
	cfg := new(addressBookCfg)
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("decode address book: %w", err)
	}
	return newAddressBook(cfg)
}

func newAddressBook(cfg *addressBookCfg) (*AddressBook, error) {
	book := &AddressBook{chains: make(map[uint64]chainAddresses, len(cfg.Chains))}
	for key, c := range cfg.Chains {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("address book: invalid chain id %q", key)
		}
		if err := AssertValidChainID(id); err != nil {
			return nil, fmt.Errorf("address book: %w", err)
		}
		if !common.IsHexAddress(c.Factory) {
			return nil, fmt.Errorf("address book: chain %d: invalid factory address %q", id, c.Factory)
		}

		entry := chainAddresses{
			factory:  common.HexToAddress(c.Factory),
			versions: make(map[string]common.Address, len(c.Versions)),
		}
		for version, addr := range c.Versions {
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("address book: chain %d version %s: invalid address %q", id, version, addr)
			}
			entry.versions[NormalizeVersion(version)] = common.HexToAddress(addr)
		}
		book.chains[id] = entry
	}
	return book, nil
}

// NormalizeVersion maps "v0.5.0", "0.5.0" and "0_5_0" to the same key.
func NormalizeVersion(version string) string {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	return strings.ReplaceAll(v, ".", "_")
}

// Resolve returns the factory and logic address for a version on a chain.
// Versions match exactly after normalization; there is no fallback to a
// nearby version.
func (b *AddressBook) Resolve(chainID uint64, version string) (DeploymentAddresses, error) {
	if err := AssertValidChainID(chainID); err != nil {
		return DeploymentAddresses{}, err
	}

	entry, registered := b.chains[chainID]
	if version == types.LatestVersion {
		if !registered {
			return DeploymentAddresses{}, fmt.Errorf("chain %d is supported but has no factory in the address book: %w", chainID, types.ErrUnsupportedChain)
		}
		return DeploymentAddresses{Factory: entry.factory}, nil
	}

	logic, ok := entry.versions[NormalizeVersion(version)]
	if !ok {
		return DeploymentAddresses{}, fmt.Errorf("version %q on chain %d (known: %s): %w",
			version, chainID, strings.Join(b.Versions(chainID), ", "), types.ErrUnsupportedVersion)
	}
	return DeploymentAddresses{Factory: entry.factory, Logic: logic}, nil
}

// Versions lists the registered version keys of a chain.
func (b *AddressBook) Versions(chainID uint64) []string {
	entry, ok := b.chains[chainID]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(entry.versions))
}

// Has reports whether a factory is registered for the chain.
func (b *AddressBook) Has(chainID uint64) bool {
	_, ok := b.chains[chainID]
	return ok
}
