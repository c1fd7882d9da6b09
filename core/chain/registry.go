package chain

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lagoon-protocol/vault-deployer/core/types"
)

type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type Explorer struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	APIURL string `json:"apiUrl,omitempty"`
}

// Descriptor is the static metadata of one supported chain. ShortName is the
// EIP-3770 prefix used by Safe app links.
type Descriptor struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	ShortName      string          `json:"shortName"`
	NativeCurrency Currency        `json:"nativeCurrency"`
	RPCURLs        []string        `json:"rpcUrls"`
	Explorer       *Explorer       `json:"explorer,omitempty"`
	Multicall3     *common.Address `json:"multicall3,omitempty"`
}

var (
	ether      = Currency{Name: "Ether", Symbol: "ETH", Decimals: 18}
	multicall3 = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")
)

var descriptors = map[uint64]Descriptor{
	1: {
		Name: "Ethereum", ShortName: "eth", NativeCurrency: ether,
		RPCURLs:  []string{"https://eth.merkle.io", "https://cloudflare-eth.com"},
		Explorer: &Explorer{Name: "Etherscan", URL: "https://etherscan.io", APIURL: "https://api.etherscan.io/api"},
	},
	10: {
		Name: "OP Mainnet", ShortName: "oeth", NativeCurrency: ether,
		RPCURLs:  []string{"https://mainnet.optimism.io"},
		Explorer: &Explorer{Name: "Optimism Explorer", URL: "https://optimistic.etherscan.io"},
	},
	56: {
		Name: "BNB Smart Chain", ShortName: "bnb",
		NativeCurrency: Currency{Name: "BNB", Symbol: "BNB", Decimals: 18},
		RPCURLs:        []string{"https://bsc-dataseed.bnbchain.org"},
		Explorer:       &Explorer{Name: "BscScan", URL: "https://bscscan.com"},
	},
	130: {
		Name: "Unichain", ShortName: "unichain", NativeCurrency: ether,
		RPCURLs:  []string{"https://mainnet.unichain.org"},
		Explorer: &Explorer{Name: "Uniscan", URL: "https://uniscan.xyz"},
	},
	137: {
		Name: "Polygon", ShortName: "matic",
		NativeCurrency: Currency{Name: "POL", Symbol: "POL", Decimals: 18},
		RPCURLs:        []string{"https://polygon-rpc.com"},
		Explorer:       &Explorer{Name: "PolygonScan", URL: "https://polygonscan.com"},
	},
	146: {
		Name: "Sonic", ShortName: "sonic",
		NativeCurrency: Currency{Name: "Sonic", Symbol: "S", Decimals: 18},
		RPCURLs:        []string{"https://rpc.soniclabs.com"},
		Explorer:       &Explorer{Name: "Sonic Explorer", URL: "https://sonicscan.org"},
	},
	239: {
		Name: "TAC", ShortName: "tac",
		NativeCurrency: Currency{Name: "TAC", Symbol: "TAC", Decimals: 18},
		RPCURLs:        []string{"https://rpc.ankr.com/tac"},
		Explorer:       &Explorer{Name: "TAC Explorer", URL: "https://explorer.tac.build"},
	},
	480: {
		Name: "World Chain", ShortName: "wc", NativeCurrency: ether,
		RPCURLs:  []string{"https://worldchain-mainnet.g.alchemy.com/public"},
		Explorer: &Explorer{Name: "Worldscan", URL: "https://worldscan.org"},
	},
	999: {
		Name: "HyperEVM", ShortName: "hyper",
		NativeCurrency: Currency{Name: "HYPE", Symbol: "HYPE", Decimals: 18},
		RPCURLs:        []string{"https://hyperliquid.drpc.org"},
		Explorer:       &Explorer{Name: "HyperEVMScan", URL: "https://hyperevmscan.io"},
	},
	5000: {
		Name: "Mantle", ShortName: "mantle",
		NativeCurrency: Currency{Name: "Mantle", Symbol: "MNT", Decimals: 18},
		RPCURLs:        []string{"https://rpc.mantle.xyz"},
		Explorer:       &Explorer{Name: "Mantle Explorer", URL: "https://mantlescan.xyz"},
	},
	8453: {
		Name: "Base", ShortName: "base", NativeCurrency: ether,
		RPCURLs:  []string{"https://mainnet.base.org"},
		Explorer: &Explorer{Name: "Basescan", URL: "https://basescan.org", APIURL: "https://api.basescan.org/api"},
	},
	9745: {
		Name: "Plasma", ShortName: "plasma",
		NativeCurrency: Currency{Name: "Plasma", Symbol: "XPL", Decimals: 18},
		RPCURLs:        []string{"https://rpc.plasma.to"},
		Explorer:       &Explorer{Name: "Plasmascan", URL: "https://plasmascan.to"},
	},
	42161: {
		Name: "Arbitrum One", ShortName: "arb1", NativeCurrency: ether,
		RPCURLs:  []string{"https://arb1.arbitrum.io/rpc"},
		Explorer: &Explorer{Name: "Arbiscan", URL: "https://arbiscan.io", APIURL: "https://api.arbiscan.io/api"},
	},
	43114: {
		Name: "Avalanche", ShortName: "avax",
		NativeCurrency: Currency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18},
		RPCURLs:        []string{"https://avalanche.drpc.org", "https://api.avax.network/ext/bc/C/rpc"},
		Explorer:       &Explorer{Name: "SnowTrace", URL: "https://snowtrace.io"},
	},
	59144: {
		Name: "Linea", ShortName: "linea", NativeCurrency: ether,
		RPCURLs:  []string{"https://rpc.linea.build"},
		Explorer: &Explorer{Name: "LineaScan", URL: "https://lineascan.build"},
	},
	80094: {
		Name: "Berachain", ShortName: "berachain",
		NativeCurrency: Currency{Name: "BERA", Symbol: "BERA", Decimals: 18},
		RPCURLs:        []string{"https://rpc.berachain.com"},
		Explorer:       &Explorer{Name: "Berascan", URL: "https://berascan.com"},
	},
	747474: {
		Name: "Katana", ShortName: "katana", NativeCurrency: ether,
		RPCURLs:  []string{"https://rpc.katana.network"},
		Explorer: &Explorer{Name: "Katanascan", URL: "https://katanascan.com/", APIURL: "https://katanascan.com/api"},
	},
}

func init() {
	for id, d := range descriptors {
		mc := multicall3
		d.ID = id
		d.Multicall3 = &mc
		descriptors[id] = d
	}
}

// AssertValidChainID fails with ErrUnsupportedChain for identifiers outside
// the static table. Call it before any chain-specific lookup.
func AssertValidChainID(id uint64) error {
	if _, ok := descriptors[id]; !ok {
		return fmt.Errorf("chain id %d: %w", id, types.ErrUnsupportedChain)
	}
	return nil
}

// Lookup returns the descriptor of a supported chain. The RPC list is a copy.
func Lookup(id uint64) (Descriptor, error) {
	if err := AssertValidChainID(id); err != nil {
		return Descriptor{}, err
	}
	d := descriptors[id]
	d.RPCURLs = slices.Clone(d.RPCURLs)
	return d, nil
}

// All returns every supported chain ordered by id.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, id := range slices.Sorted(maps.Keys(descriptors)) {
		d, _ := Lookup(id)
		out = append(out, d)
	}
	return out
}
