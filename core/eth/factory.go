package eth

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const createVaultProxy = "createVaultProxy"

const factoryABIJSON = `[{
	"type": "function",
	"name": "createVaultProxy",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "_logic", "type": "address"},
		{"name": "_initialOwner", "type": "address"},
		{"name": "_initialDelay", "type": "uint256"},
		{"name": "_init", "type": "tuple", "internalType": "struct InitStruct", "components": [
			{"name": "underlying", "type": "address"},
			{"name": "name", "type": "string"},
			{"name": "symbol", "type": "string"},
			{"name": "safe", "type": "address"},
			{"name": "whitelistManager", "type": "address"},
			{"name": "valuationManager", "type": "address"},
			{"name": "admin", "type": "address"},
			{"name": "feeReceiver", "type": "address"},
			{"name": "managementRate", "type": "uint16"},
			{"name": "performanceRate", "type": "uint16"},
			{"name": "enableWhitelist", "type": "bool"},
			{"name": "rateUpdateCooldown", "type": "uint256"}
		]},
		{"name": "salt", "type": "bytes32"}
	],
	"outputs": [{"name": "", "type": "address"}]
}]`

var FactoryABI = mustParseABI(factoryABIJSON)

func mustParseABI(data string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("parse factory abi: %v", err))
	}
	return parsed
}

// args returns the createVaultProxy arguments in ABI order.
func (p *Plan) args() []interface{} {
	return []interface{}{
		p.Addresses.Logic,
		p.InitialOwner,
		p.InitialDelay,
		p.Init,
		[32]byte(p.Salt),
	}
}

// Calldata is the encoded factory call of the plan.
func (p *Plan) Calldata() ([]byte, error) {
	return FactoryABI.Pack(createVaultProxy, p.args()...)
}

func unpackVaultAddress(out []interface{}) (common.Address, error) {
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("unexpected %d return values", len(out))
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected return type %T", out[0])
	}
	return addr, nil
}
