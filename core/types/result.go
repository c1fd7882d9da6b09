package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

type Mode int

const (
	Simulate Mode = iota
	Broadcast
)

func (m Mode) String() string {
	if m == Broadcast {
		return "broadcast"
	}
	return "simulate"
}

// Result is the outcome of one vault's factory call. VaultAddress is the
// address predicted by a simulation; TxHash and Receipt are only set in
// broadcast mode.
type Result struct {
	Index        int               `json:"index"`
	ChainID      uint64            `json:"chainId"`
	Mode         string            `json:"mode"`
	Name         string            `json:"name"`
	Factory      common.Address    `json:"factory"`
	Logic        common.Address    `json:"logic"`
	InitialOwner common.Address    `json:"initialOwner"`
	InitialDelay *big.Int          `json:"initialDelay"`
	Salt         common.Hash       `json:"salt"`
	VaultAddress common.Address    `json:"vaultAddress,omitempty"`
	TxHash       common.Hash       `json:"txHash,omitempty"`
	Receipt      *ethtypes.Receipt `json:"receipt,omitempty"`
}
