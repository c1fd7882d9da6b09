package types

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnsupportedChain   = errors.New("unsupported chain")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrValidation         = errors.New("invalid vault config")
	ErrSimulationReverted = errors.New("simulation reverted")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrTransport          = errors.New("transport error")
)

// VaultError carries the context of a failure while processing one vault
// entry. Submitted is true only when a transaction reached the network before
// the failure was observed; TxHash is then the submitted transaction.
type VaultError struct {
	Index     int
	ChainID   uint64
	Version   string
	Submitted bool
	TxHash    common.Hash
	Err       error
}

func (e *VaultError) Error() string {
	stage := "rejected before submission"
	if e.Submitted {
		stage = fmt.Sprintf("tx %s submitted but failed", e.TxHash.Hex())
	}
	return fmt.Sprintf("vault[%d] chain %d version %q: %s: %v", e.Index, e.ChainID, e.Version, stage, e.Err)
}

func (e *VaultError) Unwrap() error {
	return e.Err
}

// FieldError reports a malformed VaultConfig field.
type FieldError struct {
	Index int
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("vault[%d] %s: %s", e.Index, e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}
