package eth

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lagoon-protocol/vault-deployer/core/types"
)

const DerivationPath = "m/44'/60'/0'/0/0"

// Account is the single signing credential of a run. It is built once by the
// entry point and handed to every component that needs it.
type Account struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// LoadAccount parses a 0x-prefixed hex private key.
func LoadAccount(hexKey string) (*Account, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, fmt.Errorf("private key not set: %w", types.ErrInvalidCredential)
	}
	if !strings.HasPrefix(hexKey, "0x") {
		return nil, fmt.Errorf("private key is not 0x-prefixed hex: %w", types.ErrInvalidCredential)
	}

	key, err := crypto.HexToECDSA(hexKey[2:])
	if err != nil {
		return nil, fmt.Errorf("parse private key: %v: %w", err, types.ErrInvalidCredential)
	}
	return NewAccount(key), nil
}

// AccountFromMnemonic derives the first Ethereum account of a BIP-39 mnemonic.
func AccountFromMnemonic(mnemonic string) (*Account, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %v: %w", err, types.ErrInvalidCredential)
	}

	dpath, err := accounts.ParseDerivationPath(DerivationPath)
	if err != nil {
		return nil, err
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("master key: %v: %w", err, types.ErrInvalidCredential)
	}
	for _, n := range dpath {
		key, err = key.Derive(n)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %v: %w", DerivationPath, err, types.ErrInvalidCredential)
		}
	}

	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("derive %s: %v: %w", DerivationPath, err, types.ErrInvalidCredential)
	}
	return NewAccount(privateKey.ToECDSA()), nil
}

func NewAccount(key *ecdsa.PrivateKey) *Account {
	return &Account{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

func (a *Account) Address() common.Address {
	return a.address
}

// Transactor returns signing options bound to this account on one chain. Gas
// and nonce are left to the backend.
func (a *Account) Transactor(chainID uint64) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(a.key, new(big.Int).SetUint64(chainID))
}
