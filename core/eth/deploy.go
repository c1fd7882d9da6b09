package eth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/lagoon-protocol/vault-deployer/core/chain"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"github.com/sisu-network/lib/log"
)

// DefaultInitialDelay is the timelock, in seconds, before an admin-initiated
// logic upgrade takes effect.
var DefaultInitialDelay = big.NewInt(86_400)

// Dialer creates the per-call chain handles. *ClientFactory implements it.
type Dialer interface {
	CreateChainClients(ctx context.Context, chainID uint64, rpcOverride string) (*ChainClients, error)
}

// Plan is a fully resolved factory call. Building it needs no network access.
type Plan struct {
	Index        int
	ChainID      uint64
	Version      string
	Addresses    chain.DeploymentAddresses
	InitialOwner common.Address
	InitialDelay *big.Int
	Salt         common.Hash
	Init         types.VaultInit
}

type Orchestrator struct {
	book   *chain.AddressBook
	dialer Dialer
	rpcURL string
	rand   io.Reader

	receiptTimeout time.Duration
}

func NewOrchestrator(book *chain.AddressBook, dialer Dialer, rpcURL string) *Orchestrator {
	return &Orchestrator{
		book:   book,
		dialer: dialer,
		rpcURL: rpcURL,
		rand:   rand.Reader,
	}
}

// WithReceiptTimeout bounds each receipt wait of a broadcast. Zero leaves the
// wait to the caller's context and the transport.
func (o *Orchestrator) WithReceiptTimeout(d time.Duration) *Orchestrator {
	o.receiptTimeout = d
	return o
}

// Prepare validates the vault entry and resolves everything the factory call
// needs. Errors are *types.VaultError with Submitted unset.
func (o *Orchestrator) Prepare(index int, vault types.VaultConfig, chainID uint64) (*Plan, error) {
	fail := func(err error) (*Plan, error) {
		return nil, &types.VaultError{Index: index, ChainID: chainID, Version: vault.Version, Err: err}
	}

	if err := chain.AssertValidChainID(chainID); err != nil {
		return fail(err)
	}
	params, err := vault.Validate(index)
	if err != nil {
		return fail(err)
	}
	addrs, err := o.book.Resolve(chainID, params.Version)
	if err != nil {
		return fail(err)
	}

	plan := &Plan{
		Index:        index,
		ChainID:      chainID,
		Version:      params.Version,
		Addresses:    addrs,
		InitialOwner: params.Init.Admin,
		InitialDelay: new(big.Int).Set(DefaultInitialDelay),
		Init:         params.Init,
	}
	if params.InitialDelay != nil {
		plan.InitialDelay = params.InitialDelay
	}
	if params.InitialOwner != nil {
		plan.InitialOwner = *params.InitialOwner
	}
	if params.Salt != nil {
		plan.Salt = *params.Salt
	} else {
		if _, err := io.ReadFull(o.rand, plan.Salt[:]); err != nil {
			return fail(fmt.Errorf("generate salt: %w", err))
		}
	}

	return plan, nil
}

// Execute prepares and runs one vault entry.
func (o *Orchestrator) Execute(ctx context.Context, index int, vault types.VaultConfig, chainID uint64, mode types.Mode) (*types.Result, error) {
	plan, err := o.Prepare(index, vault, chainID)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, plan, mode)
}

// Run performs the factory call of a plan. Simulate only issues eth_call from
// the account. Broadcast simulates first, submits, then blocks until the
// receipt is available. Once the transaction is submitted a failure returns
// the partial result along with the error.
func (o *Orchestrator) Run(ctx context.Context, plan *Plan, mode types.Mode) (*types.Result, error) {
	fail := func(submitted bool, err error) (*types.Result, error) {
		return nil, &types.VaultError{
			Index:     plan.Index,
			ChainID:   plan.ChainID,
			Version:   plan.Version,
			Submitted: submitted,
			Err:       err,
		}
	}

	clients, err := o.dialer.CreateChainClients(ctx, plan.ChainID, o.rpcURL)
	if err != nil {
		return fail(false, err)
	}
	defer clients.Close()

	result := &types.Result{
		Index:        plan.Index,
		ChainID:      plan.ChainID,
		Mode:         mode.String(),
		Name:         plan.Init.Name,
		Factory:      plan.Addresses.Factory,
		Logic:        plan.Addresses.Logic,
		InitialOwner: plan.InitialOwner,
		InitialDelay: plan.InitialDelay,
		Salt:         plan.Salt,
	}

	contract := bind.NewBoundContract(plan.Addresses.Factory, FactoryABI, clients.Backend, clients.Backend, clients.Backend)

	log.Infof("Simulating %s (%s) on chain %d, factory = %s, from = %s",
		plan.Init.Name, plan.Version, plan.ChainID, plan.Addresses.Factory.Hex(), clients.Signer.From.Hex())

	var out []interface{}
	callOpts := &bind.CallOpts{Context: ctx, From: clients.Signer.From}
	if err := contract.Call(callOpts, &out, createVaultProxy, plan.args()...); err != nil {
		return fail(false, classifyCallError(plan.Addresses.Factory, err))
	}
	vault, err := unpackVaultAddress(out)
	if err != nil {
		return fail(false, fmt.Errorf("decode %s result: %v: %w", createVaultProxy, err, types.ErrSimulationReverted))
	}
	result.VaultAddress = vault
	log.Infof("Predicted vault address = %s", vault.Hex())

	if mode == types.Simulate {
		return result, nil
	}

	opts := *clients.Signer
	opts.Context = ctx
	tx, err := contract.Transact(&opts, createVaultProxy, plan.args()...)
	if err != nil {
		return fail(false, classifyCallError(plan.Addresses.Factory, err))
	}
	result.TxHash = tx.Hash()
	log.Infof("Tx hash = %s on chain %d, waiting for receipt", tx.Hash().Hex(), plan.ChainID)

	submitted := func(err error) (*types.Result, error) {
		return result, &types.VaultError{
			Index:     plan.Index,
			ChainID:   plan.ChainID,
			Version:   plan.Version,
			Submitted: true,
			TxHash:    tx.Hash(),
			Err:       err,
		}
	}

	waitCtx := ctx
	if o.receiptTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, o.receiptTimeout)
		defer cancel()
	}
	receipt, err := bind.WaitMined(waitCtx, clients.Backend, tx)
	if err != nil {
		return submitted(fmt.Errorf("wait for receipt: %v: %w", err, types.ErrTransport))
	}
	result.Receipt = receipt
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return submitted(fmt.Errorf("reverted in block %s: %w", receipt.BlockNumber, types.ErrTransactionFailed))
	}

	log.Infof("Vault %s deployed at %s in block %s", plan.Init.Name, vault.Hex(), receipt.BlockNumber)
	return result, nil
}

// classifyCallError separates reverts, which are deterministic, from
// transport failures.
func classifyCallError(factory common.Address, err error) error {
	if errors.Is(err, types.ErrTransport) || errors.Is(err, types.ErrInvalidCredential) {
		return err
	}
	if errors.Is(err, bind.ErrNoCode) {
		return fmt.Errorf("factory %s has no code: %w", factory.Hex(), types.ErrSimulationReverted)
	}

	var dataErr rpc.DataError
	if (errors.As(err, &dataErr) && dataErr.ErrorData() != nil) || strings.Contains(err.Error(), "execution reverted") {
		return fmt.Errorf("%v: %w", err, types.ErrSimulationReverted)
	}
	return fmt.Errorf("%v: %w", err, types.ErrTransport)
}
