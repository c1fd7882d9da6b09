package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lagoon-protocol/vault-deployer/core/chain"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/lmittmann/w3/w3types"
	"github.com/sisu-network/lib/log"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

var (
	funcName             = w3.MustNewFunc("name()", "string")
	funcSymbol           = w3.MustNewFunc("symbol()", "string")
	funcAsset            = w3.MustNewFunc("asset()", "address")
	funcSafe             = w3.MustNewFunc("safe()", "address")
	funcValuationManager = w3.MustNewFunc("valuationManager()", "address")
	funcFeeReceiver      = w3.MustNewFunc("feeReceiver()", "address")
)

// Caller is the batch RPC surface of *w3.Client.
type Caller interface {
	CallCtx(ctx context.Context, calls ...w3types.RPCCaller) error
}

// VaultState is the raw on-chain state read from one vault.
type VaultState struct {
	Name             string
	Symbol           string
	Asset            common.Address
	AssetSymbol      string
	Safe             common.Address
	ValuationManager common.Address
	FeeReceiver      common.Address
}

// Entry is the outcome for one requested address. Exactly one of Summary and
// Err is set.
type Entry struct {
	Vault   common.Address
	Summary *VaultSummary
	Err     error
}

type Reporter struct {
	caller      Caller
	chain       chain.Descriptor
	concurrency int
}

func NewReporter(caller Caller, desc chain.Descriptor, concurrency int) *Reporter {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Reporter{
		caller:      caller,
		chain:       desc,
		concurrency: concurrency,
	}
}

// Read fetches the vault fields in one batch, then the underlying asset's
// symbol.
func (r *Reporter) Read(ctx context.Context, vault common.Address) (*VaultState, error) {
	st := new(VaultState)
	if err := r.caller.CallCtx(ctx,
		eth.CallFunc(vault, funcName).Returns(&st.Name),
		eth.CallFunc(vault, funcSymbol).Returns(&st.Symbol),
		eth.CallFunc(vault, funcAsset).Returns(&st.Asset),
		eth.CallFunc(vault, funcSafe).Returns(&st.Safe),
		eth.CallFunc(vault, funcValuationManager).Returns(&st.ValuationManager),
		eth.CallFunc(vault, funcFeeReceiver).Returns(&st.FeeReceiver),
	); err != nil {
		return nil, fmt.Errorf("read vault %s: %w", vault.Hex(), callError(err))
	}

	if err := r.caller.CallCtx(ctx, eth.CallFunc(st.Asset, funcSymbol).Returns(&st.AssetSymbol)); err != nil {
		return nil, fmt.Errorf("read asset %s of vault %s: %w", st.Asset.Hex(), vault.Hex(), callError(err))
	}
	return st, nil
}

func (r *Reporter) Describe(ctx context.Context, vault common.Address) (*VaultSummary, error) {
	st, err := r.Read(ctx, vault)
	if err != nil {
		return nil, err
	}
	return NewSummary(r.chain, vault, st), nil
}

// DescribeAll describes every vault concurrently. A failing vault does not
// stop the others; entries keep the order of vaults.
func (r *Reporter) DescribeAll(ctx context.Context, vaults []common.Address) []Entry {
	entries := make([]Entry, len(vaults))
	succeeded := atomic.NewInt64(0)
	failed := atomic.NewInt64(0)

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, vault := range vaults {
		g.Go(func() error {
			entries[i].Vault = vault
			summary, err := r.Describe(ctx, vault)
			if err != nil {
				log.Errorf("Cannot describe vault %s on chain %d, err = %v", vault.Hex(), r.chain.ID, err)
				entries[i].Err = err
				failed.Inc()
				return nil
			}
			entries[i].Summary = summary
			succeeded.Inc()
			return nil
		})
	}
	g.Wait()

	log.Infof("Described %d vaults on %s, %d failed", succeeded.Load(), r.chain.Name, failed.Load())
	return entries
}

// callError unwraps a batch failure to its first call error. Call failures
// are reported as transport errors unless the context ended.
func callError(err error) error {
	var callErrs w3.CallErrors
	if errors.As(err, &callErrs) {
		for _, e := range callErrs {
			if e != nil {
				err = e
				break
			}
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%v: %w", err, types.ErrTransport)
}
