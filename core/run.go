package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lagoon-protocol/vault-deployer/core/chain"
	"github.com/lagoon-protocol/vault-deployer/core/eth"
	"github.com/lagoon-protocol/vault-deployer/core/report"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"github.com/lmittmann/w3"
	"github.com/sisu-network/lib/log"
	"golang.org/x/term"
)

type DeployOptions struct {
	ConfigPath    string
	AddressesPath string
	ChainsPath    string
	RPCURL        string
	Mode          types.Mode
	Account       *eth.Account

	// ReceiptTimeout bounds each receipt wait. Zero means no local bound.
	ReceiptTimeout time.Duration
}

type ReportOptions struct {
	ChainID     uint64
	Vaults      []string
	ChainsPath  string
	RPCURL      string
	Out         string
	Concurrency int
}

// Credentials are the raw signing inputs collected by the command line.
type Credentials struct {
	PrivateKey string
	Mnemonic   string
	Prompt     bool
}

// ResolveAccount builds the run's signing account. A private key wins over a
// mnemonic; Prompt reads the key from the terminal.
func ResolveAccount(creds Credentials, in io.Reader) (*eth.Account, error) {
	if creds.Prompt {
		key, err := readSecret("Enter private key: ", in)
		if err != nil {
			return nil, fmt.Errorf("read private key: %v: %w", err, types.ErrInvalidCredential)
		}
		return eth.LoadAccount(key)
	}
	if creds.PrivateKey != "" {
		return eth.LoadAccount(creds.PrivateKey)
	}
	if creds.Mnemonic != "" {
		return eth.AccountFromMnemonic(creds.Mnemonic)
	}
	return nil, fmt.Errorf("PRIVATE_KEY or MNEMONIC must be set: %w", types.ErrInvalidCredential)
}

// readSecret reads one line without echo when in is a terminal.
func readSecret(prompt string, in io.Reader) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	reader := bufio.NewReader(in)
	text, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func newClientFactory(account *eth.Account, chainsPath string) (*eth.ClientFactory, error) {
	chainsCfg, err := loadChainConfig(chainsPath)
	if err != nil {
		return nil, err
	}
	overrides, err := chainsCfg.Overrides()
	if err != nil {
		return nil, err
	}
	return eth.NewClientFactory(account, overrides), nil
}

// RunDeploy validates and resolves every configured vault, then simulates or
// broadcasts them one after the other. It stops at the first failing vault
// and returns the results gathered so far, including the partial result of a
// vault whose transaction was submitted.
func RunDeploy(ctx context.Context, opts DeployOptions) ([]*types.Result, error) {
	if opts.Account == nil {
		return nil, fmt.Errorf("no signing account: %w", types.ErrInvalidCredential)
	}

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := chain.AssertValidChainID(cfg.ChainID); err != nil {
		return nil, err
	}

	book, err := chain.LoadAddressBook(opts.AddressesPath)
	if err != nil {
		return nil, err
	}

	factory, err := newClientFactory(opts.Account, opts.ChainsPath)
	if err != nil {
		return nil, err
	}
	orchestrator := eth.NewOrchestrator(book, factory, opts.RPCURL).WithReceiptTimeout(opts.ReceiptTimeout)

	plans := make([]*eth.Plan, 0, len(cfg.Vaults))
	for i, vault := range cfg.Vaults {
		plan, err := orchestrator.Prepare(i, vault, cfg.ChainID)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	if opts.Mode == types.Broadcast {
		log.Info("Deploying vaults...")
	} else {
		log.Info("Running simulation...")
	}
	log.Infof("Account = %s, chain = %d, vaults = %d", opts.Account.Address().Hex(), cfg.ChainID, len(plans))

	results := make([]*types.Result, 0, len(plans))
	for _, plan := range plans {
		result, err := orchestrator.Run(ctx, plan, opts.Mode)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			log.Error(err)
			return results, err
		}
	}

	return results, nil
}

// RunReport describes the given vaults and writes the summaries that could
// be read to opts.Out. It fails when any vault could not be described.
func RunReport(ctx context.Context, opts ReportOptions) ([]report.Entry, error) {
	desc, err := chain.Lookup(opts.ChainID)
	if err != nil {
		return nil, err
	}
	if len(opts.Vaults) == 0 {
		return nil, fmt.Errorf("no vault address given: %w", types.ErrValidation)
	}

	vaults := make([]common.Address, 0, len(opts.Vaults))
	for _, v := range opts.Vaults {
		v = strings.TrimSpace(v)
		if !strings.HasPrefix(v, "0x") || !common.IsHexAddress(v) {
			return nil, fmt.Errorf("invalid vault address %q: %w", v, types.ErrValidation)
		}
		vaults = append(vaults, common.HexToAddress(v))
	}

	factory, err := newClientFactory(nil, opts.ChainsPath)
	if err != nil {
		return nil, err
	}
	rpcClient, _, err := factory.DialRPC(ctx, opts.ChainID, opts.RPCURL)
	if err != nil {
		return nil, err
	}
	client := w3.NewClient(rpcClient)
	defer client.Close()

	reporter := report.NewReporter(client, desc, opts.Concurrency)
	entries := reporter.DescribeAll(ctx, vaults)

	summaries := make([]*report.VaultSummary, 0, len(entries))
	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
			continue
		}
		summaries = append(summaries, e.Summary)
	}

	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return entries, err
		}
		defer f.Close()

		if err := report.WriteCSV(f, summaries); err != nil {
			return entries, fmt.Errorf("write %s: %w", opts.Out, err)
		}
		log.Infof("Wrote %d rows to %s", len(summaries), opts.Out)
	}

	if failed > 0 {
		return entries, fmt.Errorf("%d of %d vaults could not be described", failed, len(entries))
	}
	return entries, nil
}
