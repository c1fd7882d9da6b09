package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/lagoon-protocol/vault-deployer/core/chain"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"github.com/sisu-network/lib/log"
)

// Backend is the read-only query handle of a chain. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// ChainClients pairs the query handle of one chain with signing options for
// the run's account. Close releases the connection.
type ChainClients struct {
	ChainID uint64
	URL     string
	Backend Backend
	Signer  *bind.TransactOpts
}

func (c *ChainClients) Close() {
	c.Backend.Close()
}

type DialFunc func(ctx context.Context, url string) (*rpc.Client, error)

// ClientFactory builds fresh chain handles on every call. Overrides holds
// per-chain RPC endpoints that take precedence over the registry defaults.
type ClientFactory struct {
	account   *Account
	overrides map[uint64][]string
	dial      DialFunc
}

func NewClientFactory(account *Account, overrides map[uint64][]string) *ClientFactory {
	return &ClientFactory{
		account:   account,
		overrides: overrides,
		dial:      rpc.DialContext,
	}
}

// WithDial replaces the RPC dialer.
func (f *ClientFactory) WithDial(dial DialFunc) *ClientFactory {
	f.dial = dial
	return f
}

// Endpoints returns the RPC urls tried for a chain, best first.
func (f *ClientFactory) Endpoints(chainID uint64, rpcOverride string) ([]string, error) {
	desc, err := chain.Lookup(chainID)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(desc.RPCURLs)+1)
	if rpcOverride != "" {
		urls = append(urls, rpcOverride)
	}
	urls = append(urls, f.overrides[chainID]...)
	urls = append(urls, desc.RPCURLs...)
	return urls, nil
}

// DialRPC connects to the first endpoint that answers eth_chainId with the
// expected chain. An endpoint serving another chain is a hard failure.
func (f *ClientFactory) DialRPC(ctx context.Context, chainID uint64, rpcOverride string) (*rpc.Client, string, error) {
	urls, err := f.Endpoints(chainID, rpcOverride)
	if err != nil {
		return nil, "", err
	}

	var lastErr error
	for _, url := range urls {
		client, err := f.dial(ctx, url)
		if err != nil {
			log.Errorf("Cannot dial chain %d, url = %s, err = %v", chainID, url, err)
			lastErr = err
			continue
		}

		id, err := ethclient.NewClient(client).ChainID(ctx)
		if err != nil {
			log.Errorf("Cannot get chain id from url %s, err = %v", url, err)
			client.Close()
			lastErr = err
			continue
		}
		if id.Uint64() != chainID {
			client.Close()
			return nil, "", fmt.Errorf("rpc %s serves chain %s, expected %d: %w", url, id, chainID, types.ErrTransport)
		}

		log.Verbosef("Using rpc %s for chain %d", url, chainID)
		return client, url, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no rpc endpoint")
	}
	return nil, "", fmt.Errorf("chain %d: %v: %w", chainID, lastErr, types.ErrTransport)
}

// CreateChainClients returns a query handle and signing options for the
// factory's account on one chain.
func (f *ClientFactory) CreateChainClients(ctx context.Context, chainID uint64, rpcOverride string) (*ChainClients, error) {
	if err := chain.AssertValidChainID(chainID); err != nil {
		return nil, err
	}
	if f.account == nil {
		return nil, fmt.Errorf("no signing account: %w", types.ErrInvalidCredential)
	}

	client, url, err := f.DialRPC(ctx, chainID, rpcOverride)
	if err != nil {
		return nil, err
	}

	signer, err := f.account.Transactor(chainID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("transactor: %v: %w", err, types.ErrInvalidCredential)
	}

	return &ChainClients{
		ChainID: chainID,
		URL:     url,
		Backend: ethclient.NewClient(client),
		Signer:  signer,
	}, nil
}
