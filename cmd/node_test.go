package cmd

import (
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type callArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

// chainNode serves the JSON-RPC methods used to simulate a factory call,
// submit it and wait for its receipt. Every eth_call to the factory answers
// with the same encoded vault address and every transaction is mined at once.
type chainNode struct {
	chainID uint64
	factory common.Address
	callOut []byte

	requests *atomic.Int64

	mu   sync.Mutex
	sent []*ethtypes.Transaction
}

func newChainNode(t *testing.T, chainID uint64, factory, vault common.Address) *chainNode {
	t.Helper()
	addrType, err := abi.NewType("address", "", nil)
	require.NoError(t, err)
	out, err := abi.Arguments{{Type: addrType}}.Pack(vault)
	require.NoError(t, err)

	return &chainNode{
		chainID:  chainID,
		factory:  factory,
		callOut:  out,
		requests: atomic.NewInt64(0),
	}
}

func (n *chainNode) ChainId() *hexutil.Big {
	n.requests.Inc()
	return (*hexutil.Big)(new(big.Int).SetUint64(n.chainID))
}

func (n *chainNode) Call(args callArgs, block *json.RawMessage, overrides *json.RawMessage) (hexutil.Bytes, error) {
	n.requests.Inc()
	if args.To == nil || *args.To != n.factory {
		return hexutil.Bytes{}, nil
	}
	return n.callOut, nil
}

func (n *chainNode) GetCode(addr common.Address, block *json.RawMessage) hexutil.Bytes {
	n.requests.Inc()
	if addr == n.factory {
		return hexutil.Bytes{0x60, 0x80}
	}
	return hexutil.Bytes{}
}

func (n *chainNode) GetBlockByNumber(number json.RawMessage, full bool) *ethtypes.Header {
	n.requests.Inc()
	return &ethtypes.Header{
		Number:     big.NewInt(100),
		Difficulty: big.NewInt(0),
		GasLimit:   30_000_000,
		Time:       1_700_000_000,
		BaseFee:    big.NewInt(1_000_000_000),
	}
}

func (n *chainNode) MaxPriorityFeePerGas() *hexutil.Big {
	n.requests.Inc()
	return (*hexutil.Big)(big.NewInt(1_000_000_000))
}

func (n *chainNode) EstimateGas(args callArgs, block *json.RawMessage, overrides *json.RawMessage) hexutil.Uint64 {
	n.requests.Inc()
	return 3_000_000
}

func (n *chainNode) GetTransactionCount(addr common.Address, block *json.RawMessage) hexutil.Uint64 {
	n.requests.Inc()
	n.mu.Lock()
	defer n.mu.Unlock()
	return hexutil.Uint64(len(n.sent))
}

func (n *chainNode) SendRawTransaction(raw hexutil.Bytes) (common.Hash, error) {
	n.requests.Inc()
	tx := new(ethtypes.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, tx)
	return tx.Hash(), nil
}

func (n *chainNode) GetTransactionReceipt(hash common.Hash) *ethtypes.Receipt {
	n.requests.Inc()
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, tx := range n.sent {
		if tx.Hash() == hash {
			return &ethtypes.Receipt{
				Status:            ethtypes.ReceiptStatusSuccessful,
				CumulativeGasUsed: 21_000,
				GasUsed:           21_000,
				Logs:              []*ethtypes.Log{},
				TxHash:            hash,
				BlockNumber:       big.NewInt(101),
			}
		}
	}
	return nil
}

func (n *chainNode) transactions() []*ethtypes.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*ethtypes.Transaction(nil), n.sent...)
}

// serve exposes the node over HTTP and returns its url.
func (n *chainNode) serve(t *testing.T) string {
	t.Helper()

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", n))
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Stop()
	})
	return ts.URL
}
