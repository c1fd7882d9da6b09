package core

import (
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
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

// fakeNode serves eth_chainId, eth_getCode and eth_call. Calls are answered
// from a table of 4-byte selector results per contract; an empty selector key
// answers every call to that contract. No address has code.
type fakeNode struct {
	chainID   uint64
	contracts map[common.Address]map[string][]byte
	requests  *atomic.Int64
}

func newFakeNode(chainID uint64) *fakeNode {
	return &fakeNode{
		chainID:   chainID,
		contracts: map[common.Address]map[string][]byte{},
		requests:  atomic.NewInt64(0),
	}
}

func (n *fakeNode) ChainId() *hexutil.Big {
	n.requests.Inc()
	return (*hexutil.Big)(new(big.Int).SetUint64(n.chainID))
}

func (n *fakeNode) Call(args callArgs, block *json.RawMessage, overrides *json.RawMessage) (hexutil.Bytes, error) {
	n.requests.Inc()
	input := args.Input
	if len(input) == 0 {
		input = args.Data
	}
	if args.To == nil || len(input) < 4 {
		return hexutil.Bytes{}, nil
	}
	methods, ok := n.contracts[*args.To]
	if !ok {
		return hexutil.Bytes{}, nil
	}
	if out, ok := methods[""]; ok {
		return out, nil
	}
	return methods[string(input[:4])], nil
}

func (n *fakeNode) GetCode(addr common.Address, block *json.RawMessage) hexutil.Bytes {
	n.requests.Inc()
	return hexutil.Bytes{}
}

// serve exposes the node over HTTP and returns its url.
func (n *fakeNode) serve(t *testing.T) string {
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

func selector(sig string) string {
	return string(crypto.Keccak256([]byte(sig))[:4])
}

func abiEncode(t *testing.T, typ string, v interface{}) []byte {
	t.Helper()
	abiType, err := abi.NewType(typ, "", nil)
	require.NoError(t, err)
	out, err := abi.Arguments{{Type: abiType}}.Pack(v)
	require.NoError(t, err)
	return out
}
