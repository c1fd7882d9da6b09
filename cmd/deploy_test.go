package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testSigner = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

var (
	katanaFactory = common.HexToAddress("0x1111111111111111111111111111111111111111")
	deployedVault = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

const testAddresses = `
[chains.747474]
factory = "0x1111111111111111111111111111111111111111"
`

const testConfig = `{
	"chainId": 747474,
	"vaultsToDeploy": [{
		"version": "latest",
		"underlying": "0x7777777777777777777777777777777777777777",
		"name": "Katana USDC",
		"symbol": "kUSDC",
		"safe": "0x8888888888888888888888888888888888888888",
		"admin": "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"whitelistManager": "0x0000000000000000000000000000000000000000",
		"feeReceiver": "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
		"valuationManager": "0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC",
		"performanceRate": 2000,
		"managementRate": 200,
		"rateUpdateCooldown": 86400,
		"enableWhitelist": false
	}]
}`

// runDeployCmd runs "deploy" through the root command and returns the exit
// code. Every flag is passed explicitly since cobra keeps flag values between
// runs.
func runDeployCmd(t *testing.T, url, config string, broadcast bool) int {
	t.Helper()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))
	addressesPath := filepath.Join(dir, "addresses.toml")
	require.NoError(t, os.WriteFile(addressesPath, []byte(testAddresses), 0o600))

	rootCmd.SetArgs([]string{
		"deploy",
		"--config", configPath,
		"--addresses", addressesPath,
		"--chains", filepath.Join(dir, "chains.toml"),
		"--rpc-url", url,
		"--prompt-key=false",
		"--receipt-timeout=0s",
		fmt.Sprintf("--broadcast=%t", broadcast),
	})
	return Execute(context.Background())
}

func TestDeployCmd_SimulatesByDefault(t *testing.T) {
	t.Setenv("PRIVATE_KEY", testKey)
	node := newChainNode(t, 747474, katanaFactory, deployedVault)
	url := node.serve(t)

	assert.Equal(t, 0, runDeployCmd(t, url, testConfig, false))
	assert.Empty(t, node.transactions())
	assert.NotZero(t, node.requests.Load())
}

func TestDeployCmd_Broadcast(t *testing.T) {
	t.Setenv("PRIVATE_KEY", testKey)
	node := newChainNode(t, 747474, katanaFactory, deployedVault)
	url := node.serve(t)

	assert.Equal(t, 0, runDeployCmd(t, url, testConfig, true))

	sent := node.transactions()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, katanaFactory, *tx.To())
	assert.Equal(t, big.NewInt(747474), tx.ChainId())

	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSigner), from)
}

func TestDeployCmd_FailureExitCode(t *testing.T) {
	node := newChainNode(t, 747474, katanaFactory, deployedVault)
	url := node.serve(t)

	// no credentials
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("MNEMONIC", "")
	assert.Equal(t, 1, runDeployCmd(t, url, testConfig, true))

	// misspelled key in the config
	t.Setenv("PRIVATE_KEY", testKey)
	typo := `{"chainId": 747474, "vaultsToDeploy": [{"version": "latest", "rateUpdateCoolDown": 1}]}`
	assert.Equal(t, 1, runDeployCmd(t, url, typo, true))

	assert.Zero(t, node.requests.Load())
	assert.Empty(t, node.transactions())
}
