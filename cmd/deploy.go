package cmd

import (
	"os"
	"time"

	"github.com/lagoon-protocol/vault-deployer/core"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	deployBroadcast      bool
	deployConfig         string
	deployAddresses      string
	deployReceiptTimeout time.Duration
	deployPromptKey      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Simulate or broadcast the vaults of a config file",
	Long: `Validate every vault of the config file, resolve the factory and logic
addresses of its version, then call the factory for each vault in order.

Without --broadcast the factory call is only simulated and the predicted
vault address is printed. With --broadcast each transaction is sent and the
command waits for its receipt. Processing stops at the first failing vault.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().BoolVar(&deployBroadcast, "broadcast", false, "send the transactions instead of simulating them")
	deployCmd.Flags().StringVar(&deployConfig, "config", core.DefaultConfigPath, "vault config file (.json, .yaml or .yml)")
	deployCmd.Flags().StringVar(&deployAddresses, "addresses", core.DefaultAddressesPath, "factory and logic address book")
	deployCmd.Flags().DurationVar(&deployReceiptTimeout, "receipt-timeout", 0, "bound on each receipt wait (0 waits until mined)")
	deployCmd.Flags().BoolVar(&deployPromptKey, "prompt-key", false, "read the private key from the terminal")

	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	account, err := core.ResolveAccount(core.Credentials{
		PrivateKey: viper.GetString("private_key"),
		Mnemonic:   viper.GetString("mnemonic"),
		Prompt:     deployPromptKey,
	}, os.Stdin)
	if err != nil {
		return err
	}

	mode := types.Simulate
	if deployBroadcast {
		mode = types.Broadcast
	}

	results, err := core.RunDeploy(cmd.Context(), core.DeployOptions{
		ConfigPath:     deployConfig,
		AddressesPath:  deployAddresses,
		ChainsPath:     chainsFile,
		RPCURL:         getRPCURL(),
		Mode:           mode,
		Account:        account,
		ReceiptTimeout: deployReceiptTimeout,
	})
	if len(results) > 0 {
		if perr := printJSON(results); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}
