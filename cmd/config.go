package cmd

import (
	"fmt"
	"os"

	"github.com/lagoon-protocol/vault-deployer/core/chain"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exampleFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with vault config files",
}

var configExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print a sample vault config",
	RunE:  runConfigExample,
}

func init() {
	configExampleCmd.Flags().StringVar(&exampleFormat, "format", "json", "output format: json or yaml")

	configCmd.AddCommand(configExampleCmd)
	rootCmd.AddCommand(configCmd)
}

func exampleConfig() types.Config {
	return types.Config{
		ChainID: 9745,
		Vaults: []types.VaultConfig{
			{
				Version:            types.LatestVersion,
				Underlying:         "0x6100E367285b01F48D07953803A2d8dCA5D19873",
				Name:               "Test",
				Symbol:             "test",
				Safe:               "0x6B474e6006caaf39dE198179e21226d24beC6963",
				Admin:              "0x6B474e6006caaf39dE198179e21226d24beC6963",
				WhitelistManager:   "0x0000000000000000000000000000000000000000",
				FeeReceiver:        "0x6B474e6006caaf39dE198179e21226d24beC6963",
				ValuationManager:   "0x6B474e6006caaf39dE198179e21226d24beC6963",
				PerformanceRate:    2000,
				ManagementRate:     0,
				RateUpdateCooldown: "0",
				EnableWhitelist:    false,
			},
		},
	}
}

func runConfigExample(cmd *cobra.Command, args []string) error {
	cfg := exampleConfig()
	for i, v := range cfg.Vaults {
		if _, err := v.Validate(i); err != nil {
			return err
		}
	}
	if err := chain.AssertValidChainID(cfg.ChainID); err != nil {
		return err
	}

	switch exampleFormat {
	case "json":
		return printJSON(cfg)
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown format %q", exampleFormat)
	}
}
