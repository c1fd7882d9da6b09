package cmd

import (
	"os"

	"github.com/lagoon-protocol/vault-deployer/core"
	"github.com/lagoon-protocol/vault-deployer/core/report"
	"github.com/spf13/cobra"
)

var (
	reportChainID     uint64
	reportVaults      []string
	reportOut         string
	reportConcurrency int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the state of deployed vaults to CSV",
	Long: `Read name, symbol, underlying asset, safe, valuation manager and fee
receiver of each vault and write one CSV row per vault.

Vaults that cannot be read are reported on stderr; the others are still
written. The command fails if any vault could not be read.`,
	Example: `  vault-deployer report --chain-id 747474 --vault 0x543E69C1f933004E9C2b8Da242588439A438dF70`,
	RunE:    runReport,
}

func init() {
	reportCmd.Flags().Uint64Var(&reportChainID, "chain-id", 0, "chain of the vaults")
	reportCmd.Flags().StringSliceVar(&reportVaults, "vault", nil, "vault address (repeatable)")
	reportCmd.Flags().StringVar(&reportOut, "out", "output.csv", "CSV output file")
	reportCmd.Flags().IntVar(&reportConcurrency, "concurrency", report.DefaultConcurrency, "vaults read in parallel")
	_ = reportCmd.MarkFlagRequired("chain-id")
	_ = reportCmd.MarkFlagRequired("vault")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	entries, err := core.RunReport(cmd.Context(), core.ReportOptions{
		ChainID:     reportChainID,
		Vaults:      reportVaults,
		ChainsPath:  chainsFile,
		RPCURL:      getRPCURL(),
		Out:         reportOut,
		Concurrency: reportConcurrency,
	})

	summaries := make([]*report.VaultSummary, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil {
			printError(e.Err)
			continue
		}
		summaries = append(summaries, e.Summary)
	}
	if len(summaries) > 0 {
		if werr := report.WriteCSV(os.Stdout, summaries); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
