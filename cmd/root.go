package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Global flags
	rpcURL     string
	chainsFile string
)

var rootCmd = &cobra.Command{
	Use:   "vault-deployer",
	Short: "Deploy and inspect Lagoon vaults on EVM chains",
	Long: `vault-deployer creates vaults through the Lagoon factory contract and
reports the state of deployed vaults.

Deployments are simulated unless --broadcast is given.

Configuration (in order of priority):
  1. Command-line flags (--rpc-url, --prompt-key)
  2. Environment variables (RPC_URL, PRIVATE_KEY, MNEMONIC)
  3. chains.toml for per-chain RPC endpoints

Get started:
  $ vault-deployer config example > config.json
  $ vault-deployer deploy
  $ vault-deployer deploy --broadcast`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vault-deployer version %s\n", Version)
	},
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		return 1
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "RPC endpoint tried before the defaults (or RPC_URL)")
	rootCmd.PersistentFlags().StringVar(&chainsFile, "chains", "chains.toml", "per-chain RPC endpoint overrides")

	rootCmd.AddCommand(versionCmd)
}

// initConfig binds the process environment.
func initConfig() {
	viper.AutomaticEnv()
	_ = viper.BindEnv("private_key", "PRIVATE_KEY")
	_ = viper.BindEnv("mnemonic", "MNEMONIC")
	_ = viper.BindEnv("rpc_url", "RPC_URL")
}

// getRPCURL returns the RPC endpoint from flags or env.
func getRPCURL() string {
	if rpcURL != "" {
		return rpcURL
	}
	return viper.GetString("rpc_url")
}

// printJSON outputs data as formatted JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %s\n", colorRed("Error:"), err.Error())
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printTableHeader(w *tabwriter.Writer, columns ...string) {
	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, colorBold(col))
	}
	fmt.Fprintln(w)
}

func colorRed(s string) string {
	if !isTTY() {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

func colorBold(s string) string {
	if !isTTY() {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
