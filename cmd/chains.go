package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/lagoon-protocol/vault-deployer/core"
	"github.com/lagoon-protocol/vault-deployer/core/chain"
	"github.com/spf13/cobra"
)

var (
	chainsJSON      bool
	chainsAddresses string
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains",
	Long: `List the supported chains. When the address book exists, the versions
registered for each chain are shown as well.`,
	RunE: runChains,
}

func init() {
	chainsCmd.Flags().BoolVar(&chainsJSON, "json", false, "output in JSON format")
	chainsCmd.Flags().StringVar(&chainsAddresses, "addresses", core.DefaultAddressesPath, "factory and logic address book")
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) error {
	descs := chain.All()
	if chainsJSON {
		return printJSON(descs)
	}

	var book *chain.AddressBook
	if _, err := os.Stat(chainsAddresses); err == nil {
		book, err = chain.LoadAddressBook(chainsAddresses)
		if err != nil {
			return err
		}
	}

	w := newTable()
	printTableHeader(w, "ID", "NAME", "SHORT NAME", "CURRENCY", "FACTORY", "VERSIONS")
	for _, d := range descs {
		factory, versions := "-", "-"
		if book != nil && book.Has(d.ID) {
			factory = "yes"
			if v := book.Versions(d.ID); len(v) > 0 {
				versions = strings.Join(v, ",")
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.ShortName, d.NativeCurrency.Symbol, factory, versions)
	}
	return w.Flush()
}
