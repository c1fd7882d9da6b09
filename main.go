// vault-deployer deploys Lagoon vaults through the factory contract and
// exports the state of deployed vaults.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lagoon-protocol/vault-deployer/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
