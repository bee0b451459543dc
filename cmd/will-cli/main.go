// will-cli is the interactive and HTTP client for the will contract.
//
//	@title			Will Wallet API
//	@version		1.0
//	@description	Deploy, join and operate a will contract through a local wallet.
//	@BasePath		/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetContext(ctx)
	Execute()
}
