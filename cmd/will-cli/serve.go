package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/api"
	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/handler"
	"github.com/AlexZinkM/will-wallet/internal/wallet"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the will operations over HTTP",
	Long: `Builds the wallet non-interactively and serves the will API on PORT.

The seed comes from the genesis seed (local profile), MY_PREVIEW_MNEMONIC,
or the encrypted WALLET_FILE_PATH (password prompted). With --demo the
simulator is served and no wallet is built.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.closer.Close()
	ctx := cmd.Context()

	var (
		sessions   handler.Sessions
		walletInfo handler.WalletInfo
	)
	if globalFlags.Demo {
		sim := e.newSimulator()
		defer sim.Close()
		sessions = sim
	} else {
		seed, err := serveSeed(e.cfg)
		if err != nil {
			return err
		}
		l, err := e.startLive(ctx, seed)
		if err != nil {
			return fmt.Errorf("wallet setup failed: %w", err)
		}
		defer l.Close()

		if e.cfg.ContractAddress != "" {
			if _, err := l.manager.Join(ctx, e.cfg.ContractAddress); err != nil {
				return fmt.Errorf("failed to join CONTRACT_ADDRESS: %w", err)
			}
		}
		sessions, walletInfo = l.manager, l.wallet
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(sessions, walletInfo),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info().Str("addr", srv.Addr).Msg("serving will API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		e.logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// serveSeed picks the wallet seed without menus
func serveSeed(cfg *config.Config) (string, error) {
	switch {
	case cfg.IsLocal():
		return config.GenesisMintWalletSeed, nil
	case cfg.EnvMnemonic != "":
		return cfg.EnvMnemonic, nil
	case cfg.WalletFilePath != "":
		if err := config.PromptForPassword(); err != nil {
			return "", err
		}
		defer config.ClearPassword()
		password, err := config.GetPasswordBytes()
		if err != nil {
			return "", err
		}
		defer clear(password)
		seed, _, err := wallet.LoadSeedFile(cfg.WalletFilePath, password)
		return seed, err
	default:
		return "", errors.New("no wallet seed: set MY_PREVIEW_MNEMONIC or WALLET_FILE_PATH, or use --demo")
	}
}
