package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/AlexZinkM/will-wallet/internal/cli"
	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/logging"
	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/simulator"
	"github.com/AlexZinkM/will-wallet/internal/wallet"
	"github.com/AlexZinkM/will-wallet/will"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// GlobalFlags are shared by every command
type GlobalFlags struct {
	Profile string
	Demo    bool
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:          "will-cli",
	Short:        "Deploy, join and operate a will contract",
	Long:         "Interactive client for the will contract. Builds a wallet, waits for DUST and runs the contract menus.",
	SilenceUsage: true,
	RunE:         runInteractive,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Profile, "profile", "", "network profile: local, preview or preprod (overrides WILL_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Demo, "demo", false, "run against the in-memory simulator")
	rootCmd.AddCommand(serveCmd)
}

// env is the configuration and logger shared by the commands
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
}

func setup() (*env, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.Get()
	if globalFlags.Profile != "" {
		cfg.Profile = config.Profile(globalFlags.Profile)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		config.Set(cfg)
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Dir: cfg.LogDir})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("profile", string(cfg.Profile)).Bool("demo", globalFlags.Demo).Msg("configuration loaded")
	return &env{cfg: cfg, logger: logger, closer: closer}, nil
}

// buildWallet negotiates endpoints through the configured connector, if any, and builds the wallet
func (e *env) buildWallet(ctx context.Context, seed string) (*wallet.Context, error) {
	var connector interface{}
	if e.cfg.WalletConnectorURL != "" {
		c, err := wallet.NewHTTPConnector(e.cfg.WalletConnectorURL, e.cfg.WalletConnectorAPI)
		if err != nil {
			return nil, err
		}
		connector = c
	}
	return wallet.BuildWallet(ctx, e.cfg, seed, wallet.Options{
		Connector: connector,
		Out:       os.Stdout,
		Logger:    logging.Component(e.logger, "wallet"),
	})
}

// live is a built wallet with its providers and session manager
type live struct {
	wallet  *wallet.Context
	stack   *will.Stack
	manager *will.Manager
}

func (e *env) startLive(ctx context.Context, seed string) (*live, error) {
	w, err := e.buildWallet(ctx, seed)
	if err != nil {
		return nil, err
	}
	stack, err := will.NewStack(e.cfg, w, e.logger)
	if err != nil {
		w.Close()
		return nil, err
	}
	opts, err := will.OptionsFromConfig(e.cfg)
	if err != nil {
		stack.Close()
		w.Close()
		return nil, err
	}
	return &live{wallet: w, stack: stack, manager: will.NewManager(stack.Providers, opts)}, nil
}

func (l *live) Close() error {
	l.manager.Close()
	l.stack.Close()
	return l.wallet.Close()
}

func (e *env) newSimulator() simulator.Sessions {
	return simulator.Sessions{Sim: simulator.New(simulator.Options{
		Delays: simulator.DefaultDelays(),
		Seed:   true,
		Logger: logging.Component(e.logger, "simulator"),
	})}
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.closer.Close()

	ctx := cmd.Context()
	app := &cli.App{
		Prompt: cli.TerminalPrompter{},
		Out:    os.Stdout,
		Stdin:  os.Stdin,
		Logger: e.logger,
	}
	app.Banner()
	defer func() { e.logger.Info().Msg("Goodbye.") }()

	if globalFlags.Demo {
		sessions := e.newSimulator()
		defer sessions.Close()
		return app.ContractLoop(ctx, sessions)
	}

	seed, ok, err := app.ChooseSeed(e.cfg)
	if err != nil || !ok {
		return err
	}

	l, err := e.startLive(ctx, seed)
	if err != nil {
		return fmt.Errorf("wallet setup failed: %w", err)
	}
	defer func() {
		if err := l.Close(); err != nil {
			e.logger.Error().Err(err).Msg("error stopping wallet")
		}
	}()

	app.Wallet = l.wallet
	app.Monitor = func(ctx context.Context, stop <-chan struct{}, report func(model.DustBalance)) {
		wallet.MonitorBalance(ctx, l.wallet, e.cfg.MonitorInterval, stop, report)
	}
	return app.ContractLoop(ctx, l.manager)
}
