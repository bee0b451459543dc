// Package cli is the interactive terminal front end: wallet setup, contract
// deploy/join and the will actions.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/AlexZinkM/will-wallet/internal/common"
	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/wallet"
	"github.com/AlexZinkM/will-wallet/will"

	"github.com/rs/zerolog"
)

const banner = `
╔══════════════════════════════════════════════════════════════╗
║                                                              ║
║              Will Wallet                                     ║
║              ───────────                                     ║
║              Private inheritance on a shielded ledger        ║
║                                                              ║
╚══════════════════════════════════════════════════════════════╝
`

var (
	walletMenu = []string{
		"Create a new wallet",
		"Restore wallet from seed",
		"Restore wallet from mnemonic",
		"Use mnemonic from environment",
		"Restore wallet from encrypted file",
		"Exit",
	}
	contractMenu = []string{
		"Deploy a new will contract",
		"Join an existing will contract",
		"Monitor DUST balance",
		"Exit",
	}
	willMenu = []string{
		"Add Beneficiary (Owner only)",
		"Execute Will (Owner only)",
		"Claim Funds (Beneficiary only)",
		"Display current contract details",
		"Exit",
	}
)

// Sessions creates will sessions
type Sessions interface {
	Join(ctx context.Context, address string) (will.API, error)
	Deploy(ctx context.Context, initialOwner string) (will.API, error)
}

// Wallet is what the menus need from a running wallet
type Wallet interface {
	Keys() *wallet.Keys
	Balance() model.DustBalance
}

// App drives the menus
type App struct {
	Prompt Prompter
	Out    io.Writer
	// Stdin is read for the Enter that ends the DUST monitor
	Stdin  io.Reader
	Logger zerolog.Logger

	// Wallet is nil in demo mode
	Wallet Wallet
	// Monitor reports the balance until stop closes
	Monitor func(ctx context.Context, stop <-chan struct{}, report func(model.DustBalance))
	// Status wraps long running calls, a spinner by default
	Status func(label string, fn func() error) error
}

// Banner prints the title
func (a *App) Banner() {
	fmt.Fprint(a.Out, banner)
}

func (a *App) status(label string, fn func() error) error {
	if a.Status != nil {
		return a.Status(label, fn)
	}
	return withStatus(label, fn)
}

func (a *App) header(title string) string {
	if a.Wallet == nil {
		return title
	}
	return fmt.Sprintf("%s    DUST: %s", title, dustLabel(a.Wallet.Balance()))
}

// ChooseSeed runs the wallet setup menu and returns a hex seed or mnemonic.
// ok is false when the user exits. The local profile always uses the genesis seed.
func (a *App) ChooseSeed(cfg *config.Config) (seed string, ok bool, err error) {
	if cfg.IsLocal() {
		return config.GenesisMintWalletSeed, true, nil
	}

	for {
		choice, err := a.Prompt.Select("Wallet Setup", walletMenu)
		if err != nil {
			return "", false, quitOr(err)
		}
		switch choice {
		case 0:
			mnemonic, err := wallet.GenerateMnemonic()
			if err != nil {
				return "", false, err
			}
			fmt.Fprintf(a.Out, "\n  Write down your mnemonic, it is the only way to restore this wallet:\n\n  %s\n\n", mnemonic)
			return mnemonic, true, nil
		case 1:
			seed, err := a.Prompt.Input("Enter your wallet seed", func(s string) error {
				_, err := common.NormalizeHexSeed(s)
				return err
			})
			if err != nil {
				return "", false, quitOr(err)
			}
			return seed, true, nil
		case 2:
			mnemonic, err := a.Prompt.Input("Enter your mnemonic phrase", func(s string) error {
				_, err := wallet.MnemonicToSeed(s)
				return err
			})
			if err != nil {
				return "", false, quitOr(err)
			}
			return mnemonic, true, nil
		case 3:
			if cfg.EnvMnemonic == "" {
				a.Logger.Error().Msg("MY_PREVIEW_MNEMONIC not found in environment")
				continue
			}
			a.Logger.Info().Msg("using mnemonic from environment")
			return cfg.EnvMnemonic, true, nil
		case 4:
			seed, err := a.loadSeedFile(cfg)
			if err != nil {
				if errors.Is(err, errQuit) {
					return "", false, nil
				}
				printFailure(a.Out, "Failed to open wallet file", err, false)
				continue
			}
			return seed, true, nil
		default:
			return "", false, nil
		}
	}
}

func (a *App) loadSeedFile(cfg *config.Config) (string, error) {
	path := cfg.WalletFilePath
	if path == "" {
		var err error
		if path, err = a.Prompt.Input("Path to wallet file (.wlt)", nil); err != nil {
			return "", err
		}
	}
	password, err := a.Prompt.Password()
	if err != nil {
		return "", err
	}
	defer clear(password)

	seed, network, err := wallet.LoadSeedFile(path, password)
	if err != nil {
		return "", err
	}
	if want := cfg.Endpoints().NetworkID; network != "" && network != want {
		a.Logger.Warn().Str("file", network).Str("profile", want).Msg("wallet file was created for another network")
	}
	return seed, nil
}

// ContractLoop runs the deploy/join menu and then the will menu until the user exits
func (a *App) ContractLoop(ctx context.Context, sessions Sessions) error {
	api, err := a.deployOrJoin(ctx, sessions)
	if err != nil || api == nil {
		return err
	}
	return a.willLoop(ctx, api)
}

func (a *App) deployOrJoin(ctx context.Context, sessions Sessions) (will.API, error) {
	for {
		choice, err := a.Prompt.Select(a.header("Contract Actions"), contractMenu)
		if err != nil {
			return nil, quitOr(err)
		}
		switch choice {
		case 0:
			var api will.API
			err := a.status("Deploying will contract", func() error {
				var err error
				api, err = sessions.Deploy(ctx, "")
				return err
			})
			if err != nil {
				printFailure(a.Out, "Deploy failed", err, true)
				continue
			}
			fmt.Fprintf(a.Out, "  Contract deployed at: %s\n\n", api.ContractAddress())
			return api, nil
		case 1:
			address, err := a.Prompt.Input("Enter the contract address (hex)", nil)
			if err != nil {
				return nil, quitOr(err)
			}
			var api will.API
			err = a.status("Joining will contract", func() error {
				var err error
				api, err = sessions.Join(ctx, address)
				return err
			})
			if err != nil {
				printFailure(a.Out, "Failed to join contract", err, false)
				continue
			}
			fmt.Fprintf(a.Out, "  Joined contract at: %s\n\n", api.ContractAddress())
			return api, nil
		case 2:
			a.monitor(ctx)
		default:
			return nil, nil
		}
	}
}

func (a *App) monitor(ctx context.Context) {
	if a.Monitor == nil {
		fmt.Fprintln(a.Out, "  No wallet to monitor in demo mode")
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitorDust(ctx, a.Monitor, stop)
	}()

	fmt.Fprintln(a.Out, "  Press Enter to return to menu...")
	if a.Stdin != nil {
		bufio.NewReader(a.Stdin).ReadString('\n')
	}
	close(stop)
	<-done
	fmt.Fprintln(a.Out)
}

func (a *App) willLoop(ctx context.Context, api will.API) error {
	for {
		choice, err := a.Prompt.Select(a.header("Will Actions"), willMenu)
		if err != nil {
			return quitOr(err)
		}
		switch choice {
		case 0:
			person, err := a.Prompt.Input("Enter beneficiary public key (hex)", nil)
			if err != nil {
				return quitOr(err)
			}
			amountStr, err := a.Prompt.Input("Enter amount", nil)
			if err != nil {
				return quitOr(err)
			}
			amount, err := common.ParseAmount(amountStr)
			if err != nil {
				printFailure(a.Out, "Add beneficiary failed", err, false)
				continue
			}
			a.run("Adding beneficiary", "Add beneficiary failed", func() (model.FinalizedTxData, error) {
				return api.AddBeneficiary(ctx, person, amount)
			})
		case 1:
			a.run("Executing will", "Execution failed", func() (model.FinalizedTxData, error) {
				return api.ExecuteWill(ctx)
			})
		case 2:
			person, err := a.claimant()
			if err != nil {
				return quitOr(err)
			}
			a.run("Claiming funds", "Claim failed", func() (model.FinalizedTxData, error) {
				return api.Claim(ctx, person)
			})
		case 3:
			a.display(api.DisplayState())
		default:
			return nil
		}
	}
}

// claimant is the wallet's own coin public key, or prompted in demo mode
func (a *App) claimant() (string, error) {
	if a.Wallet != nil {
		return a.Wallet.Keys().CoinPublicKeyHex(), nil
	}
	return a.Prompt.Input("Enter beneficiary public key (hex)", nil)
}

func (a *App) run(label, failure string, call func() (model.FinalizedTxData, error)) {
	var fin model.FinalizedTxData
	err := a.status(label, func() error {
		var err error
		fin, err = call()
		return err
	})
	if err != nil {
		printFailure(a.Out, failure, err, false)
		return
	}
	a.Logger.Info().Str("tx", fin.TxID).Str("circuit", string(fin.Circuit)).Msg("transaction finalized")
	fmt.Fprintf(a.Out, "  Transaction %s finalized\n\n", fin.TxID)
}

func (a *App) display(s model.StateResponse) {
	fmt.Fprintf(a.Out, "  Contract address: %s\n", s.ContractAddress)
	fmt.Fprintf(a.Out, "  Owner:            %s\n", s.Owner)
	fmt.Fprintf(a.Out, "  Executed:         %t\n", s.IsExecuted)
	if len(s.Allocations) == 0 {
		fmt.Fprintln(a.Out, "  Beneficiaries:    none known locally")
	} else {
		fmt.Fprintln(a.Out, "  Beneficiaries:")
		for _, id := range sortedKeys(s.Allocations) {
			fmt.Fprintf(a.Out, "    %s  %s\n", id, common.GroupThousands(s.Allocations[id]))
		}
	}
	fmt.Fprintln(a.Out)
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quitOr(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
