// One-off: seal a hex seed or mnemonic into an encrypted .wlt file for later restore.
// Usage: go run ./cmd/seal_seed [path.wlt]   (defaults to WALLET_FILE_PATH)
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlexZinkM/will-wallet/internal/config"
	"github.com/AlexZinkM/will-wallet/internal/wallet"

	"golang.org/x/term"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	path := cfg.WalletFilePath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		fail(fmt.Errorf("usage: seal_seed <path.wlt> or set WALLET_FILE_PATH"))
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fail(fmt.Errorf("stdin is not a terminal"))
	}
	fmt.Fprint(os.Stderr, "Enter seed (hex) or mnemonic: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fail(err)
	}
	secret := strings.TrimSpace(string(raw))
	clear(raw)

	seed := secret
	if wallet.IsMnemonic(secret) {
		if seed, err = wallet.MnemonicToSeed(secret); err != nil {
			fail(err)
		}
	}

	if err := config.PromptForPassword(); err != nil {
		fail(err)
	}
	password, err := config.GetPasswordBytes()
	config.ClearPassword()
	if err != nil {
		fail(err)
	}
	defer clear(password)

	address, err := wallet.SaveSeedFile(path, cfg.Endpoints().NetworkID, seed, password)
	if err != nil {
		if wallet.IsFileExistsError(err) {
			fail(fmt.Errorf("%s already holds a wallet, choose another path", path))
		}
		fail(err)
	}
	fmt.Printf("Sealed wallet %s into %s\n", address, path)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
