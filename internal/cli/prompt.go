package cli

import (
	"errors"

	"github.com/AlexZinkM/will-wallet/internal/config"

	"github.com/manifoldco/promptui"
)

// Prompter reads user choices
type Prompter interface {
	// Select returns the index of the chosen item
	Select(label string, items []string) (int, error)
	Input(label string, validate func(string) error) (string, error)
	// Password reads a hidden password; the caller zeroes it
	Password() ([]byte, error)
}

// errQuit is returned when the user interrupts a prompt
var errQuit = errors.New("quit")

// TerminalPrompter prompts on the controlling terminal
type TerminalPrompter struct{}

func (TerminalPrompter) Select(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label:        label,
		Items:        items,
		Size:         len(items),
		HideSelected: true,
	}
	i, _, err := prompt.Run()
	return i, mapPromptErr(err)
}

func (TerminalPrompter) Input(label string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
	}
	if validate != nil {
		prompt.Validate = promptui.ValidateFunc(validate)
	}
	s, err := prompt.Run()
	return s, mapPromptErr(err)
}

func (TerminalPrompter) Password() ([]byte, error) {
	if err := config.PromptForPassword(); err != nil {
		return nil, err
	}
	defer config.ClearPassword()
	return config.GetPasswordBytes()
}

func mapPromptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errQuit
	}
	return err
}
