package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/common"
	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/pterm/pterm"
)

// maxCauseDepth bounds the printed cause chain
const maxCauseDepth = 5

const dustHint = "Insufficient DUST for transaction fees. Use option [Monitor DUST balance] to watch your balance."

// withStatus runs fn behind a spinner
func withStatus(label string, fn func() error) error {
	spinner, err := pterm.DefaultSpinner.WithText(label).Start()
	if err != nil {
		return fn()
	}
	if err := fn(); err != nil {
		spinner.Fail(label + " failed")
		return err
	}
	spinner.Success(label)
	return nil
}

// printFailure writes the failure line, the cause chain when withCauses is
// set, and the DUST hint on insufficient funds
func printFailure(out io.Writer, what string, err error, withCauses bool) {
	fmt.Fprintf(out, "  ✗ %s: %v\n", what, err)
	if withCauses {
		cause := errors.Unwrap(err)
		for depth := 0; cause != nil && depth < maxCauseDepth; depth++ {
			fmt.Fprintf(out, "    cause: %v\n", cause)
			cause = errors.Unwrap(cause)
		}
	}
	if model.IsInsufficientFunds(err) || strings.Contains(strings.ToLower(err.Error()), "dust") {
		fmt.Fprintf(out, "    %s\n", dustHint)
	}
	fmt.Fprintln(out)
}

// dustLabel formats a balance for menu headers
func dustLabel(b model.DustBalance) string {
	return common.GroupThousands(b.Available)
}

func formatMonitor(b model.DustBalance, elapsed time.Duration) string {
	var sb strings.Builder
	sb.WriteString(pterm.DefaultSection.Sprint("DUST balance"))
	fmt.Fprintf(&sb, "  Available: %s DUST (%d coins)\n", common.SpecksToDust(b.Available), b.AvailableCoins)
	fmt.Fprintf(&sb, "  Pending:   %s DUST (%d coins)\n", common.SpecksToDust(b.Pending), b.PendingCoins)
	fmt.Fprintf(&sb, "  Watching for %s\n", elapsed.Round(time.Second))
	return sb.String()
}

// monitorDust renders the balance in a live area until stop closes
func monitorDust(ctx context.Context, monitor func(context.Context, <-chan struct{}, func(model.DustBalance)), stop <-chan struct{}) {
	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return
	}
	defer area.Stop()

	start := time.Now()
	monitor(ctx, stop, func(b model.DustBalance) {
		area.Update(formatMonitor(b, time.Since(start)))
	})
}
