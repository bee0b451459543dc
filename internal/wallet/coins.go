package wallet

import (
	"errors"

	"github.com/AlexZinkM/will-wallet/internal/client"
)

var errNoCoins = errors.New("no spendable coins")

// selectCoins picks fee coins covering target: the first single coin that
// covers it, otherwise coins accumulated in order until the target is met.
func selectCoins(coins []client.DustCoin, target uint64) ([]client.DustCoin, uint64, error) {
	if len(coins) == 0 {
		return nil, 0, errNoCoins
	}

	for _, c := range coins {
		if c.Value >= target {
			return []client.DustCoin{c}, c.Value, nil
		}
	}

	var (
		selected []client.DustCoin
		total    uint64
	)
	for _, c := range coins {
		selected = append(selected, c)
		total += c.Value
		if total >= target {
			return selected, total, nil
		}
	}
	return nil, total, errNoCoins
}

// spendable filters out pending and reserved coins
func spendable(coins []client.DustCoin, reserved map[string]struct{}) []client.DustCoin {
	out := make([]client.DustCoin, 0, len(coins))
	for _, c := range coins {
		if c.Pending {
			continue
		}
		if _, ok := reserved[c.Nonce]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sumCoins adds coin values
func sumCoins(coins []client.DustCoin) uint64 {
	var total uint64
	for _, c := range coins {
		total += c.Value
	}
	return total
}
