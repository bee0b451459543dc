package simulator

import (
	"context"

	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/will"
)

// Sessions serves the simulator through the same session lifecycle as a live manager
type Sessions struct {
	Sim *Simulator
}

// Join connects if needed and joins the demo contract; the address is ignored
func (d Sessions) Join(ctx context.Context, _ string) (will.API, error) {
	if !d.Sim.Connected() {
		if err := d.Sim.Connect(ctx); err != nil {
			return nil, err
		}
	}
	if err := d.Sim.Join(ctx); err != nil {
		return nil, err
	}
	return d.Sim, nil
}

// Deploy is not simulated
func (d Sessions) Deploy(context.Context, string) (will.API, error) {
	return nil, &model.ValidationError{Field: "mode", Message: "deploy is not available in demo mode, join instead"}
}

// Current returns the simulator once it joined
func (d Sessions) Current() (will.API, bool) {
	if !d.Sim.Joined() {
		return nil, false
	}
	return d.Sim, true
}

// Close closes the simulator
func (d Sessions) Close() error {
	return d.Sim.Close()
}
