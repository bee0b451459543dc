package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joined(t *testing.T, opts Options) *Simulator {
	t.Helper()
	opts.Logger = zerolog.Nop()
	s := New(opts)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Join(context.Background()))
	return s
}

func TestSimulator_RequiresConnectThenJoin(t *testing.T) {
	s := New(Options{Logger: zerolog.Nop()})
	defer s.Close()
	ctx := context.Background()

	err := s.Join(ctx)
	assert.True(t, model.IsWalletConnectionError(err))

	_, err = s.AddBeneficiary(ctx, "cd34", 1)
	assert.True(t, model.IsValidationError(err))

	require.NoError(t, s.Connect(ctx))
	assert.True(t, s.Connected())
	_, ok := s.Latest()
	assert.False(t, ok)

	require.NoError(t, s.Join(ctx))
	require.Eventually(t, func() bool {
		d, ok := s.Latest()
		return ok && d.OwnerHex() == DemoOwnerHex && !d.IsExecuted
	}, time.Second, 5*time.Millisecond)
}

func TestSimulator_Seeded(t *testing.T) {
	s := joined(t, Options{Seed: true})
	b := s.Beneficiaries()
	require.Len(t, b, 2)
	assert.Equal(t, uint64(5000), b[0].Amount)
	assert.Equal(t, uint64(12500), b[1].Amount)
	assert.True(t, b[0].AddedAt.Before(b[1].AddedAt))
}

func TestSimulator_Scenario(t *testing.T) {
	s := joined(t, Options{})
	ctx := context.Background()

	_, err := s.AddBeneficiary(ctx, "cd34", 5000)
	require.NoError(t, err)
	_, err = s.AddBeneficiary(ctx, "cd34", 1)
	require.NoError(t, err)
	assert.Len(t, s.Beneficiaries(), 2)
	assert.Equal(t, map[string]uint64{"cd34": 5001}, s.DisplayState().Allocations)

	_, err = s.Claim(ctx, "cd34")
	assert.True(t, model.IsValidationError(err), "claim before execute")

	fin, err := s.ExecuteWill(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusAccepted, fin.Status)
	assert.NotEmpty(t, fin.TxID)
	require.Eventually(t, func() bool {
		d, _ := s.Latest()
		return d.IsExecuted
	}, time.Second, 5*time.Millisecond)

	_, err = s.ExecuteWill(ctx)
	assert.True(t, model.IsValidationError(err))
	_, err = s.AddBeneficiary(ctx, "ef56", 1)
	assert.True(t, model.IsValidationError(err))

	_, err = s.Claim(ctx, "cd34")
	require.NoError(t, err)
	assert.Empty(t, s.Beneficiaries())

	_, err = s.Claim(ctx, "cd34")
	assert.True(t, model.IsValidationError(err))
}

func TestSimulator_ValidationFailsAfterDelay(t *testing.T) {
	s := joined(t, Options{Delays: Delays{Add: 30 * time.Millisecond, Claim: 30 * time.Millisecond}})
	ctx := context.Background()

	start := time.Now()
	_, err := s.AddBeneficiary(ctx, "", 100)
	assert.True(t, model.IsValidationError(err))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	start = time.Now()
	_, err = s.Claim(ctx, "cd34")
	assert.True(t, model.IsValidationError(err), "claim before execute")
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	_, err = s.AddBeneficiary(ctx, "cd34", 0)
	assert.True(t, model.IsValidationError(err))
	assert.Empty(t, s.Beneficiaries())

	// the slot is released after a rejection
	_, err = s.AddBeneficiary(ctx, "cd34", 7)
	require.NoError(t, err)
	assert.Len(t, s.Beneficiaries(), 1)
}

func TestSimulator_DelayAndCancel(t *testing.T) {
	s := joined(t, Options{Delays: Delays{Add: 40 * time.Millisecond, Execute: time.Hour}})

	start := time.Now()
	_, err := s.AddBeneficiary(context.Background(), "cd34", 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.ExecuteWill(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.DisplayState().IsExecuted)

	// the slot was released
	s.delays.Execute = 0
	_, err = s.ExecuteWill(context.Background())
	require.NoError(t, err)
}

func TestSimulator_ResetPrivateState(t *testing.T) {
	ctx := context.Background()
	s := New(Options{Logger: zerolog.Nop(), Seed: true})
	defer s.Close()
	assert.ErrorIs(t, s.ResetPrivateState(ctx), errNotJoined)

	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Join(ctx))
	_, err := s.ExecuteWill(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ResetPrivateState(ctx))
	assert.Empty(t, s.Beneficiaries())
	assert.True(t, s.DisplayState().IsExecuted)

	_, err = s.Claim(ctx, "cd34")
	assert.True(t, model.IsValidationError(err))
}

func TestDefaultDelays(t *testing.T) {
	d := DefaultDelays()
	assert.Equal(t, 1200*time.Millisecond, d.Connect)
	assert.Equal(t, 3*time.Second, d.Execute)
}
