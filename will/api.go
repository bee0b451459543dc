// Package will joins or deploys a will contract and drives its circuit calls.
package will

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexZinkM/will-wallet/internal/client"
	"github.com/AlexZinkM/will-wallet/internal/contract"
	"github.com/AlexZinkM/will-wallet/internal/model"
	"github.com/AlexZinkM/will-wallet/internal/pipeline"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog"
)

// DefaultJoinTimeout bounds the wait for a contract's first state
const DefaultJoinTimeout = 30 * time.Second

// API is the operation set shared by a live session and the simulator
type API interface {
	ContractAddress() model.ContractAddress
	Subscribe() (<-chan model.DerivedState, event.Subscription)
	Latest() (model.DerivedState, bool)
	AddBeneficiary(ctx context.Context, person string, amount uint64) (model.FinalizedTxData, error)
	ExecuteWill(ctx context.Context) (model.FinalizedTxData, error)
	Claim(ctx context.Context, person string) (model.FinalizedTxData, error)
	DisplayState() model.StateResponse
	ResetPrivateState(ctx context.Context) error
	Close() error
}

// LedgerSource reads and follows the public contract state
type LedgerSource interface {
	ContractState(ctx context.Context, address model.ContractAddress) (model.LedgerState, error)
	SubscribeContract(ctx context.Context, address model.ContractAddress) (*client.ContractFeed, error)
}

// Submitter runs one circuit call through proving, balancing and submission
type Submitter interface {
	Submit(ctx context.Context, call contract.Call, current model.LedgerState, private *model.PrivateState) (pipeline.Result, error)
}

// PrivateStore persists the private state per contract
type PrivateStore interface {
	Get(ctx context.Context, address model.ContractAddress) (*model.PrivateState, error)
	Set(ctx context.Context, address model.ContractAddress, ps model.PrivateState) error
	Delete(ctx context.Context, address model.ContractAddress) error
}

// Providers are the collaborators a session is built from
type Providers struct {
	Ledger   LedgerSource
	Pipeline Submitter
	Store    PrivateStore
	Logger   zerolog.Logger
}

// BusyPolicy decides what a call does while another is in flight
type BusyPolicy int

const (
	// BusyQueue waits for the in-flight call to finish
	BusyQueue BusyPolicy = iota
	// BusyReject fails with model.ErrSessionBusy
	BusyReject
)

// ParseBusyPolicy maps the configuration value to a policy
func ParseBusyPolicy(s string) (BusyPolicy, error) {
	switch s {
	case "", "queue":
		return BusyQueue, nil
	case "reject":
		return BusyReject, nil
	default:
		return BusyQueue, fmt.Errorf("unknown busy policy %q", s)
	}
}

// Options tunes a session
type Options struct {
	JoinTimeout time.Duration
	BusyPolicy  BusyPolicy
}

func (o Options) withDefaults() Options {
	if o.JoinTimeout <= 0 {
		o.JoinTimeout = DefaultJoinTimeout
	}
	return o
}

// Status is the session lifecycle state
type Status int

const (
	StatusUnjoined Status = iota
	StatusJoining
	StatusJoined
	StatusSubmitting
)

func (s Status) String() string {
	switch s {
	case StatusJoining:
		return "joining"
	case StatusJoined:
		return "joined"
	case StatusSubmitting:
		return "submitting"
	default:
		return "unjoined"
	}
}
