package model

// JoinRequest represents request for POST /will/join
type JoinRequest struct {
	ContractAddress string `json:"contractAddress"`
}

// DeployRequest represents request for POST /will/deploy
type DeployRequest struct {
	InitialOwner string `json:"initialOwner"`
}

// JoinResponse represents response for POST /will/join and /will/deploy
type JoinResponse struct {
	ContractAddress string        `json:"contractAddress"`
	State           StateResponse `json:"state"`
}

// AddBeneficiaryRequest represents request for POST /will/beneficiaries
type AddBeneficiaryRequest struct {
	Person string `json:"person"`
	Amount uint64 `json:"amount"`
}

// ClaimRequest represents request for POST /will/claim
type ClaimRequest struct {
	Person string `json:"person"`
}

// StateResponse represents response for GET /will/state
type StateResponse struct {
	ContractAddress string            `json:"contractAddress"`
	Owner           string            `json:"owner"`
	IsExecuted      bool              `json:"isExecuted"`
	Allocations     map[string]uint64 `json:"allocations,omitempty"`
}

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	Address       string      `json:"address"`
	CoinPublicKey string      `json:"coinPublicKey"`
	Dust          DustBalance `json:"dust"`
	DustDisplay   string      `json:"dustDisplay"`
	Synced        bool        `json:"synced"`
}
