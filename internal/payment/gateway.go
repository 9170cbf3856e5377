package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeclineNonce is the nonce the sandbox gateway always declines.
const DeclineNonce = "fake-invalid-nonce"

var (
	ErrDeclined        = errors.New("payment declined")
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrUnknownCharge   = errors.New("unknown transaction")
)

// Result is the outcome of an approved charge.
type Result struct {
	TransactionID string
	Amount        decimal.Decimal
}

// Gateway charges a client-provided payment nonce. Void cancels an approved
// charge that could not be recorded.
type Gateway interface {
	ClientToken(ctx context.Context) (string, error)
	Charge(ctx context.Context, amount decimal.Decimal, nonce string) (*Result, error)
	Void(ctx context.Context, transactionID string) error
}

// New returns the gateway for provider.
func New(provider string) (Gateway, error) {
	switch provider {
	case "", "sandbox":
		return NewSandboxGateway(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// SandboxGateway approves any non-empty nonce except DeclineNonce and keeps
// its transactions in memory.
type SandboxGateway struct {
	mu     sync.Mutex
	voided map[string]bool // transaction id -> voided
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{voided: make(map[string]bool)}
}

func (g *SandboxGateway) ClientToken(ctx context.Context) (string, error) {
	return "sandbox_" + uuid.NewString(), nil
}

func (g *SandboxGateway) Charge(ctx context.Context, amount decimal.Decimal, nonce string) (*Result, error) {
	if nonce == "" || nonce == DeclineNonce {
		return nil, ErrDeclined
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrDeclined)
	}
	res := &Result{TransactionID: uuid.NewString(), Amount: amount}
	g.mu.Lock()
	g.voided[res.TransactionID] = false
	g.mu.Unlock()
	return res, nil
}

// Void cancels a charge. Voiding twice is not an error.
func (g *SandboxGateway) Void(ctx context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.voided[transactionID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCharge, transactionID)
	}
	g.voided[transactionID] = true
	return nil
}

// Voided reports whether transactionID was voided.
func (g *SandboxGateway) Voided(transactionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.voided[transactionID]
}
