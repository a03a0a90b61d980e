package wallet

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/osei222/schoolfees/core"
)

var (
	// errors
	ErrBelowMinimum      = errors.New("amount is below the allowed minimum")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInsufficientUnits = errors.New("insufficient sms units")
	ErrInvalidUnits      = errors.New("sms unit count must be positive")

	// ErrConflict reports a lost optimistic-concurrency race in the store.
	ErrConflict = errors.New("wallet was modified concurrently")
)

type Type string

const (
	TypeTopUp       Type = "topup"
	TypeSMSPurchase Type = "sms_purchase"
	TypeSMSUsage    Type = "sms_usage"
)

type (
	// Account is the school's prepaid wallet. Version guards optimistic
	// concurrency at the storage boundary; the engine itself never locks.
	Account struct {
		Balance   decimal.Decimal `json:"balance"`
		SMSUnits  int             `json:"sms_units"`
		Version   int             `json:"-"`
		UpdatedAt time.Time       `json:"updated_at"` // UTC
	}

	// Transaction is one row of the append-only wallet ledger. Resulting
	// balances are recorded so the ledger audits without replaying.
	Transaction struct {
		ID                int             `json:"id"`
		Type              Type            `json:"type"`
		AmountDelta       decimal.Decimal `json:"amount_delta"`
		SMSUnitsDelta     int             `json:"sms_units_delta"`
		ResultingBalance  decimal.Decimal `json:"resulting_balance"`
		ResultingSMSUnits int             `json:"resulting_sms_units"`
		Method            string          `json:"method,omitempty"`
		Reference         string          `json:"reference"`
		Description       string          `json:"description"`
		CreatedAt         time.Time       `json:"created_at"` // UTC
	}

	// Policy holds the tenant's wallet rules, sourced from config.
	Policy struct {
		MinTopUp        decimal.Decimal
		MinSMSPurchase  int
		SMSUnitPrice    decimal.Decimal
		BulkThreshold   int
		BulkDiscountPct int
	}
)

// PolicyFromConfig parses the config's decimal strings into a Policy.
func PolicyFromConfig(conf *core.Config) (Policy, error) {
	minTopUp, err := core.ParseAmount(conf.Wallet.MinTopUp)
	if err != nil {
		return Policy{}, errors.Wrap(err, "parsing wallet.minTopUp")
	}
	unitPrice, err := core.ParseAmount(conf.Wallet.SMSUnitPrice)
	if err != nil {
		return Policy{}, errors.Wrap(err, "parsing wallet.smsUnitPrice")
	}
	return Policy{
		MinTopUp:        minTopUp,
		MinSMSPurchase:  conf.Wallet.MinSMSPurchase,
		SMSUnitPrice:    unitPrice,
		BulkThreshold:   conf.Wallet.BulkThreshold,
		BulkDiscountPct: conf.Wallet.BulkDiscountPct,
	}, nil
}

// PurchaseCost prices an SMS purchase, applying the bulk discount when the
// order reaches the threshold.
func (p Policy) PurchaseCost(units int) decimal.Decimal {
	cost := p.SMSUnitPrice.Mul(decimal.NewFromInt(int64(units)))
	if p.BulkThreshold > 0 && units >= p.BulkThreshold && p.BulkDiscountPct > 0 {
		discount := cost.Mul(decimal.NewFromInt(int64(p.BulkDiscountPct))).Div(decimal.NewFromInt(100))
		cost = cost.Sub(discount)
	}
	return core.MoneyRound(cost)
}

// API request payloads

type NewTopUp struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required"`
	Reference string          `json:"reference"`
}

func (nt NewTopUp) Validate(validate *validator.Validate) error {
	return validate.Struct(nt)
}

type NewPurchase struct {
	Units int `json:"units" validate:"required"`
}

func (np NewPurchase) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}
