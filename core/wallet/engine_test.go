package wallet

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/osei222/schoolfees/core"
)

func testPolicy() Policy {
	return Policy{
		MinTopUp:        core.MustAmount("5.00"),
		MinSMSPurchase:  10,
		SMSUnitPrice:    core.MustAmount("0.20"),
		BulkThreshold:   1000,
		BulkDiscountPct: 10,
	}
}

func account(balance string, units, version int) Account {
	return Account{Balance: core.MustAmount(balance), SMSUnits: units, Version: version}
}

func TestApply_topUp(t *testing.T) {
	p := testPolicy()

	t.Run("below minimum leaves the account untouched", func(t *testing.T) {
		before := account("10.00", 3, 7)
		after, txn, err := Apply(p, before, TopUp{Amount: core.MustAmount("4.99"), Method: "MoMo"})
		if err != ErrBelowMinimum {
			t.Fatalf("err = %v; want ErrBelowMinimum", err)
		}
		if !after.Balance.Equal(before.Balance) || after.Version != before.Version {
			t.Errorf("account changed on a rejected op: %+v", after)
		}
		if txn.Type != "" {
			t.Errorf("txn = %+v; want zero value", txn)
		}
	})

	t.Run("minimum exactly is accepted", func(t *testing.T) {
		after, txn, err := Apply(p, account("0.00", 0, 0), TopUp{Amount: core.MustAmount("5.00"), Method: "Cash"})
		if err != nil {
			t.Fatalf("Apply(): %v", err)
		}
		if !after.Balance.Equal(core.MustAmount("5.00")) {
			t.Errorf("Balance = %v; want 5.00", after.Balance)
		}
		if after.Version != 1 {
			t.Errorf("Version = %d; want 1", after.Version)
		}
		if txn.Type != TypeTopUp || !txn.AmountDelta.Equal(core.MustAmount("5.00")) {
			t.Errorf("txn = %+v", txn)
		}
		if txn.Reference == "" {
			t.Error("expected a generated reference")
		}
	})

	t.Run("resulting balance recorded", func(t *testing.T) {
		after, txn, err := Apply(p, account("12.50", 4, 2), TopUp{Amount: core.MustAmount("100.00"), Method: "Bank"})
		if err != nil {
			t.Fatalf("Apply(): %v", err)
		}
		if !txn.ResultingBalance.Equal(after.Balance) || txn.ResultingSMSUnits != after.SMSUnits {
			t.Errorf("txn resulting state %v/%d != account %v/%d",
				txn.ResultingBalance, txn.ResultingSMSUnits, after.Balance, after.SMSUnits)
		}
	})
}

func TestApply_purchaseSMS(t *testing.T) {
	p := testPolicy()

	t.Run("below minimum units", func(t *testing.T) {
		before := account("100.00", 0, 1)
		after, _, err := Apply(p, before, PurchaseSMS{Units: 9})
		if err != ErrBelowMinimum {
			t.Fatalf("err = %v; want ErrBelowMinimum", err)
		}
		if after.Version != before.Version {
			t.Error("account changed on a rejected op")
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		// 50 units at 0.20 = 10.00
		before := account("9.99", 0, 1)
		after, _, err := Apply(p, before, PurchaseSMS{Units: 50})
		if err != ErrInsufficientFunds {
			t.Fatalf("err = %v; want ErrInsufficientFunds", err)
		}
		if !after.Balance.Equal(before.Balance) || after.SMSUnits != before.SMSUnits {
			t.Error("account changed on a rejected op")
		}
	})

	t.Run("purchased at unit price", func(t *testing.T) {
		after, txn, err := Apply(p, account("10.00", 5, 1), PurchaseSMS{Units: 50})
		if err != nil {
			t.Fatalf("Apply(): %v", err)
		}
		if !after.Balance.Equal(core.MustAmount("0.00")) {
			t.Errorf("Balance = %v; want 0.00", after.Balance)
		}
		if after.SMSUnits != 55 {
			t.Errorf("SMSUnits = %d; want 55", after.SMSUnits)
		}
		if !txn.AmountDelta.Equal(core.MustAmount("-10.00")) || txn.SMSUnitsDelta != 50 {
			t.Errorf("txn deltas = %v/%d; want -10.00/50", txn.AmountDelta, txn.SMSUnitsDelta)
		}
	})

	t.Run("bulk discount at the threshold", func(t *testing.T) {
		// 1000 units at 0.20 = 200.00, minus 10% = 180.00
		after, txn, err := Apply(p, account("180.00", 0, 1), PurchaseSMS{Units: 1000})
		if err != nil {
			t.Fatalf("Apply(): %v", err)
		}
		if !after.Balance.Equal(core.MustAmount("0.00")) {
			t.Errorf("Balance = %v; want 0.00 after discounted purchase", after.Balance)
		}
		if !txn.AmountDelta.Equal(core.MustAmount("-180.00")) {
			t.Errorf("AmountDelta = %v; want -180.00", txn.AmountDelta)
		}
	})

	t.Run("just under the threshold pays full price", func(t *testing.T) {
		if cost := p.PurchaseCost(999); !cost.Equal(core.MustAmount("199.80")) {
			t.Errorf("PurchaseCost(999) = %v; want 199.80", cost)
		}
	})
}

func TestApply_debitSMS(t *testing.T) {
	p := testPolicy()

	t.Run("zero units on hand", func(t *testing.T) {
		before := account("50.00", 0, 1)
		after, _, err := Apply(p, before, DebitSMS{Count: 1})
		if err != ErrInsufficientUnits {
			t.Fatalf("err = %v; want ErrInsufficientUnits", err)
		}
		if after.Version != before.Version {
			t.Error("account changed on a rejected op")
		}
	})

	t.Run("count must be positive", func(t *testing.T) {
		for _, count := range []int{0, -3} {
			if _, _, err := Apply(p, account("50.00", 10, 1), DebitSMS{Count: count}); err != ErrInvalidUnits {
				t.Errorf("Count %d: err = %v; want ErrInvalidUnits", count, err)
			}
		}
	})

	t.Run("balance untouched by a debit", func(t *testing.T) {
		before := account("50.00", 10, 1)
		after, txn, err := Apply(p, before, DebitSMS{Count: 4, Reason: "Receipt batch"})
		if err != nil {
			t.Fatalf("Apply(): %v", err)
		}
		if !after.Balance.Equal(before.Balance) {
			t.Errorf("Balance = %v; want unchanged", after.Balance)
		}
		if after.SMSUnits != 6 || txn.SMSUnitsDelta != -4 {
			t.Errorf("SMSUnits = %d, delta = %d; want 6, -4", after.SMSUnits, txn.SMSUnitsDelta)
		}
		if !txn.AmountDelta.Equal(decimal.Zero) {
			t.Errorf("AmountDelta = %v; want 0", txn.AmountDelta)
		}
		if txn.Description != "Receipt batch" {
			t.Errorf("Description = %q", txn.Description)
		}
	})
}

func TestApply_versionMonotonic(t *testing.T) {
	p := testPolicy()
	acct := account("0.00", 0, 0)

	ops := []Operation{
		TopUp{Amount: core.MustAmount("50.00"), Method: "MoMo"},
		PurchaseSMS{Units: 100},
		DebitSMS{Count: 2},
	}
	for i, op := range ops {
		next, _, err := Apply(p, acct, op)
		if err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		if next.Version != acct.Version+1 {
			t.Fatalf("op %d: Version = %d; want %d", i, next.Version, acct.Version+1)
		}
		acct = next
	}
}
