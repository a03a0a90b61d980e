package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/user"
	"github.com/osei222/schoolfees/core/wallet"
)

func Test_walletApi_topUp(t *testing.T) {
	owner := createUser(t, "Wallet Owner", "walletowner", "owner@school.test", "S3kr3t#Word", []string{user.RoleAdminOwner}, true)
	admin := createUser(t, "Wallet Admin", "walletadmin", "wadmin@school.test", "S3kr3t#Word", []string{user.RoleAdmin}, true)

	before, err := walletSvc.Account(context.Background())
	if err != nil {
		t.Fatalf("walletSvc.Account(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", body: []byte(`{"amount": 100, "method": "MoMo"}`), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "Owner required", token: getToken(t, admin), body: []byte(`{"amount": 100, "method": "MoMo"}`),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Below minimum rejected", token: getToken(t, owner), body: []byte(`{"amount": 3, "method": "MoMo"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"amount": "minimum top-up is 5.00"}),
		},
		{name: "Minimum exactly", token: getToken(t, owner), body: []byte(`{"amount": 5, "method": "MoMo"}`), wantCode: http.StatusCreated},
		{name: "Topped up", token: getToken(t, owner), body: []byte(`{"amount": 95, "method": "Bank"}`), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/wallet/topup", tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	after, err := walletSvc.Account(context.Background())
	if err != nil {
		t.Fatalf("walletSvc.Account(): %v", err)
	}
	if want := before.Balance.Add(core.MustAmount("100.00")); !after.Balance.Equal(want) {
		t.Errorf("balance = %v; want %v", after.Balance, want)
	}
	if after.Version != before.Version+2 {
		t.Errorf("version = %v; want %v", after.Version, before.Version+2)
	}
}

func Test_walletApi_purchaseSMS(t *testing.T) {
	admin := createUser(t, "SMS Buyer", "smsbuyer", "smsbuyer@school.test", "S3kr3t#Word", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	// fund enough for one purchase, not a bulk one
	if _, _, err := walletSvc.TopUp(context.Background(), wallet.NewTopUp{Amount: core.MustAmount("20.00"), Method: "Bank"}); err != nil {
		t.Fatalf("walletSvc.TopUp(): %v", err)
	}
	before, err := walletSvc.Account(context.Background())
	if err != nil {
		t.Fatalf("walletSvc.Account(): %v", err)
	}

	tests := []httpTest{
		{
			name: "Below minimum rejected", token: token, body: []byte(`{"units": 5}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"units": wallet.ErrBelowMinimum.Error()}),
		},
		{
			name: "Insufficient funds rejected", token: token, body: []byte(`{"units": 100000}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"units": wallet.ErrInsufficientFunds.Error()}),
		},
		{name: "Purchased", token: token, body: []byte(`{"units": 50}`), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/wallet/sms-purchase", tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusCreated {
				return
			}
			var resp WalletOperationResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling WalletOperationResponse: %v", err)
			}
			if resp.Transaction.SMSUnitsDelta != 50 {
				t.Errorf("units delta = %v; want 50", resp.Transaction.SMSUnitsDelta)
			}
			// 50 units at 0.20 each, below the bulk threshold
			if want := core.MustAmount("-10.00"); !resp.Transaction.AmountDelta.Equal(want) {
				t.Errorf("amount delta = %v; want %v", resp.Transaction.AmountDelta, want)
			}
		})
	}

	after, err := walletSvc.Account(context.Background())
	if err != nil {
		t.Fatalf("walletSvc.Account(): %v", err)
	}
	if want := before.Balance.Sub(core.MustAmount("10.00")); !after.Balance.Equal(want) {
		t.Errorf("balance = %v; want %v", after.Balance, want)
	}
	if after.SMSUnits != before.SMSUnits+50 {
		t.Errorf("sms units = %v; want %v", after.SMSUnits, before.SMSUnits+50)
	}

	// the ledger reconciles: deltas sum to the current state
	txns, err := walletSvc.Transactions(context.Background(), 0)
	if err != nil {
		t.Fatalf("walletSvc.Transactions(): %v", err)
	}
	balance := core.MustAmount("0")
	var units int
	for _, txn := range txns {
		balance = balance.Add(txn.AmountDelta)
		units += txn.SMSUnitsDelta
	}
	if !balance.Equal(after.Balance) {
		t.Errorf("ledger balance = %v; account balance %v", balance, after.Balance)
	}
	if units != after.SMSUnits {
		t.Errorf("ledger units = %v; account units %v", units, after.SMSUnits)
	}
}
