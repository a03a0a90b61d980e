package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/osei222/schoolfees/core/comms"
	"github.com/osei222/schoolfees/core/user"
	"github.com/osei222/schoolfees/core/wallet"
)

func drainSMSUnits(t *testing.T) {
	t.Helper()
	acct, err := walletSvc.Account(context.Background())
	if err != nil {
		t.Fatalf("walletSvc.Account(): %v", err)
	}
	if acct.SMSUnits > 0 {
		if _, _, err = walletSvc.DebitSMS(context.Background(), acct.SMSUnits, "drained for test"); err != nil {
			t.Fatalf("walletSvc.DebitSMS(): %v", err)
		}
	}
}

func fundSMSUnits(t *testing.T, units int) {
	t.Helper()
	policy := walletSvc.Policy()
	cost := policy.PurchaseCost(units)
	if cost.LessThan(policy.MinTopUp) {
		cost = policy.MinTopUp
	}
	if _, _, err := walletSvc.TopUp(context.Background(), wallet.NewTopUp{Amount: cost, Method: "Bank"}); err != nil {
		t.Fatalf("walletSvc.TopUp(): %v", err)
	}
	if _, _, err := walletSvc.PurchaseSMS(context.Background(), wallet.NewPurchase{Units: units}); err != nil {
		t.Fatalf("walletSvc.PurchaseSMS(): %v", err)
	}
}

func Test_smsApi_send(t *testing.T) {
	clerk := createUser(t, "SMS Clerk", "smsclerk", "smsclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)
	token := getToken(t, clerk)

	drainSMSUnits(t)

	body := []byte(`{"recipient": "0244000010", "message": "PTA meeting on Friday"}`)

	t.Run("No units blocks send", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/send", token, body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusPaymentRequired {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusPaymentRequired)
		}
	})

	fundSMSUnits(t, 20)
	before, err := walletSvc.Account(context.Background())
	if err != nil {
		t.Fatalf("walletSvc.Account(): %v", err)
	}

	t.Run("Sent and debited", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/send", token, body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var msg comms.Message
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
			t.Fatalf("unmarshalling Message: %v", err)
		}
		if msg.Status != comms.StatusSent {
			t.Errorf("status = %v; want %v", msg.Status, comms.StatusSent)
		}
		if msg.UnitsUsed != 1 {
			t.Errorf("units used = %v; want 1", msg.UnitsUsed)
		}

		acct, err := walletSvc.Account(context.Background())
		if err != nil {
			t.Fatalf("walletSvc.Account(): %v", err)
		}
		if acct.SMSUnits != before.SMSUnits-1 {
			t.Errorf("sms units = %v; want %v", acct.SMSUnits, before.SMSUnits-1)
		}
		if !acct.Balance.Equal(before.Balance) {
			t.Errorf("balance = %v; want %v (unchanged)", acct.Balance, before.Balance)
		}
	})

	t.Run("Missing recipient rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/send", token, []byte(`{"message": "hi"}`))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func Test_smsApi_templates(t *testing.T) {
	admin := createUser(t, "Tpl Admin", "tpladmin", "tpladmin@school.test", "S3kr3t#Word", []string{user.RoleAdmin}, true)
	clerk := createUser(t, "Tpl Clerk", "tplclerk", "tplclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)

	var tpl comms.Template

	t.Run("Admin required", func(t *testing.T) {
		body := []byte(`{"name": "reminder", "body": "Dear {{.ParentName}}, fees are due."}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/templates", getToken(t, clerk), body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("Created", func(t *testing.T) {
		body := []byte(`{"name": "reminder", "body": "Dear {{.ParentName}}, fees are due."}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/templates", getToken(t, admin), body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &tpl); err != nil {
			t.Fatalf("unmarshalling Template: %v", err)
		}
	})

	t.Run("Malformed body rejected", func(t *testing.T) {
		body := []byte(`{"name": "broken", "body": "Dear {{.ParentName"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/templates", getToken(t, admin), body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("Send with template", func(t *testing.T) {
		fundSMSUnits(t, 10)
		body := []byte(`{"recipient": "0244000011", "template": "reminder", "data": {"ParentName": "Mr Owusu"}}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/send", getToken(t, clerk), body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var msg comms.Message
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
			t.Fatalf("unmarshalling Message: %v", err)
		}
		if want := "Dear Mr Owusu, fees are due."; msg.Body != want {
			t.Errorf("body = %q; want %q", msg.Body, want)
		}
	})

	t.Run("Unknown template", func(t *testing.T) {
		body := []byte(`{"recipient": "0244000011", "template": "nope"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/sms/send", getToken(t, clerk), body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("Updated", func(t *testing.T) {
		body := []byte(`{"name": "reminder", "body": "Hello {{.ParentName}}, kindly settle the balance."}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/sms/templates/"+itoa(tpl.ID), getToken(t, admin), body)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})

	t.Run("Deleted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/sms/templates/"+itoa(tpl.ID), getToken(t, admin))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}

func itoa(n int) string { return strconv.Itoa(n) }
