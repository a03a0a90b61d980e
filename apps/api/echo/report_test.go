package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/fee"
	"github.com/osei222/schoolfees/core/report"
	"github.com/osei222/schoolfees/core/user"
)

func Test_reportApi_dashboard(t *testing.T) {
	admin := createUser(t, "Rep Admin", "repadmin", "repadmin@school.test", "S3kr3t#Word", []string{user.RoleAdmin}, true)
	clerk := createUser(t, "Rep Clerk", "repclerk", "repclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)

	createAssignment(t, "2048/2049", "Term 1", "Tuition", "1000.00", "")
	paid := createStudent(t, "Adwoa Nyame", "JHS 1", "2048/2049", "Term 1", "0244000040")
	partial := createStudent(t, "Kwame Ofori", "JHS 2", "2048/2049", "Term 1", "0244000041")
	createStudent(t, "Akua Donkor", "JHS 3", "2048/2049", "Term 1", "0244000042")

	if _, err := feeSvc.RecordPayment(context.Background(), paid.FeeContext(), fee.NewPayment{
		StudentID: paid.ID, Amount: core.MustAmount("1000.00"), Method: "Cash",
	}); err != nil {
		t.Fatalf("feeSvc.RecordPayment(): %v", err)
	}
	if _, err := feeSvc.RecordPayment(context.Background(), partial.FeeContext(), fee.NewPayment{
		StudentID: partial.ID, Amount: core.MustAmount("250.00"), Method: "MoMo",
	}); err != nil {
		t.Fatalf("feeSvc.RecordPayment(): %v", err)
	}

	path := "/v1/reports/dashboard?academic_year=2048%2F2049&term=Term%201"

	t.Run("Admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, clerk))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("Aggregates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, admin))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var dash report.Dashboard
		if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
			t.Fatalf("unmarshalling Dashboard: %v", err)
		}
		if dash.StudentCount != 3 {
			t.Errorf("student count = %d; want 3", dash.StudentCount)
		}
		if want := core.MustAmount("3000.00"); !dash.TotalFees.Equal(want) {
			t.Errorf("total fees = %v; want %v", dash.TotalFees, want)
		}
		if want := core.MustAmount("1250.00"); !dash.TotalCollected.Equal(want) {
			t.Errorf("total collected = %v; want %v", dash.TotalCollected, want)
		}
		if want := core.MustAmount("1750.00"); !dash.TotalOutstanding.Equal(want) {
			t.Errorf("total outstanding = %v; want %v", dash.TotalOutstanding, want)
		}
		if dash.StatusCounts[fee.StatusPaid] != 1 || dash.StatusCounts[fee.StatusPartial] != 1 || dash.StatusCounts[fee.StatusUnpaid] != 1 {
			t.Errorf("status counts = %v", dash.StatusCounts)
		}
	})

	t.Run("Collections by method", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/collections?academic_year=2048%2F2049&term=Term%201", getToken(t, admin))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var col report.Collections
		if err := json.Unmarshal(rec.Body.Bytes(), &col); err != nil {
			t.Fatalf("unmarshalling Collections: %v", err)
		}
		if col.PaymentCount != 2 {
			t.Errorf("payment count = %d; want 2", col.PaymentCount)
		}
		if want := core.MustAmount("1250.00"); !col.Total.Equal(want) {
			t.Errorf("total = %v; want %v", col.Total, want)
		}
		if want := core.MustAmount("1000.00"); !col.ByMethod["Cash"].Equal(want) {
			t.Errorf("by method Cash = %v; want %v", col.ByMethod["Cash"], want)
		}
	})

	t.Run("Outstanding by class", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/outstanding?academic_year=2048%2F2049&term=Term%201", getToken(t, admin))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var rows []report.ClassOutstanding
		if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
			t.Fatalf("unmarshalling rows: %v", err)
		}
		outstanding := make(map[string]string, len(rows))
		for _, row := range rows {
			outstanding[row.Class] = row.Outstanding.StringFixed(2)
		}
		if outstanding["JHS 1"] != "0.00" || outstanding["JHS 2"] != "750.00" || outstanding["JHS 3"] != "1000.00" {
			t.Errorf("outstanding by class = %v", outstanding)
		}
	})

	t.Run("Wallet summary reconciles", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/wallet", getToken(t, admin))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}

		var sum report.WalletSummary
		if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
			t.Fatalf("unmarshalling WalletSummary: %v", err)
		}
		if want := sum.TopUpTotal.Sub(sum.PurchaseTotal); !sum.Account.Balance.Equal(want) {
			t.Errorf("balance = %v; want %v (topups - purchases)", sum.Account.Balance, want)
		}
		if want := sum.SMSUnitsBought - sum.SMSUnitsUsed; sum.Account.SMSUnits != want {
			t.Errorf("sms units = %v; want %v (bought - used)", sum.Account.SMSUnits, want)
		}
	})
}
