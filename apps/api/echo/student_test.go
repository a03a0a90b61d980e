package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/fee"
	"github.com/osei222/schoolfees/core/student"
	"github.com/osei222/schoolfees/core/user"
)

func Test_studentApi_create(t *testing.T) {
	clerk := createUser(t, "Stu Clerk", "stuclerk", "stuclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)
	token := getToken(t, clerk)

	tests := []httpTest{
		{
			name: "Auth required", body: []byte(`{"name": "Ama", "class": "JHS 1", "academic_year": "2042/2043", "term": "Term 1"}`),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "Missing fields", token: token, body: []byte(`{"name": "Ama"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Bad academic year", token: token,
			body:     []byte(`{"name": "Ama", "class": "JHS 1", "academic_year": "2042", "term": "Term 1"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Created", token: token,
			body: []byte(`{"name": "Ama Serwaa", "class": "JHS 1", "academic_year": "2042/2043", "term": "Term 1",` +
				` "parent_name": "Kofi Serwaa", "parent_contact": "0244000020"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/students", tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var stu student.Student
				if err := json.Unmarshal(rec.Body.Bytes(), &stu); err != nil {
					t.Fatalf("unmarshalling Student: %v", err)
				}
				if stu.ID == 0 || stu.Name != "Ama Serwaa" {
					t.Errorf("unexpected student: %+v", stu)
				}
			}
		})
	}
}

func Test_studentApi_summary(t *testing.T) {
	clerk := createUser(t, "Sum Clerk", "sumclerk", "sumclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)
	token := getToken(t, clerk)

	createAssignment(t, "2043/2044", "Term 1", "Tuition", "800.00", "")
	createAssignment(t, "2043/2044", "Term 1", "ICT", "50.00", "JHS 3")
	stu := createStudent(t, "Kwesi Appiah", "JHS 3", "2043/2044", "Term 1", "0244000021")

	if _, err := feeSvc.RecordPayment(context.Background(), stu.FeeContext(), fee.NewPayment{
		StudentID: stu.ID, Amount: core.MustAmount("150.00"), Method: "Cash",
	}); err != nil {
		t.Fatalf("feeSvc.RecordPayment(): %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+strconv.Itoa(stu.ID)+"/summary", token)
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
	}

	var row student.WithSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &row); err != nil {
		t.Fatalf("unmarshalling WithSummary: %v", err)
	}
	if want := core.MustAmount("850.00"); !row.Summary.TotalFees.Equal(want) {
		t.Errorf("total fees = %v; want %v", row.Summary.TotalFees, want)
	}
	if want := core.MustAmount("700.00"); !row.Summary.Balance.Equal(want) {
		t.Errorf("balance = %v; want %v", row.Summary.Balance, want)
	}
	if row.Summary.Status != fee.StatusPartial {
		t.Errorf("status = %v; want %v", row.Summary.Status, fee.StatusPartial)
	}
}

func Test_studentApi_queryWithSummaries(t *testing.T) {
	clerk := createUser(t, "Qs Clerk", "qsclerk", "qsclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)
	token := getToken(t, clerk)

	createAssignment(t, "2044/2045", "Term 2", "Tuition", "600.00", "")
	paid := createStudent(t, "Abena Sarpong", "JHS 1", "2044/2045", "Term 2", "0244000022")
	unpaid := createStudent(t, "Kojo Antwi", "JHS 1", "2044/2045", "Term 2", "0244000023")

	if _, err := feeSvc.RecordPayment(context.Background(), paid.FeeContext(), fee.NewPayment{
		StudentID: paid.ID, Amount: core.MustAmount("600.00"), Method: "MoMo",
	}); err != nil {
		t.Fatalf("feeSvc.RecordPayment(): %v", err)
	}

	path := fmt.Sprintf("/v1/students?academic_year=%s&term=%s&with_summaries=true", "2044%2F2045", "Term%202")
	req, rec := newAuthRequest(http.MethodGet, path, token)
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
	}

	var rows []student.WithSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshalling rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d; want 2", len(rows))
	}

	statuses := make(map[int]fee.Status, len(rows))
	for _, row := range rows {
		statuses[row.ID] = row.Summary.Status
	}
	if statuses[paid.ID] != fee.StatusPaid {
		t.Errorf("paid student status = %v; want %v", statuses[paid.ID], fee.StatusPaid)
	}
	if statuses[unpaid.ID] != fee.StatusUnpaid {
		t.Errorf("unpaid student status = %v; want %v", statuses[unpaid.ID], fee.StatusUnpaid)
	}
}
