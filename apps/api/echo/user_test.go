package echoapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/osei222/schoolfees/core/user"
)

func Test_userApi_login(t *testing.T) {
	createUser(t, "Afia Mensah", "afiamensah", "afia@school.test", "S3kr3t#Word", nil, true)
	createUser(t, "Locked Out", "lockedout", "locked@school.test", "S3kr3t#Word", nil, false)

	tests := []httpTest{
		{
			name: "Valid credentials", body: []byte(`{"username": "afiamensah", "password": "S3kr3t#Word"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "Login with email", body: []byte(`{"username": "afia@school.test", "password": "S3kr3t#Word"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "Wrong password", body: []byte(`{"username": "afiamensah", "password": "nope"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Unknown user", body: []byte(`{"username": "ghost", "password": "S3kr3t#Word"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Deactivated account", body: []byte(`{"username": "lockedout", "password": "S3kr3t#Word"}`),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			server.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != http.StatusOK {
					t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling LoginResponse: %v", err)
				}
				if resp.Token == "" {
					t.Error("expected a token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	admin := createUser(t, "Head Admin", "headadmin", "head@school.test", "S3kr3t#Word", []string{user.RoleAdmin}, true)
	clerk := createUser(t, "Front Desk", "frontdesk", "desk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)

	tests := []httpTest{
		{
			name: "Auth required", wantCode: http.StatusUnauthorized,
			body:     []byte(`{"name": "X", "password": "S3kr3t#Word", "password_confirm": "S3kr3t#Word"}`),
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "Admin required", token: getToken(t, clerk), wantCode: http.StatusForbidden,
			body:     []byte(`{"name": "X", "password": "S3kr3t#Word", "password_confirm": "S3kr3t#Word"}`),
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Role ceiling enforced", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body: []byte(`{"name": "Big Boss", "username": "bigboss", "password": "S3kr3t#Word",` +
				` "password_confirm": "S3kr3t#Word", "roles": ["admin:owner"]}`),
		},
		{
			name: "Created", token: getToken(t, admin), wantCode: http.StatusCreated,
			body: []byte(`{"name": "New Clerk", "username": "newclerk", "email": "newclerk@school.test",` +
				` "password": "S3kr3t#Word", "password_confirm": "S3kr3t#Word", "roles": ["clerk:"]}`),
		},
		{
			name: "Duplicate username", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body: []byte(`{"name": "New Clerk", "username": "newclerk", "password": "S3kr3t#Word",` +
				` "password_confirm": "S3kr3t#Word"}`),
			wantData: marshalObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshalling User: %v", err)
				}
				if usr.Username != "newclerk" || !usr.IsClerk() {
					t.Errorf("unexpected user created: %+v", usr)
				}
			}
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	admin := createUser(t, "Ret Admin", "retadmin", "retadmin@school.test", "S3kr3t#Word", []string{user.RoleAdmin}, true)
	clerk := createUser(t, "Ret Clerk", "retclerk", "retclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)
	other := createUser(t, "Ret Other", "retother", "retother@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + strconv.Itoa(clerk.ID), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "Own account", path: "/v1/users/" + strconv.Itoa(clerk.ID), token: getToken(t, clerk), wantCode: http.StatusOK},
		{
			// other accounts are hidden from non-admins, not just refused
			name: "Other account hidden from non-admin", path: "/v1/users/" + strconv.Itoa(other.ID), token: getToken(t, clerk),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "not found"}),
		},
		{name: "Admin reads anyone", path: "/v1/users/" + strconv.Itoa(other.ID), token: getToken(t, admin), wantCode: http.StatusOK},
		{
			name: "Not found", path: "/v1/users/999999", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	clerk := createUser(t, "Refresh Clerk", "refclerk", "refclerk@school.test", "S3kr3t#Word", []string{user.RoleClerk}, true)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", "")
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	// the signed token must round-trip through the middleware back into claims
	t.Run("Issues a fresh token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, clerk))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling LoginResponse: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a token in the response")
		}
	})
}
