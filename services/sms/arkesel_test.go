package smssvc

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osei222/schoolfees/core"
	logsvc "github.com/osei222/schoolfees/services/logger"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0241234567", "233241234567"},
		{"024 123 4567", "233241234567"},
		{"+233241234567", "233241234567"},
		{"233241234567", "233241234567"},
		{"0201-234-567", "233201234567"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestArkeselSend(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"action": r.URL.Query().Get("action"),
			"to":     r.URL.Query().Get("to"),
			"from":   r.URL.Query().Get("from"),
			"sms":    r.URL.Query().Get("sms"),
		}
		_, _ = fmt.Fprint(w, `{"code":"ok","message":"Successfully Sent"}`)
	}))
	defer srv.Close()

	conf := core.NewTestConfig()
	conf.SMS.APIURL = srv.URL
	conf.SMS.SenderID = "SchoolFees"
	svc := NewArkeselService(conf, logsvc.NewConsoleLogger(testLogger()))

	res := svc.Send("0241234567", "Hello")
	require.True(t, res.Sent)
	assert.Empty(t, res.Err)
	assert.Equal(t, "send-sms", gotQuery["action"])
	assert.Equal(t, "233241234567", gotQuery["to"])
	assert.Equal(t, "SchoolFees", gotQuery["from"])
	assert.Equal(t, "Hello", gotQuery["sms"])
}

func TestArkeselSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"code":"109","message":"Insufficient balance"}`)
	}))
	defer srv.Close()

	conf := core.NewTestConfig()
	conf.SMS.APIURL = srv.URL
	svc := NewArkeselService(conf, logsvc.NewConsoleLogger(testLogger()))

	res := svc.Send("0241234567", "Hello")
	require.False(t, res.Sent)
	assert.Equal(t, "Insufficient balance", res.Err)
	assert.NotEmpty(t, res.Raw)
}
