package smssvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osei222/schoolfees/core"
)

const defaultAPIURL = "https://sms.arkesel.com/sms/api"

// arkeselService talks to the Arkesel SMS gateway. The gateway takes the
// message as URL parameters and answers a JSON envelope; code "ok" (v1 uses
// "0000") marks an accepted message.
type arkeselService struct {
	apiKey   string
	senderID string
	apiURL   string
	client   *http.Client
	logger   core.Logger
}

var _ core.SMSService = (*arkeselService)(nil)

func NewArkeselService(conf *core.Config, logger core.Logger) *arkeselService {
	apiURL := conf.SMS.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &arkeselService{
		apiKey:   conf.SMS.APIKey,
		senderID: conf.SMS.SenderID,
		apiURL:   apiURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type arkeselResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (svc arkeselService) Send(recipient, message string) core.SMSResult {
	q := make(url.Values)
	q.Set("action", "send-sms")
	q.Set("api_key", svc.apiKey)
	q.Set("to", NormalizePhone(recipient))
	q.Set("from", svc.senderID)
	q.Set("sms", message)

	res, err := svc.client.Get(svc.apiURL + "?" + q.Encode())
	if err != nil {
		svc.logger.Error("sending sms: "+err.Error(), err)
		return core.SMSResult{Err: err.Error()}
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		svc.logger.Error("reading sms gateway response: "+err.Error(), err)
		return core.SMSResult{Err: err.Error()}
	}

	var parsed arkeselResponse
	if err = json.Unmarshal(raw, &parsed); err != nil {
		return core.SMSResult{Raw: string(raw), Err: "unexpected gateway response"}
	}
	if parsed.Code != "ok" && parsed.Code != "0000" {
		return core.SMSResult{Raw: string(raw), Err: parsed.Message}
	}
	return core.SMSResult{Sent: true, Raw: string(raw)}
}

// NormalizePhone converts local Ghanaian numbers (0XX XXX XXXX) to the
// international format the gateway expects.
func NormalizePhone(phone string) string {
	phone = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	switch {
	case strings.HasPrefix(phone, "+"):
		return phone[1:]
	case strings.HasPrefix(phone, "0") && len(phone) == 10:
		return "233" + phone[1:]
	default:
		return phone
	}
}
