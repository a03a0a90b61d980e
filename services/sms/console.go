package smssvc

import (
	"log"
	"sync"

	"github.com/osei222/schoolfees/core"
)

type sentSMS struct {
	Recipient string
	Message   string
}

type consoleService struct {
	disableOutput bool

	mu   sync.Mutex
	sent []sentSMS
}

var _ core.SMSService = (*consoleService)(nil)

// NewConsoleService logs messages instead of delivering them. Every send
// succeeds.
func NewConsoleService() *consoleService {
	return &consoleService{}
}

// NewConsoleServiceMock is NewConsoleService without the output, for tests.
func NewConsoleServiceMock() *consoleService {
	return &consoleService{disableOutput: true}
}

func (svc *consoleService) Send(recipient, message string) core.SMSResult {
	svc.mu.Lock()
	svc.sent = append(svc.sent, sentSMS{Recipient: recipient, Message: message})
	svc.mu.Unlock()

	if !svc.disableOutput {
		log.Printf("SMS to %s:\n%s\n", recipient, message)
	}
	return core.SMSResult{Sent: true, Raw: `{"code":"ok"}`}
}

// Sent returns a copy of everything sent so far.
func (svc *consoleService) Sent() []sentSMS {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]sentSMS, len(svc.sent))
	copy(out, svc.sent)
	return out
}
