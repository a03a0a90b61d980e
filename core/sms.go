package core

// SMSResult is the provider's verdict on one message. Raw holds the provider
// response body for the audit log.
type SMSResult struct {
	Sent bool
	Raw  string
	Err  string
}

// SMSService is any gateway that can deliver a text message to a phone number.
// Delivery is synchronous; unit accounting is the caller's business.
type SMSService interface {
	Send(recipient, message string) SMSResult
}
