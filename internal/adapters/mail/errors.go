package mail

import "errors"

// Sentinel kinds for mail errors.
var (
	// ErrCredentials means no usable OAuth token could be obtained.
	ErrCredentials = errors.New("mail credentials unavailable")
	// ErrSend means the mail API rejected or failed the delivery.
	ErrSend = errors.New("mail send failed")
	// ErrInvalidMessage means a header value would corrupt the message.
	ErrInvalidMessage = errors.New("invalid mail message")
)
