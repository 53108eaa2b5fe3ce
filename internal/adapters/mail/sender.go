// Package mail delivers invitation emails.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
)

// Sender delivers a single plain-text message and returns the message id
// assigned by the mail service.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) (string, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, from, to, subject, body string) (string, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	return f(ctx, from, to, subject, body)
}

// BuildMessage renders an RFC 5322 text/plain UTF-8 message.
func BuildMessage(from, to, subject, body string) ([]byte, error) {
	headers := [][2]string{{"From", from}, {"To", to}, {"Subject", subject}}
	for _, h := range headers {
		if strings.ContainsAny(h[1], "\r\n") {
			return nil, fmt.Errorf("%w: %s header contains a line break", ErrInvalidMessage, h[0])
		}
	}
	if strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("%w: empty recipient", ErrInvalidMessage)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("%w: encode body: %w", ErrInvalidMessage, err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("%w: encode body: %w", ErrInvalidMessage, err)
	}
	return buf.Bytes(), nil
}
