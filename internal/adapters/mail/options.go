package mail

import (
	"io"
	"net/http"

	"github.com/okian/santa/pkg/logger"
)

// GmailOption configures a GmailSender.
type GmailOption func(*GmailSender)

// WithCredentialsFile sets the OAuth client secrets file.
func WithCredentialsFile(path string) GmailOption {
	return func(g *GmailSender) {
		if path != "" {
			g.credentialsFile = path
		}
	}
}

// WithTokenFile sets where the authorized token is cached.
func WithTokenFile(path string) GmailOption {
	return func(g *GmailSender) {
		if path != "" {
			g.tokenFile = path
		}
	}
}

// WithScopes overrides the requested OAuth scopes.
func WithScopes(scopes ...string) GmailOption {
	return func(g *GmailSender) {
		if len(scopes) > 0 {
			g.scopes = scopes
		}
	}
}

// WithPromptWriter sets where the consent URL is printed.
func WithPromptWriter(w io.Writer) GmailOption {
	return func(g *GmailSender) {
		if w != nil {
			g.prompt = w
		}
	}
}

// WithHTTPClient uses an already authorized client and skips the token flow.
func WithHTTPClient(c *http.Client) GmailOption {
	return func(g *GmailSender) {
		g.httpClient = c
	}
}

// WithEndpoint points the Gmail client at a different base URL.
func WithEndpoint(endpoint string) GmailOption {
	return func(g *GmailSender) {
		g.endpoint = endpoint
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) GmailOption {
	return func(g *GmailSender) {
		g.logger = l
	}
}
