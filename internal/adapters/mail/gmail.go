package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/okian/santa/pkg/logger"
)

// Gmail sender configuration constants.
const (
	DefaultTokenFile       = "token.json"
	DefaultCredentialsFile = "credentials.json"
	gmailUserID            = "me"
	consentHeaderTimeout   = 5 * time.Second
)

// DefaultScopes are the Gmail scopes requested during consent.
var DefaultScopes = []string{gmail.GmailModifyScope, gmail.GmailSendScope}

// GmailSender sends messages through the Gmail API on behalf of the
// authorized account. Credentials are acquired lazily on first Send: a cached
// token is reused and refreshed when possible; otherwise an installed-app
// consent flow runs against a loopback redirect.
type GmailSender struct {
	credentialsFile string
	tokenFile       string
	scopes          []string
	prompt          io.Writer
	httpClient      *http.Client
	endpoint        string
	logger          logger.Logger

	mu  sync.Mutex
	svc *gmail.Service
}

// NewGmailSender creates a GmailSender. No files are touched until Send.
func NewGmailSender(opts ...GmailOption) *GmailSender {
	g := &GmailSender{
		credentialsFile: DefaultCredentialsFile,
		tokenFile:       DefaultTokenFile,
		scopes:          DefaultScopes,
		prompt:          os.Stdout,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logger.Get().Named("gmail")
	}

	return g
}

// Send delivers one message and returns the Gmail message id.
func (g *GmailSender) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	raw, err := BuildMessage(from, to, subject, body)
	if err != nil {
		return "", err
	}

	svc, err := g.service(ctx)
	if err != nil {
		return "", err
	}

	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := svc.Users.Messages.Send(gmailUserID, msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: to %s: %w", ErrSend, to, err)
	}

	g.logger.Debug(ctx, "message sent", logger.String("to", to), logger.String("message_id", sent.Id))
	return sent.Id, nil
}

// Authorize acquires credentials and builds the client ahead of the first
// Send. Consent waits on ctx only, so callers pass the run context rather
// than a per-message deadline.
func (g *GmailSender) Authorize(ctx context.Context) error {
	_, err := g.service(ctx)
	return err
}

// service returns the Gmail client, creating it on first use.
func (g *GmailSender) service(ctx context.Context) (*gmail.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.svc != nil {
		return g.svc, nil
	}

	// the client outlives the first call's deadline
	base := context.WithoutCancel(ctx)

	var opts []option.ClientOption
	if g.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(g.httpClient))
	} else {
		ts, err := g.tokenSource(ctx, base)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}

	svc, err := gmail.NewService(base, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create gmail client: %w", ErrCredentials, err)
	}
	g.svc = svc
	return svc, nil
}

// tokenSource loads the cached token, refreshing or re-consenting as needed,
// and returns a source that keeps the cache current.
func (g *GmailSender) tokenSource(ctx, base context.Context) (oauth2.TokenSource, error) {
	secrets, err := os.ReadFile(g.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read client secrets: %w", ErrCredentials, err)
	}
	cfg, err := google.ConfigFromJSON(secrets, g.scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secrets: %w", ErrCredentials, err)
	}

	tok, err := loadToken(g.tokenFile)
	if err != nil {
		g.logger.Warn(ctx, "ignoring unreadable token cache", logger.String("token_file", g.tokenFile), logger.Error(err))
		tok = nil
	}

	switch {
	case tok != nil && tok.Valid():
		g.logger.Debug(ctx, "using cached token")
	case tok != nil && tok.RefreshToken != "":
		fresh, err := cfg.TokenSource(base, tok).Token()
		if err != nil {
			g.logger.Warn(ctx, "token refresh failed, requesting consent", logger.Error(err))
			tok = nil
			break
		}
		g.logger.Debug(ctx, "refreshed token")
		tok = fresh
	default:
		tok = nil
	}

	if tok == nil {
		tok, err = g.consent(ctx, cfg)
		if err != nil {
			return nil, err
		}
		g.logger.Info(ctx, "obtained new token")
	}

	if err := saveToken(g.tokenFile, tok); err != nil {
		g.logger.Warn(ctx, "failed to cache token", logger.String("token_file", g.tokenFile), logger.Error(err))
	}

	return oauth2.ReuseTokenSource(tok, newPersistingTokenSource(cfg.TokenSource(base, tok), g.tokenFile, tok, g.logger)), nil
}

// consent runs the installed-app flow: print the auth URL and wait for the
// browser to hit the loopback redirect with the authorization code.
func (g *GmailSender) consent(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: open consent listener: %w", ErrCredentials, err)
	}

	flow := *cfg
	flow.RedirectURL = "http://" + ln.Addr().String()
	state := uuid.NewString()

	codeCh := make(chan string, 1)
	srv := &http.Server{
		ReadHeaderTimeout: consentHeaderTimeout,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			}
			code := q.Get("code")
			if code == "" {
				http.Error(w, "missing authorization code: "+q.Get("error"), http.StatusBadRequest)
				return
			}
			_, _ = io.WriteString(w, "Authorization received. You can close this window.\n")
			select {
			case codeCh <- code:
			default:
			}
		}),
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Warn(ctx, "consent listener stopped", logger.Error(err))
		}
	}()
	defer func() { _ = srv.Close() }()

	fmt.Fprintf(g.prompt, "Authorize sending mail by opening this URL in a browser:\n%s\n",
		flow.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: consent: %w", ErrCredentials, ctx.Err())
	case code := <-codeCh:
		tok, err := flow.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: exchange authorization code: %w", ErrCredentials, err)
		}
		return tok, nil
	}
}
