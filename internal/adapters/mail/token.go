package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/okian/santa/pkg/logger"
)

const (
	tokenDirPermission  = 0o700
	tokenFilePermission = 0o600
)

// loadToken reads a cached token. A missing file is not an error.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &tok, nil
}

// saveToken writes the token cache readable only by the owner.
func saveToken(path string, tok *oauth2.Token) error {
	if tok == nil {
		return nil
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), tokenDirPermission); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	return os.WriteFile(path, data, tokenFilePermission)
}

// persistingTokenSource saves every newly minted token back to the cache.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	path   string
	logger logger.Logger

	mu   sync.Mutex
	last string
}

func newPersistingTokenSource(base oauth2.TokenSource, path string, seed *oauth2.Token, l logger.Logger) *persistingTokenSource {
	s := &persistingTokenSource{base: base, path: path, logger: l}
	if seed != nil {
		s.last = seed.AccessToken
	}
	return s
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			s.logger.Warn(context.Background(), "failed to cache refreshed token",
				logger.String("token_file", s.path), logger.Error(err))
		} else {
			s.logger.Debug(context.Background(), "refreshed token cached", logger.String("token_file", s.path))
		}
	}
	return tok, nil
}
