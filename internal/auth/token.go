// Package auth resolves the API token for a session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	ghauth "github.com/cli/go-gh/v2/pkg/auth"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no credential is configured for the host
var ErrNoToken = errors.New("no GitHub token found")

// Options selects a credential. An explicit token wins over a GitHub App, which
// wins over the token stored by the gh CLI for Host.
type Options struct {
	Host           string
	APIURL         string
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// NewTokenSource returns the token source for opts
func NewTokenSource(opts Options) (oauth2.TokenSource, error) {
	if opts.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}), nil
	}

	if opts.AppID != 0 {
		tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, opts.AppID, opts.InstallationID, opts.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load GitHub App key: %w", err)
		}
		if opts.APIURL != "" {
			tr.BaseURL = strings.TrimSuffix(opts.APIURL, "/")
		}
		return &appTokenSource{transport: tr}, nil
	}

	token, _ := ghauth.TokenForHost(opts.Host)
	if token == "" {
		return nil, fmt.Errorf("%w for %s (run `gh auth login` or set a token)", ErrNoToken, opts.Host)
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
}

// Token resolves the access token string from ts
func Token(ts oauth2.TokenSource) (string, error) {
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", ErrNoToken
	}
	return tok.AccessToken, nil
}

// appTokenSource exchanges the App's JWT for an installation token
type appTokenSource struct {
	transport *ghinstallation.Transport
}

func (s *appTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.transport.Token(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get installation token: %w", err)
	}
	return &oauth2.Token{AccessToken: token, TokenType: "token"}, nil
}
