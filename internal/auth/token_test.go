package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewTokenSource_ExplicitToken(t *testing.T) {
	ts, err := NewTokenSource(Options{Host: "github.com", Token: "s3cret"})
	require.NoError(t, err)

	token, err := Token(ts)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", token)
}

func TestNewTokenSource_AppKeyMissing(t *testing.T) {
	_, err := NewTokenSource(Options{Host: "github.com", AppID: 1, InstallationID: 2, PrivateKeyPath: "/nonexistent/key.pem"})
	assert.ErrorContains(t, err, "failed to load GitHub App key")
}

func TestToken_Empty(t *testing.T) {
	_, err := Token(oauth2.StaticTokenSource(&oauth2.Token{}))
	assert.True(t, errors.Is(err, ErrNoToken))
}
