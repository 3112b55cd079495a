package auth_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masikip/notewallet/internal/platform/auth"
	"github.com/masikip/notewallet/pkg/logger"
)

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassphrase("correct horse battery staple")
	require.NoError(t, err)

	svc := auth.NewService(hash, logger.New("development", io.Discard))

	assert.NoError(t, svc.Login("correct horse battery staple"))
	assert.ErrorIs(t, svc.Login("wrong"), auth.ErrInvalidPassphrase)
	assert.ErrorIs(t, svc.Login(""), auth.ErrInvalidPassphrase)
}

func TestLogin_NoHashConfigured(t *testing.T) {
	svc := auth.NewService("", logger.New("development", io.Discard))
	assert.ErrorIs(t, svc.Login("anything"), auth.ErrInvalidPassphrase)
}
