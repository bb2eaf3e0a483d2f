package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConnected(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cred := NewCredential(key)

	assert.False(t, Session{}.Connected())
	assert.False(t, Session{Status: Connecting}.Connected())
	// Status alone is not enough; a credential must be held.
	assert.False(t, Session{Status: Connected}.Connected())
	assert.True(t, Session{Status: Connected, Credential: cred}.Connected())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
}

func TestCredentialTransactOpts(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cred := NewCredential(key)

	opts, err := cred.TransactOpts(big.NewInt(11155111))
	require.NoError(t, err)
	assert.Equal(t, cred.Address(), opts.From)
	require.NotNil(t, opts.Signer)

	_, err = cred.TransactOpts(nil)
	require.Error(t, err)
}
