package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunelords/dune-server-go/internal/game"
)

func TestVerifier(t *testing.T) {
	hash, err := HashToken("sietch-tabr")
	require.NoError(t, err)

	v := NewVerifier(map[string]string{
		"ATREIDES":      hash,
		"NOT_A_FACTION": hash,
	})

	assert.NoError(t, v.Verify(game.Atreides, "sietch-tabr"))
	assert.Error(t, v.Verify(game.Atreides, "wrong-token"))

	// No token configured for this faction.
	assert.Error(t, v.Verify(game.Harkonnen, "sietch-tabr"))
}

func TestHashToken_ProducesDistinctHashes(t *testing.T) {
	a, err := HashToken("token")
	require.NoError(t, err)
	b, err := HashToken("token")
	require.NoError(t, err)

	// bcrypt salts every hash.
	assert.NotEqual(t, a, b)
}
