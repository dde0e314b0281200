package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dunelords/dune-server-go/internal/game"
)

// Verifier checks per-faction agent tokens against configured bcrypt hashes.
type Verifier struct {
	hashes map[game.Faction]string
}

// NewVerifier builds a verifier from faction → bcrypt-hash pairs; unknown
// faction keys are ignored.
func NewVerifier(tokenHashes map[string]string) *Verifier {
	hashes := make(map[game.Faction]string, len(tokenHashes))
	for key, hash := range tokenHashes {
		if f, err := game.ParseFaction(key); err == nil {
			hashes[f] = hash
		}
	}
	return &Verifier{hashes: hashes}
}

// Verify checks that token is the configured secret for faction f.
func (v *Verifier) Verify(f game.Faction, token string) error {
	hash, ok := v.hashes[f]
	if !ok {
		return fmt.Errorf("no agent token configured for %s", f)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return fmt.Errorf("invalid token for %s", f)
	}
	return nil
}

// HashToken produces a bcrypt hash suitable for the token_hashes config map.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}
