package memory

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

func (s *Store) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

// NewToken returns a 256-bit URL-safe voter token.
func (s *Store) NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
