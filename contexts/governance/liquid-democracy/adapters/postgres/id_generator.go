package postgresadapter

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// UUIDGenerator implements ports.IDGenerator using RFC 4122 UUID v4 values.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// RandomTokenGenerator implements ports.TokenGenerator with 256 random bits.
type RandomTokenGenerator struct{}

func (RandomTokenGenerator) NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
