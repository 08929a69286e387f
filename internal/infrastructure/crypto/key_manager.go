// Package crypto owns the process signing key and the JWT codec built on it.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
)

// SigningKey is the symmetric HMAC key shared by every token the process
// issues or verifies. It is built once at startup and never changes.
type SigningKey struct {
	material []byte
}

// LoadSigningKey decodes a base64 secret into a signing key. Both padded and
// unpadded standard encodings are accepted. The decoded key must be at least
// constants.MinSigningKeyBytes long.
func LoadSigningKey(secretBase64 string) (*SigningKey, error) {
	secret := strings.TrimSpace(secretBase64)
	if secret == "" {
		return nil, errors.ErrInvalidConfig.WithMessage("jwt secret is empty")
	}

	material, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		material, err = base64.RawStdEncoding.DecodeString(secret)
	}
	if err != nil {
		return nil, errors.ErrInvalidConfig.WithMessage("jwt secret is not valid base64").WithError(err)
	}

	if len(material) < constants.MinSigningKeyBytes {
		return nil, errors.ErrInvalidConfig.WithMessage(
			"jwt secret decodes to %d bytes, need at least %d", len(material), constants.MinSigningKeyBytes)
	}
	return &SigningKey{material: material}, nil
}

// GenerateSecret returns a random base64 secret of n bytes, suitable for jwt.secret.
func GenerateSecret(n int) (string, error) {
	if n < constants.MinSigningKeyBytes {
		n = constants.MinSigningKeyBytes
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.ErrInternal.WithError(err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Bytes returns the key material for the signer. Callers must not modify it.
func (k *SigningKey) Bytes() []byte {
	return k.material
}

// Len returns the key length in bytes.
func (k *SigningKey) Len() int {
	return len(k.material)
}
