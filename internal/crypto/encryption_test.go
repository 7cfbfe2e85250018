package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("session-secret")

	ciphertext, err := Encrypt("hunter2", key)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", ciphertext)

	plaintext, err := Decrypt(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plaintext)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	ciphertext, err := Encrypt("hunter2", DeriveKey("secret-one"))
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, DeriveKey("secret-two"))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDeriveKey(t *testing.T) {
	key := DeriveKey("anything")
	assert.Len(t, key, 32)
	assert.Equal(t, key, DeriveKey("anything"), "derivation is deterministic")
	assert.NotEqual(t, key, DeriveKey("something else"))
}

func TestInvalidKeySize(t *testing.T) {
	_, err := Encrypt("x", []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = Decrypt("x", []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	_, err := Decrypt("AAAA", DeriveKey("secret"))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
