package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cryptoTestKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encrypted, err := Encrypt([]byte("access-token"), []byte(cryptoTestKey))
	require.NoError(t, err)
	assert.NotEqual(t, "access-token", encrypted)

	plaintext, err := Decrypt(encrypted, []byte(cryptoTestKey))
	require.NoError(t, err)
	assert.Equal(t, "access-token", plaintext)
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("access-token"), []byte(cryptoTestKey))
	require.NoError(t, err)

	_, err = Decrypt(encrypted, []byte("fedcba9876543210fedcba9876543210"))
	assert.Error(t, err)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	_, err := Decrypt("bm90IHZhbGlkIGNpcGhlcnRleHQ=", []byte(cryptoTestKey))
	assert.Error(t, err)
}

func TestEncryptBadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("access-token"), []byte("short"))
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt-1"}`)

	mac := hmac.New(sha256.New, []byte("webhook-key"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(body, signature, "webhook-key"))
	assert.False(t, VerifySignature(body, signature, "other-key"))
	assert.False(t, VerifySignature([]byte(`{"id":"evt-2"}`), signature, "webhook-key"))
	assert.False(t, VerifySignature(body, "", "webhook-key"))
}
