package handshake

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"testing"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/pkg/models"
)

func mustGenerateServerKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}

func mustGenerateStudentKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(data, padding...)
}

// sealEnvelope builds a valid {c, iv, key} envelope the way a student
// client would, so Decode can be exercised end to end without a real
// client implementation.
func sealEnvelope(t *testing.T, serverPub *rsa.PublicKey, payload models.RegistrationPayload) models.HandshakeEnvelope {
	t.Helper()

	plaintext, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal payload: %v", err)
	}

	tempKey := make([]byte, 16)
	if _, err := rand.Read(tempKey); err != nil {
		t.Fatalf("rand.Read key: %v", err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		t.Fatalf("rand.Read iv: %v", err)
	}

	block, err := aes.NewCipher(tempKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, serverPub, tempKey, nil)
	if err != nil {
		t.Fatalf("EncryptOAEP: %v", err)
	}

	return models.HandshakeEnvelope{
		C:   base64.StdEncoding.EncodeToString(ciphertext),
		IV:  base64.StdEncoding.EncodeToString(iv),
		Key: base64.StdEncoding.EncodeToString(wrappedKey),
	}
}

func TestDecodeHappyPath(t *testing.T) {
	serverKey := mustGenerateServerKey(t)
	studentKeyPEM := mustGenerateStudentKeyPEM(t)

	envelope := sealEnvelope(t, &serverKey.PublicKey, models.RegistrationPayload{
		StudentId: "e254275",
		Passwd:    "DtNX1qk4YF4saRH",
		PublicKey: studentKeyPEM,
	})

	decoded, aerr := Decode(envelope, serverKey)
	if aerr != nil {
		t.Fatalf("Decode: %v", aerr)
	}
	if decoded.StudentId.Id != "e254275" || decoded.StudentId.Passwd != "DtNX1qk4YF4saRH" {
		t.Fatalf("unexpected student id: %+v", decoded.StudentId)
	}
	if decoded.Fingerprint != Fingerprint(studentKeyPEM) {
		t.Fatal("fingerprint does not match hex(SHA-256(public key PEM))")
	}
}

func TestDecodeRejectsBadBase64(t *testing.T) {
	_, aerr := Decode(models.HandshakeEnvelope{C: "!!!", IV: "!!!", Key: "!!!"}, mustGenerateServerKey(t))
	if aerr == nil || aerr.Code != apierr.MalformedEnvelope {
		t.Fatalf("got %v, want MalformedEnvelope", aerr)
	}
}

func TestDecodeRejectsWrongServerKey(t *testing.T) {
	serverKey := mustGenerateServerKey(t)
	otherKey := mustGenerateServerKey(t)

	envelope := sealEnvelope(t, &serverKey.PublicKey, models.RegistrationPayload{
		StudentId: "e254275",
		Passwd:    "DtNX1qk4YF4saRH",
		PublicKey: mustGenerateStudentKeyPEM(t),
	})

	_, aerr := Decode(envelope, otherKey)
	if aerr == nil || aerr.Code != apierr.KeyDecryptFailed {
		t.Fatalf("got %v, want KeyDecryptFailed", aerr)
	}
}

// Decode itself never rejects a malformed public key: the registration
// algorithm runs that check (step 7) only after preapproval and
// duplicate-StudentId (steps 5, 6), which depend on registry state Decode
// doesn't have. Decode must hand the payload through unexamined.
func TestDecodeDoesNotValidatePublicKeyShape(t *testing.T) {
	serverKey := mustGenerateServerKey(t)

	envelope := sealEnvelope(t, &serverKey.PublicKey, models.RegistrationPayload{
		StudentId: "e254275",
		Passwd:    "DtNX1qk4YF4saRH",
		PublicKey: "not a pem block",
	})

	decoded, aerr := Decode(envelope, serverKey)
	if aerr != nil {
		t.Fatalf("Decode: %v", aerr)
	}
	if decoded.PublicKey != "not a pem block" {
		t.Fatalf("PublicKey = %q, want the payload passed through verbatim", decoded.PublicKey)
	}
}

func TestParseRSAPublicKeyRejectsNonRSAInput(t *testing.T) {
	if _, err := ParseRSAPublicKey("not a pem block"); err == nil {
		t.Fatal("want an error for input that isn't a PEM block at all")
	}
}
