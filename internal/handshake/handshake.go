// Package handshake turns a registration envelope into an authenticated
// (StudentId, public key) tuple: the layered hybrid-encryption handshake
// described as Component B of the engine's request-validation core.
package handshake

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"unicode/utf8"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/pkg/models"
)

// Decoded is an authenticated registration, ready to become an Account.
type Decoded struct {
	StudentId   models.StudentId
	PublicKey   string
	Fingerprint string
}

// Decode runs the envelope-unwrapping steps of the handshake: RSA-OAEP
// unwrap the temporary key, AES-128-CBC/PKCS#7 decrypt the payload, parse
// it as JSON, and compute the resulting account's fingerprint. It does not
// check preapproval, uniqueness, or that the public key is a valid RSA
// key — those later steps of the registration algorithm depend on registry
// state and must run in the order the caller, not this package, owns.
func Decode(envelope models.HandshakeEnvelope, serverKey *rsa.PrivateKey) (*Decoded, *apierr.Error) {
	keyCiphertext, err := base64.StdEncoding.DecodeString(envelope.Key)
	if err != nil {
		return nil, apierr.New(apierr.MalformedEnvelope)
	}
	ivBytes, err := base64.StdEncoding.DecodeString(envelope.IV)
	if err != nil {
		return nil, apierr.New(apierr.MalformedEnvelope)
	}
	cipherBytes, err := base64.StdEncoding.DecodeString(envelope.C)
	if err != nil {
		return nil, apierr.New(apierr.MalformedEnvelope)
	}

	tempKey, err := rsa.DecryptOAEP(sha256.New(), nil, serverKey, keyCiphertext, nil)
	if err != nil {
		return nil, apierr.New(apierr.KeyDecryptFailed)
	}

	plaintext, aerr := aesCBCDecrypt(tempKey, ivBytes, cipherBytes)
	if aerr != nil {
		return nil, aerr
	}

	if !utf8.Valid(plaintext) {
		return nil, apierr.New(apierr.PayloadUTF8Failed)
	}

	var payload models.RegistrationPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, apierr.New(apierr.PayloadJSONFailed)
	}

	fingerprint := Fingerprint(payload.PublicKey)

	return &Decoded{
		StudentId:   models.StudentId{Id: payload.StudentId, Passwd: payload.Passwd},
		PublicKey:   payload.PublicKey,
		Fingerprint: fingerprint,
	}, nil
}

// Fingerprint computes the stable account identifier: hex(SHA-256(pem bytes)).
func Fingerprint(publicKeyPEM string) string {
	sum := sha256.Sum256([]byte(publicKeyPEM))
	return hex.EncodeToString(sum[:])
}

func aesCBCDecrypt(key, iv, ciphertext []byte) ([]byte, *apierr.Error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apierr.New(apierr.CipherSetupFailed)
	}
	if len(iv) != aes.BlockSize {
		return nil, apierr.New(apierr.CipherSetupFailed)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, apierr.New(apierr.PayloadDecryptFailed)
	}

	plaintext := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, apierr.New(apierr.PayloadDecryptFailed)
	}
	return unpadded, nil
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length")
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > blockSize || padLen > n {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("invalid padding bytes")
		}
	}
	return data[:n-padLen], nil
}

// ParseRSAPublicKey parses pemStr as an RSA public key, accepting either a
// PKCS#1 or a PKIX-wrapped encoding. This is step 7 of the registration
// algorithm; callers run it after preapproval and duplicate-StudentId
// checks so that "first failure wins" holds across all of steps 5-7.
func ParseRSAPublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("not a PEM block")
	}
	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA key")
	}
	return rsaPub, nil
}
