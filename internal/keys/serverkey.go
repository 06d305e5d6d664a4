// Package keys loads the process-global RSA private key used to decrypt
// the temporary key inside every registration handshake. One key serves
// every network in the process — it is process configuration, not
// per-network state, following the same load-once-at-startup,
// thread-down-through-constructors shape the teacher's bitcoin.Client
// used for its RPC credentials.
package keys

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// ServerKey is the long-lived RSA keypair gradecoin's registration
// handshake decrypts against.
type ServerKey struct {
	Private *rsa.PrivateKey
}

// Load reads a PKCS#1 or PKCS#8 PEM-encoded RSA private key from path.
func Load(path string) (*ServerKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read server key %s: %w", path, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("server key %s is not valid PEM", path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &ServerKey{Private: key}, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cannot parse server key %s: %w", path, err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("server key %s is not an RSA key", path)
	}
	return &ServerKey{Private: rsaKey}, nil
}
