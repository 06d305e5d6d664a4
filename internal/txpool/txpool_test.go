package txpool

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v4"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/internal/config"
	"github.com/gradecoin/network/internal/registry"
	"github.com/gradecoin/network/pkg/models"
)

func mustKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signedTokenFor(t *testing.T, key *rsa.PrivateKey, tx models.Transaction) string {
	t.Helper()
	canonical, err := tx.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	sum := md5.Sum(canonical)
	claims := models.Claims{Tha: hex.EncodeToString(sum[:])}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return "Bearer " + token
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	roster, err := config.LoadRoster(writeEmptyRoster(t))
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	return registry.New(roster)
}

func writeEmptyRoster(t *testing.T) string {
	t.Helper()
	path := t.TempDir() + "/students.csv"
	if err := os.WriteFile(path, []byte("id,passwd\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestSubmitAdmitsValidTransaction(t *testing.T) {
	reg := newTestRegistry(t)
	key, pubPEM := mustKeyPEM(t)

	reg.Insert("fa", models.Account{PublicKey: pubPEM, Balance: 40})
	reg.Insert("fb", models.Account{Balance: 0})

	tx := models.Transaction{Source: "fa", Target: "fb", Amount: 5, Timestamp: models.Now()}
	pool := New()

	if aerr := Submit(pool, reg, Bounds{Lower: 1, Upper: 10}, nil, tx, signedTokenFor(t, key, tx)); aerr != nil {
		t.Fatalf("Submit: %v", aerr)
	}

	id := models.TransactionId("fa", "fb")
	got, ok := pool.UnsafeGet(id)
	if !ok {
		t.Fatal("transaction was not admitted to the pool")
	}
	if got != tx {
		t.Fatalf("pooled transaction = %+v, want %+v", got, tx)
	}

	fa, _ := reg.Lookup("fa")
	if fa.Balance != 40 {
		t.Fatalf("balance must not change at admission time, got %d", fa.Balance)
	}
}

func TestSubmitRejectsDuplicatePending(t *testing.T) {
	reg := newTestRegistry(t)
	key, pubPEM := mustKeyPEM(t)
	reg.Insert("fa", models.Account{PublicKey: pubPEM, Balance: 40})
	reg.Insert("fb", models.Account{Balance: 0})

	pool := New()
	bounds := Bounds{Lower: 1, Upper: 10}

	tx1 := models.Transaction{Source: "fa", Target: "fb", Amount: 5, Timestamp: models.Now()}
	if aerr := Submit(pool, reg, bounds, nil, tx1, signedTokenFor(t, key, tx1)); aerr != nil {
		t.Fatalf("first Submit: %v", aerr)
	}

	tx2 := models.Transaction{Source: "fa", Target: "fb", Amount: 5, Timestamp: models.Timestamp{Time: tx1.Timestamp.Time.Add(1)}}
	aerr := Submit(pool, reg, bounds, nil, tx2, signedTokenFor(t, key, tx2))
	if aerr == nil || aerr.Code != apierr.DuplicatePending {
		t.Fatalf("got %v, want DuplicatePending", aerr)
	}
}

func TestSubmitRejectsBotSender(t *testing.T) {
	reg := newTestRegistry(t)
	key, pubPEM := mustKeyPEM(t)
	reg.Insert("fa", models.Account{PublicKey: pubPEM, Balance: 40, IsBot: true})
	reg.Insert("fb", models.Account{Balance: 0})

	tx := models.Transaction{Source: "fa", Target: "fb", Amount: 5, Timestamp: models.Now()}
	aerr := Submit(New(), reg, Bounds{Lower: 1, Upper: 10}, nil, tx, signedTokenFor(t, key, tx))
	if aerr == nil || aerr.Code != apierr.BotSenderForbidden {
		t.Fatalf("got %v, want BotSenderForbidden", aerr)
	}
}

func TestSubmitRejectsInsufficientBalance(t *testing.T) {
	reg := newTestRegistry(t)
	key, pubPEM := mustKeyPEM(t)
	reg.Insert("fa", models.Account{PublicKey: pubPEM, Balance: 2})
	reg.Insert("fb", models.Account{Balance: 0})

	tx := models.Transaction{Source: "fa", Target: "fb", Amount: 5, Timestamp: models.Now()}
	aerr := Submit(New(), reg, Bounds{Lower: 1, Upper: 10}, nil, tx, signedTokenFor(t, key, tx))
	if aerr == nil || aerr.Code != apierr.InsufficientBalance {
		t.Fatalf("got %v, want InsufficientBalance", aerr)
	}
}
