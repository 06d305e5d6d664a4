package models

import (
	"encoding/json"
	"testing"
)

func TestTransactionCanonicalFieldOrder(t *testing.T) {
	tx := Transaction{
		Source:    "fa",
		Target:    "fb",
		Amount:    5,
		Timestamp: Timestamp{genesisTime},
	}

	raw, err := tx.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}

	want := `{"source":"fa","target":"fb","amount":5,"timestamp":"2022-04-11T20:45:00"}`
	if string(raw) != want {
		t.Fatalf("canonical mismatch:\n got: %s\nwant: %s", raw, want)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := Transaction{Source: "fa", Target: "fb", Amount: 5, Timestamp: Now()}

	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Transaction
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != tx {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, tx)
	}
}

func TestTransactionIdIsDirectional(t *testing.T) {
	ab := TransactionId("fa", "fb")
	ba := TransactionId("fb", "fa")
	if ab == ba {
		t.Fatal("TransactionId must depend on argument order")
	}
	if TransactionId("fa", "fb") != ab {
		t.Fatal("TransactionId must be deterministic")
	}
}
