package models

import "testing"

func TestGenesisBlockCanonicalOmitsNothingButIsStable(t *testing.T) {
	g := Genesis()
	raw, err := g.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	want := `{"transaction_list":["gradecoin_bank"],"nonce":0,"timestamp":"2022-04-11T20:45:00"}`
	if string(raw) != want {
		t.Fatalf("genesis canonical mismatch:\n got: %s\nwant: %s", raw, want)
	}
}

func TestBlockCanonicalOmitsEmptyTransactionList(t *testing.T) {
	b := Block{Nonce: 7, Timestamp: Timestamp{genesisTime}}
	raw, err := b.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	want := `{"nonce":7,"timestamp":"2022-04-11T20:45:00"}`
	if string(raw) != want {
		t.Fatalf("empty-list canonical mismatch:\n got: %s\nwant: %s", raw, want)
	}
}
