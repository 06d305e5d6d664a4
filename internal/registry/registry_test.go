package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gradecoin/network/internal/config"
	"github.com/gradecoin/network/pkg/models"
)

func mustRoster(t *testing.T, rows ...string) *config.Roster {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	content := "id,passwd\n"
	for _, row := range rows {
		content += row + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	roster, err := config.LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	return roster
}

func TestHasStudentIdUniqueness(t *testing.T) {
	r := New(mustRoster(t, "e254275,DtNX1qk4YF4saRH"))

	id := models.StudentId{Id: "e254275", Passwd: "DtNX1qk4YF4saRH"}
	if r.HasStudentId(id) {
		t.Fatal("empty registry must not already contain the student")
	}

	r.Insert("fp1", models.Account{UserId: id, Balance: 10})
	if !r.HasStudentId(id) {
		t.Fatal("registry must report the student id as taken after Insert")
	}
}

func TestIsPreapproved(t *testing.T) {
	r := New(mustRoster(t, "e254275,DtNX1qk4YF4saRH"))

	if !r.IsPreapproved(models.StudentId{Id: "e254275", Passwd: "DtNX1qk4YF4saRH"}) {
		t.Fatal("roster entry must be preapproved")
	}
	if r.IsPreapproved(models.StudentId{Id: "e254275", Passwd: "wrong"}) {
		t.Fatal("wrong passwd must not be preapproved")
	}
}

func TestMutateAppliesUnderLock(t *testing.T) {
	r := New(mustRoster(t))
	r.Insert("fp1", models.Account{Balance: 5})

	ok := r.Mutate("fp1", func(a models.Account) models.Account {
		a.Balance += 3
		return a
	})
	if !ok {
		t.Fatal("Mutate on existing account must succeed")
	}

	acc, _ := r.Lookup("fp1")
	if acc.Balance != 8 {
		t.Fatalf("balance = %d, want 8", acc.Balance)
	}

	if r.Mutate("missing", func(a models.Account) models.Account { return a }) {
		t.Fatal("Mutate on unknown fingerprint must report false")
	}
}
