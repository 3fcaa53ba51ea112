package journal

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	j1.Close()

	j2, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer j2.Close()

	var count int
	if err := j2.db.QueryRow("SELECT COUNT(*) FROM judgments").Scan(&count); err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path, Config{})
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	j := createTestJournal(t)
	if err := j.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	j := createTestJournal(t)
	// NORMAL = 1
	if err := j.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	j := createTestJournal(t)
	if err := j.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	j := createTestJournal(t)
	// ON = 1
	if err := j.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Schema tests

func TestSchema_Tables(t *testing.T) {
	j := createTestJournal(t)

	cases := []struct {
		table   string
		columns []string
	}{
		{"judgments", []string{"judgment_id", "t", "i", "f", "document", "token", "recorded_at"}},
		{"outcomes", []string{"judgment_id", "links_to_judgment_id", "outcome_type", "oracle_source", "t", "i", "f", "document", "token", "recorded_at"}},
		{"mappers", []string{"id", "type", "definition", "token", "recorded_at"}},
	}
	for _, tc := range cases {
		columns := getTableColumns(t, j.db, tc.table)
		got := make(map[string]bool, len(columns))
		for _, c := range columns {
			got[c] = true
		}
		for _, want := range tc.columns {
			if !got[want] {
				t.Errorf("table %s missing column %s (have %v)", tc.table, want, columns)
			}
		}
	}
}

func TestSchema_UserVersion(t *testing.T) {
	j := createTestJournal(t)

	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}
}

func TestTokens_UUIDv7Unique(t *testing.T) {
	src := UUIDv7Tokens{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := src.Next()
		if seen[token] {
			t.Fatalf("duplicate token: %s", token)
		}
		seen[token] = true
	}
}

func TestTokens_FixedSequenceAndExhaustion(t *testing.T) {
	src := NewFixedTokens("rec-1", "rec-2")
	if got := src.Next(); got != "rec-1" {
		t.Errorf("first token = %q, expected rec-1", got)
	}
	if got := src.Next(); got != "rec-2" {
		t.Errorf("second token = %q, expected rec-2", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on exhausted tokens")
		}
	}()
	src.Next()
}
