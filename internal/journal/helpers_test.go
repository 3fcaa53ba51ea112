package journal

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"testing"
)

// createTestJournal opens a journal in a temp dir with default config.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	return createTestJournalWith(t, Config{})
}

// createTestJournalWith opens a journal in a temp dir with the given
// config.
func createTestJournalWith(t *testing.T, cfg Config) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// getTableColumns returns the column names of a table.
func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		t.Fatalf("table_info(%s) failed: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			typ       string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("scan table_info row: %v", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate table_info rows: %v", err)
	}
	return columns
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}
