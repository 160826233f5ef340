package meta

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMetaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write meta file: %v", err)
	}
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeMetaFile(t, `
[adjustments]
"10001" = 5.0
"Spellboost" = 3.0
"Runecraft" = -2.0
`)

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Len = %d, want 3", table.Len())
	}

	if got := table.Adjustment("10001"); got != 5.0 {
		t.Errorf("Adjustment(card) = %v, want 5.0", got)
	}
	// Keys are case-insensitive and sum across kinds.
	if got := table.Adjustment("10001", "spellboost", "RUNECRAFT"); got != 6.0 {
		t.Errorf("Adjustment(sum) = %v, want 6.0", got)
	}
	if got := table.Adjustment("unknown", ""); got != 0 {
		t.Errorf("Adjustment(unknown) = %v, want 0", got)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	table, err := LoadTable(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadTable failed on missing file: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len = %d, want 0 for missing file", table.Len())
	}
}

func TestLoadTableMalformed(t *testing.T) {
	path := writeMetaFile(t, "not [valid toml")
	if _, err := LoadTable(path); err == nil {
		t.Error("LoadTable succeeded on malformed TOML")
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	path := writeMetaFile(t, "[adjustments]\n\"10001\" = 5.0\n")
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("[adjustments]\n\"10001\" = 9.0\n"), 0o644); err != nil {
		t.Fatalf("rewrite meta file: %v", err)
	}
	if err := table.reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := table.Adjustment("10001"); got != 9.0 {
		t.Errorf("Adjustment after reload = %v, want 9.0", got)
	}
}
