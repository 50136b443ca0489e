package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAliases(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aliases")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadPlayerAliases_FileNotFound(t *testing.T) {
	pa, err := LoadPlayerAliases(filepath.Join(t.TempDir(), "aliases"))
	if err != nil {
		t.Fatalf("LoadPlayerAliases() returned error for missing file: %v", err)
	}
	if pa == nil {
		t.Fatal("LoadPlayerAliases() returned nil")
	}
	if len(pa.Aliases) != 0 {
		t.Errorf("expected empty Aliases map, got %v", pa.Aliases)
	}
}

func TestLoadPlayerAliases_EmptyPath(t *testing.T) {
	pa, err := LoadPlayerAliases("")
	if err != nil {
		t.Fatalf("LoadPlayerAliases(\"\") error: %v", err)
	}
	if got := pa.Resolve("LBJ"); got != "LBJ" {
		t.Errorf("Resolve with no aliases = %q, want LBJ", got)
	}
}

func TestLoadPlayerAliases_CommentsAndBlankLinesSkipped(t *testing.T) {
	path := writeAliases(t, `# nicknames

# more comments
lbj = LeBron James
`)

	pa, err := LoadPlayerAliases(path)
	if err != nil {
		t.Fatalf("LoadPlayerAliases() error: %v", err)
	}
	if len(pa.Aliases) != 1 {
		t.Errorf("expected 1 alias, got %d: %v", len(pa.Aliases), pa.Aliases)
	}
}

func TestLoadPlayerAliases_InvalidLinesSkipped(t *testing.T) {
	path := writeAliases(t, "noequalssign\n=Missing Alias\nchef=Stephen Curry\n =\nkd=\n")

	pa, err := LoadPlayerAliases(path)
	if err != nil {
		t.Fatalf("LoadPlayerAliases() error: %v", err)
	}
	if len(pa.Aliases) != 1 {
		t.Errorf("expected 1 valid alias, got %d: %v", len(pa.Aliases), pa.Aliases)
	}
}

func TestPlayerAliases_Resolve(t *testing.T) {
	path := writeAliases(t, "LBJ=LeBron James\nChef = Stephen Curry\n")

	pa, err := LoadPlayerAliases(path)
	if err != nil {
		t.Fatalf("LoadPlayerAliases() error: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"LBJ", "LeBron James"},
		{"lbj", "LeBron James"},
		{" chef ", "Stephen Curry"},
		{"Nikola Jokic", "Nikola Jokic"},
	}
	for _, tt := range tests {
		if got := pa.Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	var nilAliases *PlayerAliases
	if got := nilAliases.Resolve("LBJ"); got != "LBJ" {
		t.Errorf("nil Resolve = %q, want LBJ", got)
	}
}
