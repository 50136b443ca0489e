package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/shotprofile/internal/config"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "shotprofile" {
		t.Errorf("expected Use to be 'shotprofile', got '%s'", RootCmd.Use)
	}
	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if RootCmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"run", "summary", "profile", "export", "doctor", "watch"} {
		if !found[expected] {
			t.Errorf("expected command '%s' to be registered", expected)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "db", "out", "log-level", "log-format"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestLoadConfig_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	db := seedShotLog(t, dir)

	cfgFile := filepath.Join(dir, "shotprofile.yaml")
	yaml := "store:\n  path: elsewhere.db\n  min_season: 2020\nexport:\n  path: elsewhere.duckdb\n"
	if err := os.WriteFile(cfgFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("SHOTPROFILE_CONFIG", "")
	resetFlags()
	defer resetFlags()
	configPath, dbPath, logLevel = cfgFile, db, "error"
	if err := loadConfig(RootCmd, nil); err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Store.Path != db {
		t.Errorf("Store.Path = %q, want flag value %q", cfg.Store.Path, db)
	}
	if cfg.Store.MinSeason != 2020 {
		t.Errorf("Store.MinSeason = %d, want 2020 from file", cfg.Store.MinSeason)
	}
	if cfg.Export.Path != "elsewhere.duckdb" {
		t.Errorf("Export.Path = %q, want file value", cfg.Export.Path)
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	_, err := executeCommand(t, "summary", "--log-format", "xml")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestResolvePlayer_Aliases(t *testing.T) {
	dir := t.TempDir()
	aliases := filepath.Join(dir, "aliases")
	if err := os.WriteFile(aliases, []byte("bron = LeBron James\n"), 0644); err != nil {
		t.Fatalf("failed to write aliases: %v", err)
	}

	resetFlags()
	defer resetFlags()
	cfg = config.Default()
	cfg.AliasesPath = aliases

	got, err := resolvePlayer("Bron")
	if err != nil {
		t.Fatalf("resolvePlayer() error = %v", err)
	}
	if got != "LeBron James" {
		t.Errorf("resolvePlayer(Bron) = %q, want LeBron James", got)
	}
	if got, _ := resolvePlayer("P1"); got != "P1" {
		t.Errorf("resolvePlayer(P1) = %q, want unchanged", got)
	}
}
