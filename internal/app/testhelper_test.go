package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/shotprofile/internal/store"
)

// resetFlags restores every package-level flag variable to its default so
// tests do not leak settings into each other.
func resetFlags() {
	configPath, dbPath, outPath, logLevel, logFormat = "", "", "", "", ""
	cfg = nil

	runPlayer, runNoPlot, runMode, runParquetDir, runQuiet = "", false, "", "", false
	summaryLimit, summaryPlayer, summaryMinSeason = 20, "", 0
	profileNoPlot, profileList = false, false
	exportMode, exportParquetDir = "", ""
	watchDebounce, watchNoInitial = 0, false
}

// executeCommand runs the root command with args and returns everything it
// wrote to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHOTPROFILE_CONFIG", "")
	resetFlags()
	t.Cleanup(resetFlags)

	buf := &bytes.Buffer{}
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)
	defer RootCmd.SetArgs(nil)

	err := RootCmd.Execute()
	return buf.String(), err
}

// seedShotLog writes a small shot log into dir and returns its path.
// P1 shoots from five zones with rising volume, P2 from one.
func seedShotLog(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "nba_shots.db")
	st, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}

	zones := []string{"Restricted Area", "Mid-Range", "Left Corner 3", "Above the Break 3", "In The Paint (Non-RA)"}
	var shots []store.ShotRecord
	for i, zone := range zones {
		for j := 0; j < (i+1)*3; j++ {
			shots = append(shots, store.ShotRecord{
				TeamName: "TeamA", PlayerName: "P1", Season: 2021, ShotZoneBasic: zone, Made: j%3 == 0,
			})
		}
	}
	shots = append(shots,
		store.ShotRecord{TeamName: "TeamB", PlayerName: "P2", Season: 2020, ShotZoneBasic: "Mid-Range", Made: true},
		store.ShotRecord{TeamName: "TeamB", PlayerName: "P2", Season: 2020, ShotZoneBasic: "Mid-Range", Made: false},
	)

	if err := st.InsertShots(context.Background(), shots); err != nil {
		t.Fatalf("InsertShots: %v", err)
	}
	return path
}
