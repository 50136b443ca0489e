package store

// ShotsTable is the shot log table every aggregate reads from.
const ShotsTable = "nba_shots"

// RequiredColumns lists the nba_shots columns the aggregates depend on.
var RequiredColumns = []string{
	"team_name",
	"player_name",
	"season",
	"shot_zone_basic",
	"shot_made_flag",
}

// schema mirrors the columns of a shot log export. Only fixtures and fresh
// stores create it; real shot logs carry many more columns.
const schema = `
CREATE TABLE IF NOT EXISTS nba_shots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team_name TEXT NOT NULL,
    player_name TEXT NOT NULL,
    season INTEGER NOT NULL,
    shot_zone_basic TEXT NOT NULL,
    shot_made_flag INTEGER NOT NULL CHECK (shot_made_flag IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_shots_season ON nba_shots(season);
CREATE INDEX IF NOT EXISTS idx_shots_player ON nba_shots(player_name);
`
