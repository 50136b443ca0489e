package extract

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/shotprofile/internal/store"
)

// ColumnType is a DuckDB column type used in extract tables.
type ColumnType string

const (
	TypeText   ColumnType = "VARCHAR"
	TypeBigInt ColumnType = "BIGINT"
	TypeDouble ColumnType = "DOUBLE"
)

// Column is one named, typed column.
type Column struct {
	Name string
	Type ColumnType
}

// TableDefinition is the schema of one extract table: key columns followed
// by attempts, made, missed and accuracy.
type TableDefinition struct {
	Name    string
	Columns []Column
}

// summaryColumns follow the key columns in every table.
var summaryColumns = []Column{
	{Name: "attempts", Type: TypeBigInt},
	{Name: "made", Type: TypeBigInt},
	{Name: "missed", Type: TypeBigInt},
	{Name: "accuracy", Type: TypeDouble},
}

var (
	// TeamTable holds the team summary.
	TeamTable = TableDefinition{
		Name:    "team_data",
		Columns: append([]Column{{Name: "team_name", Type: TypeText}}, summaryColumns...),
	}

	// PlayerTable holds the player summary.
	PlayerTable = TableDefinition{
		Name:    "player_data",
		Columns: append([]Column{{Name: "player_name", Type: TypeText}}, summaryColumns...),
	}

	// ShotTable holds the player/zone summary.
	ShotTable = TableDefinition{
		Name: "shot_data",
		Columns: append([]Column{
			{Name: "player_name", Type: TypeText},
			{Name: "shot_zone_basic", Type: TypeText},
		}, summaryColumns...),
	}
)

// keyCount returns the number of leading text key columns.
func (d TableDefinition) keyCount() int {
	return len(d.Columns) - len(summaryColumns)
}

func (d TableDefinition) columnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

func (d TableDefinition) createStatement() string {
	cols := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Name, strings.Join(cols, ", "))
}

func (d TableDefinition) insertStatement() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(d.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Name, strings.Join(d.columnNames(), ", "), placeholders)
}

// values maps a summary row onto the table columns.
func (d TableDefinition) values(r store.SummaryRow) ([]any, error) {
	keys := d.keyCount()
	if len(r.Keys) != keys {
		return nil, fmt.Errorf("%s expects %d key columns, row has %d", d.Name, keys, len(r.Keys))
	}
	vals := make([]any, 0, len(d.Columns))
	for _, k := range r.Keys {
		vals = append(vals, k)
	}
	return append(vals, r.Attempts, r.Made, r.Missed, r.Accuracy), nil
}

// Tables holds the rows of the three extract tables.
type Tables struct {
	Team   []store.SummaryRow
	Player []store.SummaryRow
	Shot   []store.SummaryRow
}

// FromSummaries maps loaded summaries onto extract tables.
func FromSummaries(s *store.Summaries) Tables {
	return Tables{Team: s.Teams, Player: s.Players, Shot: s.Zones}
}
