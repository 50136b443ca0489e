package store

// ShotRecord is one field-goal attempt in the shot log.
type ShotRecord struct {
	TeamName      string
	PlayerName    string
	Season        int
	ShotZoneBasic string
	Made          bool // stored as shot_made_flag 0/1
}

// SummaryRow is one group produced by an aggregate.
// Made + Missed == Attempts and Accuracy == round(100*Made/Attempts, 2).
type SummaryRow struct {
	Keys     []string // group key values, in Aggregate.Keys order
	Attempts int64
	Made     int64
	Missed   int64
	Accuracy float64 // percent, 0-100
}

// Key returns the i-th group key value, or "" if the row has fewer keys.
func (r SummaryRow) Key(i int) string {
	if i < 0 || i >= len(r.Keys) {
		return ""
	}
	return r.Keys[i]
}

// Summaries holds the three result sets of a load.
type Summaries struct {
	Teams   []SummaryRow
	Players []SummaryRow
	Zones   []SummaryRow
}
