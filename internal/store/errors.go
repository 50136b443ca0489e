package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataAccess is returned when the shot log cannot be reached or does not
// have the shape the aggregates expect. There is no retry.
var ErrDataAccess = errors.New("shot log unavailable")

// MissingColumnsError reports required columns absent from the shots table.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: table %s is missing columns: %s",
		ErrDataAccess, e.Table, strings.Join(e.Columns, ", "))
}

// Is makes errors.Is(err, ErrDataAccess) match.
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrDataAccess
}
