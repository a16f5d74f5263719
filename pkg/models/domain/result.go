package domain

// ResultSet is a rectangular query result. An empty ResultSet is a valid,
// terminal outcome that suppresses export for the period.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the result carries no exportable data.
func (rs ResultSet) Empty() bool {
	return len(rs.Columns) == 0 || len(rs.Rows) == 0
}

// Artifact describes one exported file produced for a non-empty period.
type Artifact struct {
	Procedure string
	Period    MonthlyPeriod
	Path      string
	Rows      int
}
