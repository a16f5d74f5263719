package domain

// RunSummary describes the outcome of one batch run for console reporting.
type RunSummary struct {
	Procedure string
	Range     DateRange
	Artifacts []Artifact
}
