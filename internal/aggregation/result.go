package aggregation

// RunResult reports what a single aggregation run accomplished. Per-group
// failures are isolated, so a run can succeed overall while skipping
// individual groups.
type RunResult struct {
	Processed int `json:"processed"` // Groups aggregated and emitted
	Skipped   int `json:"skipped"`   // Groups dropped because they could not be computed
	Filtered  int `json:"filtered"`  // Groups withheld by the privacy threshold
}
