package report

import "github.com/rcaccelerator/server/pkg/models"

// DedupeFailures collapses records to one entry per test name, keeping the
// first occurrence and its traceback. Insertion order of first occurrences
// is preserved. Equality is exact string equality on the test name; the
// report is taken at its word and names are never normalized here.
func DedupeFailures(records []models.FailureRecord) []models.FailureRecord {
	seen := make(map[string]struct{}, len(records))
	unique := make([]models.FailureRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.TestName]; ok {
			continue
		}
		seen[r.TestName] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}
