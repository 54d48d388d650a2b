// Package models contains shared data models used across the RCAccelerator codebase.
package models

// FailureRecord is one failed test extracted from a Tempest report row.
// Traceback holds the last traceback block recorded for the row and is
// never empty: rows that yield no traceback text are not turned into
// records at all.
type FailureRecord struct {
	TestName  string `json:"test_name"`
	Traceback string `json:"traceback"`
}
