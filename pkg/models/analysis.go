package models

// TestAnalysis is the per-test output of an RCA run: the generated root
// cause explanation plus the knowledge-base links that supported it.
// URLs is always non-nil so the JSON encoding is a list, never null.
type TestAnalysis struct {
	TestName string   `json:"test_name"`
	Response string   `json:"response"`
	URLs     []string `json:"urls"`
}
