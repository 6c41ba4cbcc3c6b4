package models

import "time"

// Analysis is a stored interpretation of one document.
type Analysis struct {
	ID           int64
	CreatedAt    time.Time
	SourcePath   string
	SourceHash   string
	SliceCount   int
	WarningCount int
	RuleFindings []string
	Result       *Interpretation
}
