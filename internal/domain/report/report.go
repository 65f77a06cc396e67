// internal/domain/report/report.go
package report

import "time"

// Kind identifies which report table an export belongs to.
type Kind string

const (
	KindDaily   Kind = "DAILY"
	KindMonthly Kind = "MONTHLY"
)

// Export records that a report export occurred for a period. Written by
// the export actions of the surrounding application, read by the trigger
// evaluator as the "was a report exported, and when" fact.
type Export struct {
	ID         int64
	Kind       Kind
	PeriodKey  string
	Summary    string
	ExportedAt time.Time
}
