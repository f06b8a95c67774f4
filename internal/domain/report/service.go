package report

import "context"

// ReportService defines reporting business logic. Absence is synthesized at
// read time: workers with no record on a non-holiday working day are reported
// absent without any row being written.
type ReportService interface {
	// Daily builds per-worker rows for every day in an inclusive window,
	// most recent day first. Management and admin see everyone; supervisors
	// and workers see only their own rows.
	Daily(ctx context.Context, req DailyReportRequest) (DailyReport, error)

	// Monthly builds per-worker aggregates for one calendar month.
	Monthly(ctx context.Context, req MonthlyReportRequest) (MonthlyReport, error)

	// Today returns the live headcount summary for the current day.
	Today(ctx context.Context) (TodaySummary, error)
}
