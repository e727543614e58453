package attendance

import "context"

type AttendanceService interface {
	// Toggle checks the employee in when no session is open, otherwise out.
	Toggle(ctx context.Context, req CheckRequest) (CheckResponse, error)
	IssueLink(ctx context.Context, req IssueLinkRequest) (LinkResponse, error)
	RedeemLink(ctx context.Context, req RedeemLinkRequest) (CheckResponse, error)
	GetStatus(ctx context.Context, employeeID string) (StatusResponse, error)
	GetMonthlyLogs(ctx context.Context, req MonthlyLogsRequest) (MonthlyLogsResponse, error)
}
