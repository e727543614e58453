package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
)

// Config holds attendance service configuration
type Config struct {
	PublicBaseURL   string         // prefix of redemption URLs
	DefaultLocation *time.Location // used when neither branch nor store sets a timezone
}

type AttendanceServiceImpl struct {
	tx           database.Transactor
	sessionRepo  attendance.SessionRepository
	linkRepo     attendance.LinkRepository
	employeeRepo employee.EmployeeRepository
	resolver     shift.Resolver
	notifService notification.Service
	dispatcher   notification.Dispatcher
	clock        clock.Clock
	config       Config
}

func NewAttendanceService(
	tx database.Transactor,
	sessionRepo attendance.SessionRepository,
	linkRepo attendance.LinkRepository,
	employeeRepo employee.EmployeeRepository,
	resolver shift.Resolver,
	notifService notification.Service,
	dispatcher notification.Dispatcher,
	clk clock.Clock,
	cfg Config,
) attendance.AttendanceService {
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:           tx,
		sessionRepo:  sessionRepo,
		linkRepo:     linkRepo,
		employeeRepo: employeeRepo,
		resolver:     resolver,
		notifService: notifService,
		dispatcher:   dispatcher,
		clock:        clk,
		config:       cfg,
	}
}

// location returns the employee's zone: branch, then store, then the default.
func (s *AttendanceServiceImpl) location(emp employee.Employee) *time.Location {
	return clock.LoadLocation(emp.Timezone, s.config.DefaultLocation)
}

// Toggle implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Toggle(ctx context.Context, req attendance.CheckRequest) (attendance.CheckResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckResponse{}, err
	}
	method := req.Method
	if method == "" {
		method = attendance.MethodQR
	}

	now := s.clock.Now()

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckResponse{}, err
	}

	if req.EmployeeIDHint != nil && *req.EmployeeIDHint != "" && *req.EmployeeIDHint != emp.ID {
		return attendance.CheckResponse{}, attendance.ErrInvalidQRTarget
	}
	if req.StoreIDHint != nil && *req.StoreIDHint != "" && *req.StoreIDHint != emp.StoreID {
		return attendance.CheckResponse{}, attendance.ErrInvalidQRTarget
	}

	loc := s.location(emp)
	window := s.resolveWindow(ctx, emp, clock.DateOf(now, loc))

	var result transition
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		locked, err := s.employeeRepo.GetByIDForUpdate(txCtx, emp.ID)
		if err != nil {
			return err
		}
		result, err = s.apply(txCtx, transitionInput{
			employee: locked,
			now:      now,
			loc:      loc,
			window:   window,
			method:   method,
			capture:  req.Capture(),
		})
		return err
	})
	if err != nil {
		return attendance.CheckResponse{}, err
	}

	s.afterCommit(ctx, result)

	return result.response(), nil
}

// GetStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context, employeeID string) (attendance.StatusResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.StatusResponse{}, err
	}
	loc := s.location(emp)
	today := clock.DateOf(s.clock.Now(), loc)

	open, err := s.sessionRepo.GetOpenSession(ctx, emp.ID)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}
	latest, err := s.sessionRepo.GetLatest(ctx, emp.ID)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get latest session: %w", err)
	}

	todays, err := s.sessionRepo.ListByCheckInRange(ctx, emp.ID,
		clock.StartOfDay(today, loc),
		clock.StartOfDay(today.AddDate(0, 0, 1), loc),
	)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	resp := attendance.StatusResponse{
		Today:         today.Format(clock.DateLayout),
		NextAction:    attendance.ActionCheckIn,
		TodaySessions: len(todays),
	}
	if open != nil {
		openResp := attendance.NewSessionResponse(*open)
		resp.OpenSession = &openResp
		// A session left open from an earlier day is closed by the next toggle.
		if open.WorkDate.Equal(today) {
			resp.CheckedIn = true
			resp.NextAction = attendance.ActionCheckOut
		}
	}
	if latest != nil {
		latestResp := attendance.NewSessionResponse(*latest)
		resp.LastSession = &latestResp
	}
	return resp, nil
}

// GetMonthlyLogs implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlyLogs(ctx context.Context, req attendance.MonthlyLogsRequest) (attendance.MonthlyLogsResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.MonthlyLogsResponse{}, err
	}
	loc := s.location(emp)

	month := clock.MonthStart(clock.DateOf(s.clock.Now(), loc))
	if req.Month != "" {
		month, err = clock.ParseMonth(req.Month)
		if err != nil {
			return attendance.MonthlyLogsResponse{}, attendance.ErrInvalidMonth
		}
	}

	sessions, err := s.sessionRepo.ListByCheckInRange(ctx, emp.ID,
		clock.StartOfDay(month, loc),
		clock.StartOfDay(clock.NextMonth(month), loc),
	)
	if err != nil {
		return attendance.MonthlyLogsResponse{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	summary := attendance.Summarize(sessions)

	logs := make([]attendance.SessionResponse, 0, len(sessions))
	for _, session := range slices.Backward(sessions) {
		logs = append(logs, attendance.NewSessionResponse(session))
	}

	return attendance.MonthlyLogsResponse{
		Month:    month.Format(clock.MonthLayout),
		Sessions: logs,
		Summary: attendance.SummaryResponse{
			AttendanceDays:   summary.AttendanceDays,
			TotalWorkMinutes: summary.TotalWorkMinutes,
			TotalLateMinutes: summary.TotalLateMinutes,
			LatePenalties:    summary.LatePenalties,
		},
	}, nil
}

// resolveWindow never fails the caller: a lookup error only means lateness
// is not computed for this check-in.
func (s *AttendanceServiceImpl) resolveWindow(ctx context.Context, emp employee.Employee, workDate time.Time) *shift.Window {
	window, err := s.resolver.Resolve(ctx, emp, workDate)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("shift resolution failed, lateness skipped", "employee_id", emp.ID, "work_date", workDate.Format(clock.DateLayout), "error", err)
		}
		return nil
	}
	return window
}
