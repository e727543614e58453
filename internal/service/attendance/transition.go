package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
)

type transitionInput struct {
	employee employee.Employee
	now      time.Time
	loc      *time.Location
	window   *shift.Window
	method   attendance.Method
	capture  attendance.Capture
	// want forces the action; nil toggles.
	want *attendance.Action
}

type transition struct {
	employee  employee.Employee
	action    attendance.Action
	session   attendance.Session
	recovered *attendance.Session
}

// apply runs the check-in/check-out state machine. It must be called inside a
// transaction holding the employee lock.
func (s *AttendanceServiceImpl) apply(ctx context.Context, in transitionInput) (transition, error) {
	result := transition{employee: in.employee}
	today := clock.DateOf(in.now, in.loc)

	open, err := s.sessionRepo.GetOpenSession(ctx, in.employee.ID)
	if err != nil {
		return result, fmt.Errorf("failed to get open session: %w", err)
	}

	// Close a session forgotten on an earlier day before deciding.
	if open != nil && !open.WorkDate.Equal(today) {
		if err := s.closeSession(ctx, open, in.now, in.capture); err != nil {
			return result, err
		}
		slog.Info("closed stale attendance session",
			"employee_id", in.employee.ID,
			"session_id", open.ID,
			"work_date", open.WorkDate.Format(clock.DateLayout),
		)
		result.recovered = open
		open = nil
	}

	action := attendance.ActionCheckIn
	if open != nil {
		action = attendance.ActionCheckOut
	}
	if in.want != nil && *in.want != action {
		if *in.want == attendance.ActionCheckIn {
			return result, attendance.ErrAlreadyCheckedIn
		}
		return result, attendance.ErrNotCheckedIn
	}
	result.action = action

	if action == attendance.ActionCheckOut {
		if err := s.closeSession(ctx, open, in.now, in.capture); err != nil {
			return result, err
		}
		result.session = *open
		return result, nil
	}

	lateness := attendance.ComputeLateness(in.now, today, in.window, in.loc)
	created, err := s.sessionRepo.Create(ctx, attendance.Session{
		EmployeeID:     in.employee.ID,
		CheckIn:        in.now,
		WorkDate:       today,
		Method:         in.method,
		Location:       in.capture.Location,
		IPAddress:      in.capture.IPAddress,
		UserAgent:      in.capture.UserAgent,
		IsLate:         lateness.IsLate,
		LateMinutes:    lateness.Minutes,
		PenaltyApplied: lateness.Penalty,
	})
	if err != nil {
		return result, err
	}
	result.session = created
	return result, nil
}

func (s *AttendanceServiceImpl) closeSession(ctx context.Context, session *attendance.Session, at time.Time, capture attendance.Capture) error {
	if err := session.Close(at, capture); err != nil {
		return err
	}
	if err := s.sessionRepo.Close(ctx, *session); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

func (t transition) response() attendance.CheckResponse {
	resp := attendance.CheckResponse{
		SessionID: t.session.ID,
		WorkDate:  t.session.WorkDate.Format(clock.DateLayout),
		CheckIn:   t.session.CheckIn,
	}
	if t.recovered != nil {
		resp.RecoveredSessionID = &t.recovered.ID
	}

	if t.action == attendance.ActionCheckOut {
		resp.Status = attendance.StatusCheckOut
		resp.Message = "Checked out"
		resp.CheckOut = t.session.CheckOut
		resp.DurationMinutes = t.session.DurationMinutes
		return resp
	}

	resp.Status = attendance.StatusCheckIn
	resp.Message = "Checked in"
	isLate := t.session.IsLate
	lateMinutes := t.session.LateMinutes
	penalty := t.session.PenaltyApplied
	resp.IsLate = &isLate
	resp.LateMinutes = &lateMinutes
	resp.Penalty = &penalty
	if isLate {
		resp.Message = fmt.Sprintf("Checked in, late by %d minutes", lateMinutes)
	}
	return resp
}

// ========== POST-COMMIT HOOKS ==========

// afterCommit emits notifications for a committed transition. Failures are
// logged and never reach the caller.
func (s *AttendanceServiceImpl) afterCommit(ctx context.Context, t transition) {
	ctx = context.WithoutCancel(ctx)
	s.notifyEmployee(ctx, t)
	if t.action == attendance.ActionCheckIn && t.session.IsLate {
		s.notifyStoreOfLateness(ctx, t)
	}
}

func (s *AttendanceServiceImpl) notifyEmployee(ctx context.Context, t transition) {
	if s.notifService == nil || t.employee.UserID == nil {
		return
	}

	req := notification.CreateNotificationRequest{
		StoreID:     t.employee.StoreID,
		RecipientID: *t.employee.UserID,
		Data: map[string]interface{}{
			"session_id": t.session.ID,
			"work_date":  t.session.WorkDate.Format(clock.DateLayout),
		},
	}
	switch {
	case t.action == attendance.ActionCheckOut:
		req.Type = notification.TypeAttendanceCheckOut
		req.Title = "Checked Out"
		req.Message = fmt.Sprintf("You checked out at %s", t.session.CheckOut.Format(time.RFC3339))
	case t.session.IsLate:
		req.Type = notification.TypeAttendanceLate
		req.Title = "Late Check In"
		req.Message = fmt.Sprintf("You checked in %d minutes late", t.session.LateMinutes)
	default:
		req.Type = notification.TypeAttendanceCheckIn
		req.Title = "Checked In"
		req.Message = fmt.Sprintf("You checked in at %s", t.session.CheckIn.Format(time.RFC3339))
	}

	if err := s.notifService.QueueNotification(ctx, req); err != nil {
		slog.Warn("failed to queue attendance notification", "employee_id", t.employee.ID, "error", err)
	}
}

func (s *AttendanceServiceImpl) notifyStoreOfLateness(ctx context.Context, t transition) {
	if s.dispatcher == nil {
		return
	}

	settings, err := s.employeeRepo.GetStoreSettings(ctx, t.employee.StoreID)
	if err != nil {
		slog.Debug("no store settings for late notification", "store_id", t.employee.StoreID, "error", err)
		return
	}
	if !settings.LateNotificationEnabled || len(settings.NotificationNumbers) == 0 {
		return
	}

	message := fmt.Sprintf("%s late today %d minutes", t.employee.FullName, t.session.LateMinutes)
	if err := s.dispatcher.Notify(ctx, settings.NotificationNumbers, "Late Employee", message); err != nil {
		slog.Warn("late notification failed", "employee_id", t.employee.ID, "store_id", t.employee.StoreID, "error", err)
	}
}
