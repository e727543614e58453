package attendance

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const redeemPath = "/api/v1/attendance/qr/use/"

// hashToken derives the stored lookup key of a link token.
func hashToken(token string) []byte {
	sum := blake2b.Sum256([]byte(token))
	return sum[:]
}

// IssueLink implements attendance.AttendanceService. A valid requested action
// is used as given; otherwise the link is CHECKOUT only when the employee has
// a session open today, and CHECKIN in every other case.
func (s *AttendanceServiceImpl) IssueLink(ctx context.Context, req attendance.IssueLinkRequest) (attendance.LinkResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.LinkResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.LinkResponse{}, err
	}
	loc := s.location(emp)
	today := clock.DateOf(s.clock.Now(), loc)

	action := attendance.ActionCheckIn
	if req.Action != nil && req.Action.Valid() {
		action = *req.Action
	} else {
		open, err := s.sessionRepo.GetOpenSession(ctx, emp.ID)
		if err != nil {
			return attendance.LinkResponse{}, fmt.Errorf("failed to get open session: %w", err)
		}
		if open != nil && open.WorkDate.Equal(today) {
			action = attendance.ActionCheckOut
		}
	}

	token := uuid.NewString()
	link, err := s.linkRepo.Create(ctx, attendance.Link{
		EmployeeID: emp.ID,
		Action:     action,
		TokenHash:  hashToken(token),
		WorkDate:   today,
		ExpiresAt:  clock.EndOfDay(today, loc),
	})
	if err != nil {
		return attendance.LinkResponse{}, fmt.Errorf("failed to create attendance link: %w", err)
	}

	return attendance.LinkResponse{
		Token:     token,
		URL:       strings.TrimRight(s.config.PublicBaseURL, "/") + redeemPath + token,
		Action:    link.Action,
		WorkDate:  link.WorkDate.Format(clock.DateLayout),
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// RedeemLink implements attendance.AttendanceService. The link's action is
// forced; a link is consumed only when its transition commits.
func (s *AttendanceServiceImpl) RedeemLink(ctx context.Context, req attendance.RedeemLinkRequest) (attendance.CheckResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckResponse{}, err
	}

	now := s.clock.Now()
	tokenHash := hashToken(req.Token)

	link, err := s.linkRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return attendance.CheckResponse{}, err
	}
	emp, err := s.employeeRepo.GetByID(ctx, link.EmployeeID)
	if err != nil {
		return attendance.CheckResponse{}, err
	}
	loc := s.location(emp)
	today := clock.DateOf(now, loc)

	var window *shift.Window
	if link.Action == attendance.ActionCheckIn {
		window = s.resolveWindow(ctx, emp, today)
	}

	var result transition
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		locked, err := s.linkRepo.GetByTokenHashForUpdate(txCtx, tokenHash)
		if err != nil {
			return err
		}
		if !locked.Usable(now, today) {
			return attendance.ErrLinkUnusable
		}

		lockedEmp, err := s.employeeRepo.GetByIDForUpdate(txCtx, locked.EmployeeID)
		if err != nil {
			return err
		}

		action := locked.Action
		result, err = s.apply(txCtx, transitionInput{
			employee: lockedEmp,
			now:      now,
			loc:      loc,
			window:   window,
			method:   attendance.MethodQR,
			capture:  req.Capture(),
			want:     &action,
		})
		if err != nil {
			return err
		}

		marked, err := s.linkRepo.MarkUsed(txCtx, locked.ID, now)
		if err != nil {
			return fmt.Errorf("failed to mark link used: %w", err)
		}
		if !marked {
			return attendance.ErrLinkUnusable
		}
		return nil
	})
	if err != nil {
		return attendance.CheckResponse{}, err
	}

	s.afterCommit(ctx, result)

	return result.response(), nil
}
