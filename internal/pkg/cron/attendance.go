package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
)

// AttendanceReport is the result of one stale attendance check.
type AttendanceReport struct {
	ExpiredUnusedLinks int64
	StaleOpenSessions  int64
}

type AttendanceJobs struct {
	sessionRepo attendance.SessionRepository
	linkRepo    attendance.LinkRepository
	clock       clock.Clock
	staleAfter  time.Duration
}

func NewAttendanceJobs(sessionRepo attendance.SessionRepository, linkRepo attendance.LinkRepository, clk clock.Clock, staleAfter time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		sessionRepo: sessionRepo,
		linkRepo:    linkRepo,
		clock:       clk,
		staleAfter:  staleAfter,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("report_stale_attendance", interval, func(ctx context.Context) error {
		_, err := j.ReportStaleAttendance(ctx)
		return err
	})
}

// ReportStaleAttendance logs open sessions older than the stale threshold and
// links that expired unused. Stale sessions are closed by the employee's next
// toggle, never here.
func (j *AttendanceJobs) ReportStaleAttendance(ctx context.Context) (AttendanceReport, error) {
	now := j.clock.Now()

	links, err := j.linkRepo.CountExpiredUnused(ctx, now)
	if err != nil {
		return AttendanceReport{}, fmt.Errorf("count expired attendance links: %w", err)
	}
	sessions, err := j.sessionRepo.CountOpenCheckedInBefore(ctx, now.Add(-j.staleAfter))
	if err != nil {
		return AttendanceReport{}, fmt.Errorf("count stale attendance sessions: %w", err)
	}

	report := AttendanceReport{ExpiredUnusedLinks: links, StaleOpenSessions: sessions}
	if sessions > 0 {
		slog.Warn("open attendance sessions past stale threshold",
			"count", sessions,
			"stale_after", j.staleAfter.String(),
		)
	}
	slog.Info("attendance report",
		"expired_unused_links", links,
		"stale_open_sessions", sessions,
	)
	return report, nil
}
