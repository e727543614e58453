package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStaleAttendance(t *testing.T) {
	now := time.Date(2025, 3, 20, 1, 0, 0, 0, time.UTC)
	usedAt := now.Add(-30 * time.Hour)
	checkedOut := now.Add(-40 * time.Hour)

	store := memory.NewStore()
	store.PutLink(attendance.Link{ID: "expired", EmployeeID: "emp-1", Action: attendance.ActionCheckIn, ExpiresAt: now.Add(-time.Hour)})
	store.PutLink(attendance.Link{ID: "redeemed", EmployeeID: "emp-1", Action: attendance.ActionCheckIn, ExpiresAt: now.Add(-time.Hour), UsedAt: &usedAt})
	store.PutLink(attendance.Link{ID: "live", EmployeeID: "emp-2", Action: attendance.ActionCheckOut, ExpiresAt: now.Add(time.Hour)})
	store.PutSession(attendance.Session{EmployeeID: "emp-1", CheckIn: now.Add(-48 * time.Hour), PenaltyApplied: decimal.Zero})
	store.PutSession(attendance.Session{EmployeeID: "emp-2", CheckIn: now.Add(-2 * time.Hour), PenaltyApplied: decimal.Zero})
	store.PutSession(attendance.Session{EmployeeID: "emp-3", CheckIn: now.Add(-50 * time.Hour), CheckOut: &checkedOut, PenaltyApplied: decimal.Zero})

	jobs := NewAttendanceJobs(memory.NewSessionRepository(store), memory.NewLinkRepository(store), clock.NewFake(now), 24*time.Hour)
	report, err := jobs.ReportStaleAttendance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.ExpiredUnusedLinks)
	assert.Equal(t, int64(1), report.StaleOpenSessions)

	// Reporting never removes or closes anything.
	assert.Len(t, store.Links(), 3)
	open := 0
	for _, id := range []string{"emp-1", "emp-2"} {
		for _, s := range store.Sessions(id) {
			if s.IsOpen() {
				open++
			}
		}
	}
	assert.Equal(t, 2, open)
}

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.AddJob("fail", time.Hour, func(ctx context.Context) error {
		return errors.New("boom")
	})

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	s.RunOnce(context.Background())
	assert.Equal(t, int32(2), runs.Load())
}
