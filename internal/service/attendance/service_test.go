package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/memory"
	shiftService "github.com/cmlabs-hris/workforce-backend-go/internal/service/shift"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = mustLoadLocation("Asia/Jakarta")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// at returns a Jakarta wall clock instant on 2025-03-10.
func at(hour, minute, second int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, second, 0, jakarta)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
	err   error
}

type dispatchCall struct {
	recipients []string
	title      string
	message    string
}

func (d *recordingDispatcher) Notify(ctx context.Context, recipients []string, title, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{recipients: recipients, title: title, message: message})
	return d.err
}

func (d *recordingDispatcher) Calls() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatchCall(nil), d.calls...)
}

type recordingNotifier struct {
	notification.Service
	mu       sync.Mutex
	requests []notification.CreateNotificationRequest
}

func (n *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, req)
	return nil
}

func (n *recordingNotifier) Requests() []notification.CreateNotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.CreateNotificationRequest(nil), n.requests...)
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, emp employee.Employee, workDate time.Time) (*shift.Window, error) {
	return nil, errors.New("shift lookup unavailable")
}

type fixture struct {
	store      *memory.Store
	clock      *clock.Fake
	dispatcher *recordingDispatcher
	notifier   *recordingNotifier
	employee   employee.Employee
	svc        attendance.AttendanceService
}

type fixtureOption func(*fixture, *shift.Resolver)

func withResolver(r shift.Resolver) fixtureOption {
	return func(_ *fixture, target *shift.Resolver) { *target = r }
}

func newFixture(t *testing.T, now time.Time, opts ...fixtureOption) *fixture {
	t.Helper()

	store := memory.NewStore()
	userID := "user-1"
	emp := store.PutEmployee(employee.Employee{
		ID:       "emp-1",
		StoreID:  "store-1",
		UserID:   &userID,
		FullName: "Budi",
		Timezone: "Asia/Jakarta",
		Advances: decimal.Zero,
	})
	start := clock.MustTimeOfDay("09:00")
	store.PutStoreSettings(employee.StoreSettings{
		StoreID:                 "store-1",
		ShiftStartTime:          &start,
		GraceMinutes:            30,
		PenaltyPer15Min:         decimal.NewFromInt(50),
		LateNotificationEnabled: true,
		NotificationNumbers:     []string{"+628111111111", "+628122222222"},
	})

	f := &fixture{
		store:      store,
		clock:      clock.NewFake(now),
		dispatcher: &recordingDispatcher{},
		notifier:   &recordingNotifier{},
		employee:   emp,
	}

	employeeRepo := memory.NewEmployeeRepository(store)
	resolver := shiftService.NewResolver(memory.NewShiftRepository(store), employeeRepo)
	for _, opt := range opts {
		opt(f, &resolver)
	}

	f.svc = NewAttendanceService(
		memory.NewTransactor(store),
		memory.NewSessionRepository(store),
		memory.NewLinkRepository(store),
		employeeRepo,
		resolver,
		f.notifier,
		f.dispatcher,
		f.clock,
		Config{PublicBaseURL: "https://hr.example.com/", DefaultLocation: time.UTC},
	)
	return f
}

func (f *fixture) toggle(t *testing.T) attendance.CheckResponse {
	t.Helper()
	resp, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{EmployeeID: f.employee.ID})
	require.NoError(t, err)
	return resp
}

func (f *fixture) openSessions() []attendance.Session {
	var open []attendance.Session
	for _, s := range f.store.Sessions(f.employee.ID) {
		if s.IsOpen() {
			open = append(open, s)
		}
	}
	return open
}

func TestToggle_Lateness(t *testing.T) {
	tests := []struct {
		name        string
		checkIn     time.Time
		wantLate    bool
		wantMinutes int
		wantPenalty int64
	}{
		{name: "within grace", checkIn: at(9, 29, 0), wantLate: false},
		{name: "exactly at deadline", checkIn: at(9, 30, 0), wantLate: false},
		{name: "seconds past deadline", checkIn: at(9, 30, 30), wantLate: true, wantMinutes: 0, wantPenalty: 0},
		{name: "one minute late", checkIn: at(9, 31, 0), wantLate: true, wantMinutes: 1, wantPenalty: 0},
		{name: "one full block", checkIn: at(9, 46, 0), wantLate: true, wantMinutes: 16, wantPenalty: 50},
		{name: "two full blocks", checkIn: at(10, 1, 0), wantLate: true, wantMinutes: 31, wantPenalty: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.checkIn)

			resp := f.toggle(t)

			assert.Equal(t, attendance.StatusCheckIn, resp.Status)
			assert.Equal(t, "2025-03-10", resp.WorkDate)
			require.NotNil(t, resp.IsLate)
			assert.Equal(t, tt.wantLate, *resp.IsLate)
			assert.Equal(t, tt.wantMinutes, *resp.LateMinutes)
			assert.True(t, decimal.NewFromInt(tt.wantPenalty).Equal(*resp.Penalty), "penalty %s", resp.Penalty)

			sessions := f.store.Sessions(f.employee.ID)
			require.Len(t, sessions, 1)
			assert.Equal(t, tt.wantLate, sessions[0].IsLate)
			assert.Equal(t, attendance.MethodQR, sessions[0].Method)
		})
	}
}

func TestToggle_AssignmentOverridesStoreDefault(t *testing.T) {
	f := newFixture(t, at(7, 20, 0))
	f.store.PutAssignment(shift.Assignment{
		EmployeeID: f.employee.ID,
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Shift: shift.Shift{
			ID:              "shift-morning",
			StoreID:         "store-1",
			Name:            "Morning",
			StartTime:       clock.MustTimeOfDay("07:00"),
			GraceMinutes:    5,
			PenaltyPer15Min: decimal.NewFromInt(20),
		},
	})

	resp := f.toggle(t)

	assert.True(t, *resp.IsLate)
	assert.Equal(t, 15, *resp.LateMinutes)
	assert.True(t, decimal.NewFromInt(20).Equal(*resp.Penalty))
}

func TestToggle_NoRuleMeansNotLate(t *testing.T) {
	f := newFixture(t, at(13, 0, 0))
	f.store.PutStoreSettings(employee.StoreSettings{StoreID: "store-1"})

	resp := f.toggle(t)

	assert.False(t, *resp.IsLate)
	assert.True(t, resp.Penalty.IsZero())
}

func TestToggle_ResolverFailureSkipsLateness(t *testing.T) {
	f := newFixture(t, at(11, 0, 0), withResolver(failingResolver{}))

	resp := f.toggle(t)

	assert.Equal(t, attendance.StatusCheckIn, resp.Status)
	assert.False(t, *resp.IsLate)
	assert.Len(t, f.openSessions(), 1)
}

func TestToggle_CheckInThenCheckOut(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))

	in := f.toggle(t)
	require.Equal(t, attendance.StatusCheckIn, in.Status)

	f.clock.Advance(8*time.Hour + 30*time.Second)
	out := f.toggle(t)

	assert.Equal(t, attendance.StatusCheckOut, out.Status)
	assert.Equal(t, in.SessionID, out.SessionID)
	require.NotNil(t, out.CheckOut)
	assert.True(t, out.CheckOut.Equal(at(17, 0, 30)))
	require.NotNil(t, out.DurationMinutes)
	assert.Equal(t, 480, *out.DurationMinutes)
	assert.Nil(t, out.IsLate)
	assert.Empty(t, f.openSessions())

	again := f.toggle(t)
	assert.Equal(t, attendance.StatusCheckIn, again.Status)
	assert.NotEqual(t, in.SessionID, again.SessionID)
	assert.Len(t, f.store.Sessions(f.employee.ID), 2)
}

func TestToggle_CheckOutRecordsClosingCapture(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))
	ctx := context.Background()
	inLoc := &attendance.Location{Lat: -6.2, Lng: 106.8}
	outLoc := &attendance.Location{Lat: -6.3, Lng: 106.9}
	ip := "10.0.0.9"

	_, err := f.svc.Toggle(ctx, attendance.CheckRequest{EmployeeID: f.employee.ID, Location: inLoc})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.svc.Toggle(ctx, attendance.CheckRequest{EmployeeID: f.employee.ID, Location: outLoc, IPAddress: &ip})
	require.NoError(t, err)

	sessions := f.store.Sessions(f.employee.ID)
	require.Len(t, sessions, 1)
	assert.Equal(t, inLoc, sessions[0].Location)
	assert.Equal(t, outLoc, sessions[0].CheckOutLocation)
	require.NotNil(t, sessions[0].IPAddress)
	assert.Equal(t, ip, *sessions[0].IPAddress)
}

func TestToggle_RecoversStaleSession(t *testing.T) {
	yesterday := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, at(8, 0, 0))
	stale := f.store.PutSession(attendance.Session{
		EmployeeID:     f.employee.ID,
		CheckIn:        time.Date(2025, 3, 9, 9, 0, 0, 0, jakarta),
		WorkDate:       yesterday,
		Method:         attendance.MethodQR,
		PenaltyApplied: decimal.Zero,
	})

	resp := f.toggle(t)

	assert.Equal(t, attendance.StatusCheckIn, resp.Status)
	require.NotNil(t, resp.RecoveredSessionID)
	assert.Equal(t, stale.ID, *resp.RecoveredSessionID)

	sessions := f.store.Sessions(f.employee.ID)
	require.Len(t, sessions, 2)
	closed := sessions[0]
	require.NotNil(t, closed.CheckOut)
	assert.True(t, closed.CheckOut.Equal(at(8, 0, 0)))
	assert.Equal(t, 23*60, *closed.DurationMinutes)
	assert.True(t, sessions[1].IsOpen())
	assert.Equal(t, "2025-03-10", sessions[1].WorkDate.Format(clock.DateLayout))
}

func TestToggle_ClockBehindCheckInKeepsSessionOpen(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))
	opened := f.toggle(t)

	f.clock.Set(at(8, 30, 0))
	_, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{EmployeeID: f.employee.ID})

	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeCheckIn)
	open := f.openSessions()
	require.Len(t, open, 1)
	assert.Equal(t, opened.SessionID, open[0].ID)
	assert.Nil(t, open[0].DurationMinutes)
}

func TestToggle_WorkDateFollowsStoreTimezone(t *testing.T) {
	// 23:30 UTC on the 9th is already the 10th in Jakarta.
	f := newFixture(t, time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC))

	resp := f.toggle(t)

	assert.Equal(t, "2025-03-10", resp.WorkDate)
}

func TestToggle_ConcurrentTogglesKeepOneOpenSession(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))
	const n = 10

	var wg sync.WaitGroup
	statuses := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{EmployeeID: f.employee.ID})
			if assert.NoError(t, err) {
				statuses <- resp.Status
			}
		}()
	}
	wg.Wait()
	close(statuses)

	counts := map[string]int{}
	for s := range statuses {
		counts[s]++
	}
	assert.Equal(t, n/2, counts[attendance.StatusCheckIn])
	assert.Equal(t, n/2, counts[attendance.StatusCheckOut])
	assert.Empty(t, f.openSessions())
	assert.Len(t, f.store.Sessions(f.employee.ID), n/2)
}

func TestToggle_QRTargetHints(t *testing.T) {
	other := "emp-2"
	otherStore := "store-2"
	own := "emp-1"

	t.Run("employee mismatch", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		_, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{EmployeeID: f.employee.ID, EmployeeIDHint: &other})
		assert.ErrorIs(t, err, attendance.ErrInvalidQRTarget)
		assert.Empty(t, f.store.Sessions(f.employee.ID))
	})

	t.Run("store mismatch", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		_, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{EmployeeID: f.employee.ID, StoreIDHint: &otherStore})
		assert.ErrorIs(t, err, attendance.ErrInvalidQRTarget)
	})

	t.Run("matching hint", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		_, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{EmployeeID: f.employee.ID, EmployeeIDHint: &own})
		assert.NoError(t, err)
	})
}

func TestToggle_Validation(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))

	_, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{
		EmployeeID: f.employee.ID,
		Method:     "FACE",
		Location:   &attendance.Location{Lat: 91, Lng: 0},
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestToggle_UnknownEmployee(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))

	_, err := f.svc.Toggle(context.Background(), attendance.CheckRequest{EmployeeID: "missing"})

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestToggle_LateNotification(t *testing.T) {
	t.Run("store is notified", func(t *testing.T) {
		f := newFixture(t, at(9, 46, 0))

		f.toggle(t)

		calls := f.dispatcher.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"+628111111111", "+628122222222"}, calls[0].recipients)
		assert.Equal(t, "Budi late today 16 minutes", calls[0].message)

		reqs := f.notifier.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, notification.TypeAttendanceLate, reqs[0].Type)
		assert.Equal(t, "user-1", reqs[0].RecipientID)
	})

	t.Run("dispatcher failure does not fail check-in", func(t *testing.T) {
		f := newFixture(t, at(9, 46, 0))
		f.dispatcher.err = errors.New("gateway down")

		resp := f.toggle(t)

		assert.True(t, *resp.IsLate)
		assert.Len(t, f.openSessions(), 1)
		assert.Len(t, f.dispatcher.Calls(), 1)
	})

	t.Run("disabled for store", func(t *testing.T) {
		f := newFixture(t, at(9, 46, 0))
		start := clock.MustTimeOfDay("09:00")
		f.store.PutStoreSettings(employee.StoreSettings{
			StoreID:             "store-1",
			ShiftStartTime:      &start,
			GraceMinutes:        30,
			PenaltyPer15Min:     decimal.NewFromInt(50),
			NotificationNumbers: []string{"+628111111111"},
		})

		f.toggle(t)

		assert.Empty(t, f.dispatcher.Calls())
	})

	t.Run("on time check-in is not reported", func(t *testing.T) {
		f := newFixture(t, at(9, 10, 0))

		f.toggle(t)

		assert.Empty(t, f.dispatcher.Calls())
		reqs := f.notifier.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, notification.TypeAttendanceCheckIn, reqs[0].Type)
	})
}

func TestIssueLink(t *testing.T) {
	f := newFixture(t, at(8, 55, 0))
	ctx := context.Background()

	link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
	require.NoError(t, err)

	assert.Equal(t, attendance.ActionCheckIn, link.Action)
	assert.Equal(t, "2025-03-10", link.WorkDate)
	assert.Equal(t, "https://hr.example.com/api/v1/attendance/qr/use/"+link.Token, link.URL)
	assert.True(t, link.ExpiresAt.Equal(at(23, 59, 59)))

	f.toggle(t)
	next, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
	require.NoError(t, err)
	assert.Equal(t, attendance.ActionCheckOut, next.Action)
	assert.NotEqual(t, link.Token, next.Token)
}

func TestIssueLink_UnknownActionFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(8, 55, 0))
	action := attendance.Action("BREAK")

	link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID, Action: &action})
	require.NoError(t, err)
	assert.Equal(t, attendance.ActionCheckIn, link.Action)

	f.toggle(t)
	link, err = f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID, Action: &action})
	require.NoError(t, err)
	assert.Equal(t, attendance.ActionCheckOut, link.Action)
}

func TestIssueLink_YesterdaysOpenSessionDefaultsToCheckIn(t *testing.T) {
	f := newFixture(t, at(8, 0, 0))
	f.store.PutSession(attendance.Session{
		EmployeeID:     f.employee.ID,
		CheckIn:        time.Date(2025, 3, 9, 9, 0, 0, 0, jakarta),
		WorkDate:       time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		Method:         attendance.MethodQR,
		PenaltyApplied: decimal.Zero,
	})

	link, err := f.svc.IssueLink(context.Background(), attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
	require.NoError(t, err)
	assert.Equal(t, attendance.ActionCheckIn, link.Action)
}

func TestRedeemLink(t *testing.T) {
	ctx := context.Background()

	t.Run("check in then reuse rejected", func(t *testing.T) {
		f := newFixture(t, at(9, 40, 0))
		link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
		require.NoError(t, err)

		resp, err := f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusCheckIn, resp.Status)
		assert.True(t, *resp.IsLate)
		assert.Equal(t, 10, *resp.LateMinutes)

		_, err = f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
		assert.ErrorIs(t, err, attendance.ErrLinkUnusable)
		assert.Len(t, f.openSessions(), 1)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		_, err := f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: "not-a-token"})
		assert.ErrorIs(t, err, attendance.ErrLinkNotFound)
	})

	t.Run("expired after end of day", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
		require.NoError(t, err)

		f.clock.Set(time.Date(2025, 3, 11, 0, 0, 1, 0, jakarta))
		_, err = f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
		assert.ErrorIs(t, err, attendance.ErrLinkUnusable)
		assert.Empty(t, f.store.Sessions(f.employee.ID))
	})

	t.Run("last second of the day still valid", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
		require.NoError(t, err)

		f.clock.Set(at(23, 59, 59))
		_, err = f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
		assert.NoError(t, err)
	})

	t.Run("forced action conflicts leave link unused", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		checkOut := attendance.ActionCheckOut
		link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID, Action: &checkOut})
		require.NoError(t, err)

		_, err = f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
		assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

		f.toggle(t)
		f.clock.Advance(4 * time.Hour)
		resp, err := f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusCheckOut, resp.Status)
		assert.Equal(t, 240, *resp.DurationMinutes)
	})

	t.Run("check-in link while checked in", func(t *testing.T) {
		f := newFixture(t, at(9, 0, 0))
		checkIn := attendance.ActionCheckIn
		link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID, Action: &checkIn})
		require.NoError(t, err)
		f.toggle(t)

		_, err = f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	})
}

func TestRedeemLink_RecoversStaleSessionBeforeCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at(8, 0, 0))
	stale := f.store.PutSession(attendance.Session{
		EmployeeID:     f.employee.ID,
		CheckIn:        time.Date(2025, 3, 9, 9, 0, 0, 0, jakarta),
		WorkDate:       time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		Method:         attendance.MethodQR,
		PenaltyApplied: decimal.Zero,
	})

	link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
	require.NoError(t, err)
	require.Equal(t, attendance.ActionCheckIn, link.Action)

	resp, err := f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckIn, resp.Status)
	require.NotNil(t, resp.RecoveredSessionID)
	assert.Equal(t, stale.ID, *resp.RecoveredSessionID)

	sessions := f.store.Sessions(f.employee.ID)
	require.Len(t, sessions, 2)
	require.NotNil(t, sessions[0].CheckOut)
	assert.True(t, sessions[0].CheckOut.Equal(at(8, 0, 0)))
	open := f.openSessions()
	require.Len(t, open, 1)
	assert.Equal(t, resp.SessionID, open[0].ID)
	assert.Equal(t, "2025-03-10", open[0].WorkDate.Format(clock.DateLayout))
}

func TestRedeemLink_ConcurrentRedemptionSucceedsOnce(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))
	ctx := context.Background()
	link, err := f.svc.IssueLink(ctx, attendance.IssueLinkRequest{EmployeeID: f.employee.ID})
	require.NoError(t, err)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RedeemLink(ctx, attendance.RedeemLinkRequest{Token: link.Token})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, attendance.ErrLinkUnusable):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, rejected)
	assert.Len(t, f.store.Sessions(f.employee.ID), 1)
}

func TestGetStatus(t *testing.T) {
	f := newFixture(t, at(9, 0, 0))
	ctx := context.Background()

	status, err := f.svc.GetStatus(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.False(t, status.CheckedIn)
	assert.Equal(t, attendance.ActionCheckIn, status.NextAction)
	assert.Nil(t, status.LastSession)

	in := f.toggle(t)
	status, err = f.svc.GetStatus(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.True(t, status.CheckedIn)
	assert.Equal(t, 1, status.TodaySessions)
	assert.Equal(t, attendance.ActionCheckOut, status.NextAction)
	require.NotNil(t, status.OpenSession)
	assert.Equal(t, in.SessionID, status.OpenSession.ID)

	// The next day the forgotten session no longer counts as checked in.
	f.clock.Advance(24 * time.Hour)
	status, err = f.svc.GetStatus(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.False(t, status.CheckedIn)
	assert.Equal(t, 0, status.TodaySessions)
	assert.Equal(t, attendance.ActionCheckIn, status.NextAction)
	assert.NotNil(t, status.OpenSession)
	assert.Equal(t, "2025-03-11", status.Today)
}

func TestGetMonthlyLogs(t *testing.T) {
	f := newFixture(t, time.Date(2025, 2, 28, 9, 45, 0, 0, jakarta))
	ctx := context.Background()

	// February: one late day.
	f.toggle(t)
	f.clock.Advance(8 * time.Hour)
	f.toggle(t)

	// March: two sessions on the same day, then one on the next.
	f.clock.Set(at(9, 0, 0))
	f.toggle(t)
	f.clock.Set(at(12, 0, 0))
	f.toggle(t)
	f.clock.Set(at(13, 0, 0))
	f.toggle(t)
	f.clock.Set(at(17, 0, 0))
	f.toggle(t)
	f.clock.Set(time.Date(2025, 3, 11, 9, 0, 0, 0, jakarta))
	f.toggle(t)

	logs, err := f.svc.GetMonthlyLogs(ctx, attendance.MonthlyLogsRequest{EmployeeID: f.employee.ID})
	require.NoError(t, err)
	assert.Equal(t, "2025-03", logs.Month)
	require.Len(t, logs.Sessions, 3)
	assert.Equal(t, "2025-03-11", logs.Sessions[0].WorkDate)
	assert.Equal(t, 2, logs.Summary.AttendanceDays)
	assert.Equal(t, 7*60, logs.Summary.TotalWorkMinutes)
	assert.Equal(t, 0, logs.Summary.TotalLateMinutes)

	feb, err := f.svc.GetMonthlyLogs(ctx, attendance.MonthlyLogsRequest{EmployeeID: f.employee.ID, Month: "2025-02"})
	require.NoError(t, err)
	require.Len(t, feb.Sessions, 1)
	assert.Equal(t, 1, feb.Summary.AttendanceDays)
	assert.Equal(t, 15, feb.Summary.TotalLateMinutes)
	assert.True(t, decimal.NewFromInt(50).Equal(feb.Summary.LatePenalties))

	_, err = f.svc.GetMonthlyLogs(ctx, attendance.MonthlyLogsRequest{EmployeeID: f.employee.ID, Month: "March"})
	assert.ErrorIs(t, err, attendance.ErrInvalidMonth)
}
