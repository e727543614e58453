package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/workforce-backend-go/internal/service/attendance"
	ledgerService "github.com/cmlabs-hris/workforce-backend-go/internal/service/ledger"
	notificationService "github.com/cmlabs-hris/workforce-backend-go/internal/service/notification"
	payrollService "github.com/cmlabs-hris/workforce-backend-go/internal/service/payroll"
	shiftService "github.com/cmlabs-hris/workforce-backend-go/internal/service/shift"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type nopDispatcher struct{}

func (nopDispatcher) Notify(ctx context.Context, recipients []string, title, message string) error {
	return nil
}

type testServer struct {
	t      *testing.T
	server *httptest.Server
	jwt    jwt.Service
	clock  *clock.Fake
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	store := memory.NewStore()
	salary := decimal.NewFromInt(3000000)
	userID := "user-1"
	store.PutEmployee(employee.Employee{
		ID:            "emp-1",
		StoreID:       "store-1",
		UserID:        &userID,
		FullName:      "Budi",
		MonthlySalary: &salary,
		Timezone:      "Asia/Jakarta",
		Advances:      decimal.Zero,
	})
	start := clock.MustTimeOfDay("09:00")
	store.PutStoreSettings(employee.StoreSettings{
		StoreID:         "store-1",
		ShiftStartTime:  &start,
		GraceMinutes:    30,
		PenaltyPer15Min: decimal.NewFromInt(50),
	})

	clk := clock.NewFake(time.Date(2025, 3, 10, 9, 0, 0, 0, jakarta))
	jwtService := jwt.NewJWTService("test-secret", "1h")

	transactor := memory.NewTransactor(store)
	employeeRepo := memory.NewEmployeeRepository(store)
	sessionRepo := memory.NewSessionRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	payrollRepo := memory.NewPayrollRepository(store)

	hub := sse.NewHub(10)
	notifSvc := notificationService.NewNotificationService(memory.NewNotificationRepository(store), hub, notificationService.Config{
		FlushInterval: 10 * time.Millisecond,
	})
	t.Cleanup(func() {
		notifSvc.Stop()
		hub.Close()
	})

	resolver := shiftService.NewResolver(memory.NewShiftRepository(store), employeeRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		sessionRepo,
		memory.NewLinkRepository(store),
		employeeRepo,
		resolver,
		notifSvc,
		nopDispatcher{},
		clk,
		attendanceService.Config{PublicBaseURL: "https://hr.example.com"},
	)
	ledgerSvc := ledgerService.NewLedgerService(transactor, ledgerRepo, employeeRepo, notifSvc, clk, time.UTC)
	payrollSvc := payrollService.NewPayrollService(transactor, payrollRepo, employeeRepo, sessionRepo, ledgerRepo, notifSvc, clk, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(
		RouterConfig{LogLevel: slog.LevelError},
		logger,
		jwtService,
		middleware.NewStoreMiddleware(employeeRepo, payrollRepo),
		NewAttendanceHandler(attendanceSvc),
		NewLedgerHandler(ledgerSvc),
		NewPayrollHandler(payrollSvc),
		NewNotificationHandler(notifSvc, jwtService),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{t: t, server: server, jwt: jwtService, clock: clk, store: store}
}

func (s *testServer) token(p user.Principal) string {
	s.t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(p)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) employeeToken() string {
	return s.token(user.Principal{UserID: "user-1", EmployeeID: "emp-1", StoreID: "store-1", Role: user.RoleEmployee})
}

func (s *testServer) managerToken(storeID string) string {
	return s.token(user.Principal{UserID: "user-9", StoreID: storeID, Role: user.RoleManager})
}

// do sends body as JSON and decodes the response envelope.
func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(http.MethodPost, "/api/v1/attendance/check", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPost, "/api/v1/attendance/check", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	sseToken, _, err := s.jwt.GenerateSSEToken("user-1")
	require.NoError(t, err)
	status, _ = s.do(http.MethodGet, "/api/v1/attendance/status", sseToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_AttendanceToggle(t *testing.T) {
	s := newTestServer(t)
	token := s.employeeToken()

	status, env := s.do(http.MethodPost, "/api/v1/attendance/check", token, nil)
	require.Equal(t, http.StatusOK, status)
	checkIn := decodeData[attendance.CheckResponse](t, env)
	assert.Equal(t, attendance.StatusCheckIn, checkIn.Status)
	assert.Equal(t, "2025-03-10", checkIn.WorkDate)

	status, env = s.do(http.MethodGet, "/api/v1/attendance/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	current := decodeData[attendance.StatusResponse](t, env)
	assert.True(t, current.CheckedIn)
	assert.Equal(t, attendance.ActionCheckOut, current.NextAction)

	s.clock.Advance(8 * time.Hour)

	status, env = s.do(http.MethodPost, "/api/v1/attendance/check", token, nil)
	require.Equal(t, http.StatusOK, status)
	checkOut := decodeData[attendance.CheckResponse](t, env)
	assert.Equal(t, attendance.StatusCheckOut, checkOut.Status)
	require.NotNil(t, checkOut.DurationMinutes)
	assert.Equal(t, 480, *checkOut.DurationMinutes)

	status, env = s.do(http.MethodGet, "/api/v1/attendance/logs?month=2025-03", token, nil)
	require.Equal(t, http.StatusOK, status)
	logs := decodeData[attendance.MonthlyLogsResponse](t, env)
	assert.Len(t, logs.Sessions, 1)
}

func TestRouter_AttendanceNeedsEmployeeProfile(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(http.MethodPost, "/api/v1/attendance/check", s.managerToken("store-1"), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_AttendanceLinkIsSingleUse(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodPost, "/api/v1/attendance/link", s.employeeToken(), nil)
	require.Equal(t, http.StatusCreated, status)
	link := decodeData[attendance.LinkResponse](t, env)
	assert.Equal(t, attendance.ActionCheckIn, link.Action)
	assert.Contains(t, link.URL, link.Token)

	status, env = s.do(http.MethodPost, "/api/v1/attendance/qr/use/"+link.Token, "", nil)
	require.Equal(t, http.StatusOK, status)
	redeemed := decodeData[attendance.CheckResponse](t, env)
	assert.Equal(t, attendance.StatusCheckIn, redeemed.Status)

	status, _ = s.do(http.MethodPost, "/api/v1/attendance/qr/use", "", map[string]string{"token": link.Token})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(http.MethodPost, "/api/v1/attendance/qr/use", "", map[string]string{"token": "unknown"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_LedgerStoreScoping(t *testing.T) {
	s := newTestServer(t)
	entry := map[string]any{
		"entry_type":  "BONUS",
		"amount":      "100000",
		"description": "Weekend cover",
	}

	status, _ := s.do(http.MethodPost, "/api/v1/employees/emp-1/ledger", s.employeeToken(), entry)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(http.MethodPost, "/api/v1/employees/emp-1/ledger", s.managerToken("store-2"), entry)
	assert.Equal(t, http.StatusNotFound, status)

	manager := s.managerToken("store-1")
	status, env := s.do(http.MethodPost, "/api/v1/employees/emp-1/ledger", manager, entry)
	require.Equal(t, http.StatusCreated, status)
	recorded := decodeData[ledger.EntryResponse](t, env)
	assert.Equal(t, ledger.EntryTypeBonus, recorded.EntryType)
	assert.Equal(t, "2025-03-10", recorded.PayoutDate)

	status, env = s.do(http.MethodGet, "/api/v1/employees/emp-1/ledger?month=2025-03", manager, nil)
	require.Equal(t, http.StatusOK, status)
	list := decodeData[ledger.EntryListResponse](t, env)
	assert.Len(t, list.Entries, 1)
	assert.True(t, decimal.NewFromInt(100000).Equal(list.Totals.Bonuses))

	status, _ = s.do(http.MethodPost, "/api/v1/employees/emp-1/ledger", manager, map[string]any{
		"entry_type": "SALARY",
		"amount":     "1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestRouter_PayrollLifecycle(t *testing.T) {
	s := newTestServer(t)
	manager := s.managerToken("store-1")

	status, _ := s.do(http.MethodPost, "/api/v1/attendance/check", s.employeeToken(), nil)
	require.Equal(t, http.StatusOK, status)
	s.clock.Advance(8 * time.Hour)
	status, _ = s.do(http.MethodPost, "/api/v1/attendance/check", s.employeeToken(), nil)
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(http.MethodPost, "/api/v1/employees/emp-1/payrolls/generate", manager, map[string]string{"month": "2025-03"})
	require.Equal(t, http.StatusOK, status)
	period := decodeData[payroll.PeriodResponse](t, env)
	assert.Equal(t, "2025-03", period.Month)
	assert.Equal(t, 1, period.AttendanceDays)
	assert.False(t, period.IsPaid)

	status, env = s.do(http.MethodGet, "/api/v1/payrolls/"+period.ID, manager, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, period.ID, decodeData[payroll.PeriodResponse](t, env).ID)

	status, _ = s.do(http.MethodGet, "/api/v1/payrolls/"+period.ID, s.managerToken("store-2"), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = s.do(http.MethodPost, "/api/v1/employees/emp-1/payrolls/mark-paid", manager, map[string]string{"month": "2025-03"})
	require.Equal(t, http.StatusOK, status)
	paid := decodeData[payroll.MarkPaidResponse](t, env)
	assert.True(t, paid.Payroll.IsPaid)
	require.NotNil(t, paid.Payroll.PaidBy)
	assert.Equal(t, "user-9", *paid.Payroll.PaidBy)

	status, _ = s.do(http.MethodDelete, "/api/v1/payrolls/"+period.ID, manager, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(http.MethodGet, "/api/v1/employees/emp-1/payrolls", manager, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]payroll.PeriodResponse](t, env), 1)
}

func TestRouter_Notifications(t *testing.T) {
	s := newTestServer(t)
	token := s.employeeToken()

	status, env := s.do(http.MethodGet, "/api/v1/notifications/sse-token", token, nil)
	require.Equal(t, http.StatusOK, status)
	sseToken := decodeData[notification.SSETokenResponse](t, env)
	assert.NotEmpty(t, sseToken.Token)

	status, _ = s.do(http.MethodGet, "/api/v1/notifications/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPost, "/api/v1/attendance/check", token, nil)
	require.Equal(t, http.StatusOK, status)

	// Notifications are written by a background worker.
	unread := 0
	for deadline := time.Now().Add(time.Second); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
		status, env = s.do(http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
		require.Equal(t, http.StatusOK, status)
		if unread = decodeData[notification.UnreadCountResponse](t, env).UnreadCount; unread > 0 {
			break
		}
	}
	assert.Equal(t, 1, unread)

	status, _ = s.do(http.MethodPost, "/api/v1/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decodeData[notification.UnreadCountResponse](t, env).UnreadCount)
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
}
