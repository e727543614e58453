package http

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Check(w http.ResponseWriter, r *http.Request)
	IssueLink(w http.ResponseWriter, r *http.Request)
	RedeemLink(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	Logs(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// decodeOptionalJSON decodes the request body into v. An empty body leaves v untouched.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// clientMeta returns the caller's address and user agent. RealIP has already
// rewritten RemoteAddr when the service runs behind a proxy.
func clientMeta(r *http.Request) (ip *string, userAgent *string) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "" {
		ip = &host
	}
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}
	return ip, userAgent
}

func employeePrincipal(r *http.Request) (user.Principal, error) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return user.Principal{}, user.ErrInvalidToken
	}
	if !principal.HasEmployeeProfile() {
		return user.Principal{}, user.ErrNoEmployeeProfile
	}
	return principal, nil
}

// Check implements AttendanceHandler.
func (h *attendanceHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	principal, err := employeePrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = principal.EmployeeID
	req.StoreID = principal.StoreID
	req.IPAddress, req.UserAgent = clientMeta(r)

	result, err := h.attendanceService.Toggle(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// IssueLink implements AttendanceHandler.
func (h *attendanceHandlerImpl) IssueLink(w http.ResponseWriter, r *http.Request) {
	principal, err := employeePrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.IssueLinkRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = principal.EmployeeID

	result, err := h.attendanceService.IssueLink(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance link created", result)
}

// RedeemLink implements AttendanceHandler. The token comes from the path or the body.
func (h *attendanceHandlerImpl) RedeemLink(w http.ResponseWriter, r *http.Request) {
	var req attendance.RedeemLinkRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if token := chi.URLParam(r, "token"); token != "" {
		req.Token = token
	}
	req.IPAddress, req.UserAgent = clientMeta(r)

	result, err := h.attendanceService.RedeemLink(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	principal, err := employeePrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetStatus(r.Context(), principal.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Logs implements AttendanceHandler.
func (h *attendanceHandlerImpl) Logs(w http.ResponseWriter, r *http.Request) {
	principal, err := employeePrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetMonthlyLogs(r.Context(), attendance.MonthlyLogsRequest{
		EmployeeID: principal.EmployeeID,
		Month:      r.URL.Query().Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
