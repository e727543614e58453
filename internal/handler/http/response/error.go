package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Principal errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrStoreRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrNoEmployeeProfile):
		NotFound(w, "No employee profile linked to this account")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrStoreSettingsNotFound):
		NotFound(w, "Store not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrOpenSessionExists),
		errors.Is(err, attendance.ErrLinkUnusable):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrLinkNotFound):
		NotFound(w, "Attendance link not found")
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn),
		errors.Is(err, attendance.ErrInvalidQRTarget),
		errors.Is(err, attendance.ErrInvalidMonth):
		BadRequest(w, err.Error(), nil)

	// Ledger domain errors
	case errors.Is(err, ledger.ErrEntryNotFound):
		NotFound(w, "Ledger entry not found")
	case errors.Is(err, ledger.ErrInvalidEntryType),
		errors.Is(err, ledger.ErrAmountNotPositive),
		errors.Is(err, ledger.ErrInvalidMonth):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPayrollAlreadyPaid),
		errors.Is(err, payroll.ErrPayrollAlreadyExists):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrEmployeeHasNoSalary),
		errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrPayrollEmployeeMismatch),
		errors.Is(err, payroll.ErrNegativeAmount),
		errors.Is(err, payroll.ErrMonthlySalaryNotPositive):
		BadRequest(w, err.Error(), nil)

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
