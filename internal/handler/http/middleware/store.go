package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// RequireStore requires the caller's token to name a store.
func RequireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		if principal.StoreID == "" {
			response.HandleError(w, user.ErrStoreRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// StoreMiddleware keeps managers inside their own store. Records of other
// stores are reported as not found.
type StoreMiddleware struct {
	employeeRepo employee.EmployeeRepository
	payrollRepo  payroll.PayrollRepository
}

func NewStoreMiddleware(employeeRepo employee.EmployeeRepository, payrollRepo payroll.PayrollRepository) *StoreMiddleware {
	return &StoreMiddleware{
		employeeRepo: employeeRepo,
		payrollRepo:  payrollRepo,
	}
}

func (m *StoreMiddleware) checkEmployee(ctx context.Context, employeeID string) error {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		return user.ErrInvalidToken
	}
	emp, err := m.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp.StoreID != principal.StoreID {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// RequireStoreEmployee checks the {id} URL parameter names an employee of the caller's store.
func (m *StoreMiddleware) RequireStoreEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.checkEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireStorePayroll checks the {id} URL parameter names a payroll period of
// an employee of the caller's store.
func (m *StoreMiddleware) RequireStorePayroll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		period, err := m.payrollRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if err := m.checkEmployee(r.Context(), period.EmployeeID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				err = payroll.ErrPayrollNotFound
			}
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
