package shift

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
)

// Resolver decides which lateness rule applies to an employee on a work date.
// A nil Window means no rule could be resolved.
type Resolver interface {
	Resolve(ctx context.Context, emp employee.Employee, workDate time.Time) (*Window, error)
}
