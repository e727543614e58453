package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
)

type LedgerServiceImpl struct {
	tx           database.Transactor
	ledgerRepo   ledger.LedgerRepository
	employeeRepo employee.EmployeeRepository
	notifService notification.Service
	clock        clock.Clock
	defaultLoc   *time.Location
}

func NewLedgerService(
	tx database.Transactor,
	ledgerRepo ledger.LedgerRepository,
	employeeRepo employee.EmployeeRepository,
	notifService notification.Service,
	clk clock.Clock,
	defaultLoc *time.Location,
) ledger.LedgerService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &LedgerServiceImpl{
		tx:           tx,
		ledgerRepo:   ledgerRepo,
		employeeRepo: employeeRepo,
		notifService: notifService,
		clock:        clk,
		defaultLoc:   defaultLoc,
	}
}

func (s *LedgerServiceImpl) today(emp employee.Employee) time.Time {
	return clock.DateOf(s.clock.Now(), clock.LoadLocation(emp.Timezone, s.defaultLoc))
}

// Record appends a manual BONUS, PENALTY or ADVANCE entry. An ADVANCE also
// raises the employee's outstanding advances in the same transaction.
func (s *LedgerServiceImpl) Record(ctx context.Context, req ledger.RecordEntryRequest) (ledger.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return ledger.EntryResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return ledger.EntryResponse{}, err
	}

	payoutDate := s.today(emp)
	if req.PayoutDate != nil {
		payoutDate, err = clock.ParseDate(*req.PayoutDate)
		if err != nil {
			return ledger.EntryResponse{}, err
		}
	}

	var created ledger.Entry
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.employeeRepo.GetByIDForUpdate(txCtx, emp.ID); err != nil {
			return err
		}

		created, err = s.ledgerRepo.Create(txCtx, ledger.Entry{
			EmployeeID:  emp.ID,
			EntryType:   req.EntryType,
			Amount:      req.Amount,
			PayoutDate:  payoutDate,
			Description: req.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to create ledger entry: %w", err)
		}

		if req.EntryType == ledger.EntryTypeAdvance {
			if err := s.employeeRepo.AddAdvance(txCtx, emp.ID, req.Amount); err != nil {
				return fmt.Errorf("failed to add advance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return ledger.EntryResponse{}, err
	}

	slog.Info("ledger entry recorded",
		"employee_id", emp.ID,
		"entry_id", created.ID,
		"entry_type", created.EntryType,
		"amount", created.Amount.String(),
	)

	if s.notifService != nil && emp.UserID != nil {
		notifErr := s.notifService.QueueNotification(context.WithoutCancel(ctx), notification.CreateNotificationRequest{
			StoreID:     emp.StoreID,
			RecipientID: *emp.UserID,
			Type:        notification.TypeLedgerEntry,
			Title:       "New " + string(created.EntryType) + " entry",
			Message:     fmt.Sprintf("%s of %s recorded for %s", created.EntryType, created.Amount.StringFixed(2), created.PayoutDate.Format(clock.DateLayout)),
			Data: map[string]interface{}{
				"entry_id":   created.ID,
				"entry_type": string(created.EntryType),
				"amount":     created.Amount.String(),
			},
		})
		if notifErr != nil {
			slog.Warn("failed to queue ledger notification", "employee_id", emp.ID, "error", notifErr)
		}
	}

	return ledger.NewEntryResponse(created), nil
}

// List returns a month of entries with per-type totals over it.
func (s *LedgerServiceImpl) List(ctx context.Context, req ledger.ListEntriesRequest) (ledger.EntryListResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return ledger.EntryListResponse{}, err
	}

	month := clock.MonthStart(s.today(emp))
	if req.Month != "" {
		month, err = clock.ParseMonth(req.Month)
		if err != nil {
			return ledger.EntryListResponse{}, ledger.ErrInvalidMonth
		}
	}

	entries, err := s.ledgerRepo.ListByPayoutRange(ctx, emp.ID, month, clock.MonthEnd(month))
	if err != nil {
		return ledger.EntryListResponse{}, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	totals := ledger.Sum(entries)
	resp := ledger.EntryListResponse{
		Month:   month.Format(clock.MonthLayout),
		Entries: make([]ledger.EntryResponse, 0, len(entries)),
		Totals: ledger.TotalsResponse{
			Bonuses:   totals.Bonuses,
			Penalties: totals.Penalties,
			Advances:  totals.Advances,
		},
		OutstandingAdvances: emp.Advances,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, ledger.NewEntryResponse(e))
	}
	return resp, nil
}
