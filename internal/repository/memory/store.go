// Package memory holds in-process implementations of the repository
// interfaces. It backs service and handler tests and local runs without a
// database.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type txKey struct{}

// Store is the shared state behind every memory repository. Transactions are
// serialized and roll back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	employees     map[string]employee.Employee
	settings      map[string]employee.StoreSettings
	assignments   map[string]shift.Assignment
	sessions      map[string]attendance.Session
	links         map[string]attendance.Link
	entries       map[string]ledger.Entry
	payrolls      map[string]payroll.Period
	notifications map[string]*notification.Notification
}

func NewStore() *Store {
	return &Store{
		employees:     make(map[string]employee.Employee),
		settings:      make(map[string]employee.StoreSettings),
		assignments:   make(map[string]shift.Assignment),
		sessions:      make(map[string]attendance.Session),
		links:         make(map[string]attendance.Link),
		entries:       make(map[string]ledger.Entry),
		payrolls:      make(map[string]payroll.Period),
		notifications: make(map[string]*notification.Notification),
	}
}

type snapshot struct {
	employees   map[string]employee.Employee
	settings    map[string]employee.StoreSettings
	assignments map[string]shift.Assignment
	sessions    map[string]attendance.Session
	links       map[string]attendance.Link
	entries     map[string]ledger.Entry
	payrolls    map[string]payroll.Period
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		employees:   maps.Clone(s.employees),
		settings:    maps.Clone(s.settings),
		assignments: maps.Clone(s.assignments),
		sessions:    maps.Clone(s.sessions),
		links:       maps.Clone(s.links),
		entries:     maps.Clone(s.entries),
		payrolls:    maps.Clone(s.payrolls),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.settings = snap.settings
	s.assignments = snap.assignments
	s.sessions = snap.sessions
	s.links = snap.links
	s.entries = snap.entries
	s.payrolls = snap.payrolls
}

type transactor struct {
	store *Store
}

// NewTransactor returns a database.Transactor over the store.
func NewTransactor(store *Store) database.Transactor {
	return &transactor{store: store}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ========== SEEDING ==========

// PutEmployee inserts or replaces an employee.
func (s *Store) PutEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	s.employees[e.ID] = e
	return e
}

// PutStoreSettings inserts or replaces a store's settings.
func (s *Store) PutStoreSettings(settings employee.StoreSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.StoreID] = settings
}

// PutAssignment inserts a shift assignment with its shift embedded.
func (s *Store) PutAssignment(a shift.Assignment) shift.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	if a.ShiftID == "" {
		a.ShiftID = a.Shift.ID
	}
	s.assignments[a.ID] = a
	return a
}

// PutSession inserts a session as-is, bypassing the open-session check.
func (s *Store) PutSession(session attendance.Session) attendance.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.ID == "" {
		session.ID = newID()
	}
	s.sessions[session.ID] = session
	return session
}

// Employee returns the stored employee.
func (s *Store) Employee(id string) (employee.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	return e, ok
}

// Sessions returns all sessions of an employee ordered by check-in.
func (s *Store) Sessions(employeeID string) []attendance.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Session
	for _, session := range s.sessions {
		if session.EmployeeID == employeeID {
			out = append(out, session)
		}
	}
	sortSessions(out)
	return out
}

// Entries returns all ledger entries of an employee ordered by payout date.
func (s *Store) Entries(employeeID string) []ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ledger.Entry
	for _, e := range s.entries {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}
