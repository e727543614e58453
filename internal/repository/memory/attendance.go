package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
)

type sessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) attendance.SessionRepository {
	return &sessionRepository{store: store}
}

func sortSessions(sessions []attendance.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CheckIn.Before(sessions[j].CheckIn)
	})
}

func (r *sessionRepository) openSession(employeeID string) *attendance.Session {
	var open *attendance.Session
	for _, s := range r.store.sessions {
		if s.EmployeeID == employeeID && s.IsOpen() {
			if open == nil || s.CheckIn.After(open.CheckIn) {
				found := s
				open = &found
			}
		}
	}
	return open
}

func (r *sessionRepository) GetOpenSession(ctx context.Context, employeeID string) (*attendance.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.openSession(employeeID), nil
}

func (r *sessionRepository) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if session.IsOpen() && r.openSession(session.EmployeeID) != nil {
		return attendance.Session{}, attendance.ErrOpenSessionExists
	}
	if session.ID == "" {
		session.ID = newID()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.store.sessions[session.ID] = session
	return session, nil
}

func (r *sessionRepository) Close(ctx context.Context, session attendance.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.sessions[session.ID]
	if !ok || !current.IsOpen() {
		return attendance.ErrNotCheckedIn
	}
	current.CheckOut = session.CheckOut
	current.DurationMinutes = session.DurationMinutes
	current.CheckOutLocation = session.CheckOutLocation
	current.IPAddress = session.IPAddress
	current.UserAgent = session.UserAgent
	current.UpdatedAt = time.Now()
	r.store.sessions[session.ID] = current
	return nil
}

func (r *sessionRepository) ListByCheckInRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []attendance.Session
	for _, s := range r.store.sessions {
		if s.EmployeeID != employeeID {
			continue
		}
		if s.CheckIn.Before(from) || !s.CheckIn.Before(to) {
			continue
		}
		out = append(out, s)
	}
	sortSessions(out)
	return out, nil
}

func (r *sessionRepository) GetLatest(ctx context.Context, employeeID string) (*attendance.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *attendance.Session
	for _, s := range r.store.sessions {
		if s.EmployeeID == employeeID && (latest == nil || s.CheckIn.After(latest.CheckIn)) {
			found := s
			latest = &found
		}
	}
	return latest, nil
}

func (r *sessionRepository) CountOpenCheckedInBefore(ctx context.Context, before time.Time) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, s := range r.store.sessions {
		if s.IsOpen() && s.CheckIn.Before(before) {
			count++
		}
	}
	return count, nil
}

type linkRepository struct {
	store *Store
}

func NewLinkRepository(store *Store) attendance.LinkRepository {
	return &linkRepository{store: store}
}

func (r *linkRepository) Create(ctx context.Context, link attendance.Link) (attendance.Link, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if link.ID == "" {
		link.ID = newID()
	}
	link.CreatedAt = time.Now()
	r.store.links[link.ID] = link
	return link, nil
}

func (r *linkRepository) GetByTokenHashForUpdate(ctx context.Context, tokenHash []byte) (attendance.Link, error) {
	return r.GetByTokenHash(ctx, tokenHash)
}

func (r *linkRepository) GetByTokenHash(ctx context.Context, tokenHash []byte) (attendance.Link, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, l := range r.store.links {
		if bytes.Equal(l.TokenHash, tokenHash) {
			return l, nil
		}
	}
	return attendance.Link{}, attendance.ErrLinkNotFound
}

func (r *linkRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	l, ok := r.store.links[id]
	if !ok {
		return false, attendance.ErrLinkNotFound
	}
	if l.UsedAt != nil {
		return false, nil
	}
	l.UsedAt = &usedAt
	r.store.links[id] = l
	return true, nil
}

func (r *linkRepository) CountExpiredUnused(ctx context.Context, before time.Time) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, l := range r.store.links {
		if l.UsedAt == nil && l.ExpiresAt.Before(before) {
			count++
		}
	}
	return count, nil
}

// Links returns every stored link.
func (s *Store) Links() []attendance.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]attendance.Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	return out
}

// PutLink stores a link as is.
func (s *Store) PutLink(l attendance.Link) attendance.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = newID()
	}
	s.links[l.ID] = l
	return l
}
