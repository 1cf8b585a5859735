package budget

import (
	"errors"
	"sync"

	"github.com/coursewise/coursewise/pkg/models"
)

// DefaultLimit is the number of model calls a process may make.
const DefaultLimit = 250

// ErrBudgetExceeded is returned by callers that refuse work once the
// limiter stops granting reservations.
var ErrBudgetExceeded = errors.New("budget exceeded")

// Limiter is a process-wide ceiling on outbound model calls. Reservations
// are never released, so used only grows until the process restarts.
type Limiter struct {
	mu    sync.Mutex
	used  int
	limit int
}

// New creates a Limiter allowing limit reservations. A non-positive limit
// falls back to DefaultLimit.
func New(limit int) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Limiter{limit: limit}
}

// TryReserve consumes one unit of budget. It reports false, without
// consuming anything, once used has reached the limit.
func (l *Limiter) TryReserve() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used >= l.limit {
		return false
	}
	l.used++
	return true
}

// Used returns the number of granted reservations.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Limit returns the ceiling.
func (l *Limiter) Limit() int {
	return l.limit
}

// Remaining returns how many reservations can still be granted.
func (l *Limiter) Remaining() int {
	return l.Status().Remaining
}

// Status returns a consistent snapshot of used, limit and remaining.
func (l *Limiter) Status() models.BudgetStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := l.limit - l.used
	if remaining < 0 {
		remaining = 0
	}
	return models.BudgetStatus{Used: l.used, Limit: l.limit, Remaining: remaining}
}
