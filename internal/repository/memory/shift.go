package memory

import (
	"context"
	"sync"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/shift"
)

// ShiftRepository holds shift definitions, assignments, and holidays.
// Assignment resolution applies the employee > department > position
// scope precedence.
type ShiftRepository struct {
	mu          sync.RWMutex
	definitions map[string]shift.Definition
	assignments []shift.Assignment
	holidays    []shift.Holiday

	// departments and positions map an employee to the scope IDs used
	// by non-employee assignments.
	departments map[string]string
	positions   map[string]string
}

func NewShiftRepository() *ShiftRepository {
	return &ShiftRepository{
		definitions: make(map[string]shift.Definition),
		departments: make(map[string]string),
		positions:   make(map[string]string),
	}
}

func (r *ShiftRepository) AddDefinition(def shift.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.ID] = def
}

func (r *ShiftRepository) AddAssignment(a shift.Assignment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = append(r.assignments, a)
}

func (r *ShiftRepository) AddHoliday(h shift.Holiday) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holidays = append(r.holidays, h)
}

func (r *ShiftRepository) SetDepartment(employeeID, departmentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departments[employeeID] = departmentID
}

func (r *ShiftRepository) SetPosition(employeeID, positionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[employeeID] = positionID
}

func (r *ShiftRepository) GetActiveAssignment(_ context.Context, employeeID string, day time.Time) (shift.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scopes := []struct {
		scope shift.AssignmentScope
		id    string
	}{
		{shift.ScopeEmployee, employeeID},
		{shift.ScopeDepartment, r.departments[employeeID]},
		{shift.ScopePosition, r.positions[employeeID]},
	}

	for _, s := range scopes {
		if s.id == "" {
			continue
		}
		for _, a := range r.assignments {
			if a.Scope == s.scope && a.ScopeID == s.id && a.CoversDate(day) {
				return a, nil
			}
		}
	}
	return shift.Assignment{}, shift.ErrShiftNotFound
}

func (r *ShiftRepository) GetDefinition(_ context.Context, shiftID string) (shift.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[shiftID]
	if !ok {
		return shift.Definition{}, shift.ErrShiftNotFound
	}
	return def, nil
}

func (r *ShiftRepository) ListCovering(_ context.Context, day time.Time) ([]shift.Holiday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []shift.Holiday
	for _, h := range r.holidays {
		if h.CoversDate(day) {
			out = append(out, h)
		}
	}
	return out, nil
}
