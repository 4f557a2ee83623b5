// Package dialog tracks each user's position in the multi-step
// registration and booking conversations. State is process-local and
// lost on restart; users simply start the dialog again.
package dialog

import (
	"sync"
	"time"
)

type Step int

const (
	StepIdle Step = iota
	StepAwaitingName
	StepAwaitingSurname
	StepAwaitingPhone
	StepSelectingDate
	StepSelectingField
	StepSelectingSlot
	StepAdminPassword
	StepAdminDelete
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepAwaitingName:
		return "awaiting_name"
	case StepAwaitingSurname:
		return "awaiting_surname"
	case StepAwaitingPhone:
		return "awaiting_phone"
	case StepSelectingDate:
		return "selecting_date"
	case StepSelectingField:
		return "selecting_field"
	case StepSelectingSlot:
		return "selecting_slot"
	case StepAdminPassword:
		return "admin_password"
	case StepAdminDelete:
		return "admin_delete"
	}
	return "unknown"
}

// State holds the selections accumulated so far. Only the fields
// belonging to the current step's flow are meaningful: Name/Surname
// during registration, Date/Field during booking. Admin survives
// within the admin menu until Reset.
type State struct {
	Step    Step
	Name    string
	Surname string
	Date    time.Time
	Field   string
	Admin   bool
}

// Manager owns the per-user dialog states. All transitions go through
// its methods, which serialize mutation of each user's entry.
type Manager struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewManager() *Manager {
	return &Manager{states: make(map[int64]State)}
}

// Get returns a copy of the user's state; absent users are idle.
func (m *Manager) Get(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[userID]
}

// Reset removes the user's entry entirely, returning them to idle.
func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// BeginRegistration starts the name → surname → phone flow.
func (m *Manager) BeginRegistration(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = State{Step: StepAwaitingName}
}

func (m *Manager) SetName(userID int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[userID]
	s.Name = name
	s.Step = StepAwaitingSurname
	m.states[userID] = s
}

func (m *Manager) SetSurname(userID int64, surname string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[userID]
	s.Surname = surname
	s.Step = StepAwaitingPhone
	m.states[userID] = s
}

// BeginBooking starts the date → field → slot flow. The admin flag is
// dropped: booking always happens as a regular user.
func (m *Manager) BeginBooking(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = State{Step: StepSelectingDate}
}

// SetDate advances a user who is picking a date. It refuses any other
// step and reports whether the transition happened: calendar messages
// outlive the dialog that sent them, so a press on a stale calendar
// must not hijack whatever flow the user is in now.
func (m *Manager) SetDate(userID int64, date time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[userID]
	if s.Step != StepSelectingDate {
		return false
	}
	s.Date = date
	s.Step = StepSelectingField
	m.states[userID] = s
	return true
}

func (m *Manager) SetField(userID int64, field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[userID]
	s.Field = field
	s.Step = StepSelectingSlot
	m.states[userID] = s
}

// Back steps one booking stage backwards, abandoning only the
// selection made at the current stage. From slot selection the chosen
// field is dropped but the date survives; from field selection the
// date is dropped.
func (m *Manager) Back(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.states[userID]
	switch s.Step {
	case StepSelectingSlot:
		s.Field = ""
		s.Step = StepSelectingField
	case StepSelectingField:
		s.Date = time.Time{}
		s.Step = StepSelectingDate
	}
	m.states[userID] = s
	return s
}

// BeginAdminLogin asks for the shared passphrase.
func (m *Manager) BeginAdminLogin(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = State{Step: StepAdminPassword}
}

// GrantAdmin marks the user as authenticated in the admin menu.
func (m *Manager) GrantAdmin(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = State{Step: StepIdle, Admin: true}
}

// DropAdmin keeps the entry but removes admin rights (back to the
// main menu).
func (m *Manager) DropAdmin(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[userID]
	s.Admin = false
	s.Step = StepIdle
	m.states[userID] = s
}

// BeginAdminDelete asks the admin for a booking id to delete.
func (m *Manager) BeginAdminDelete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[userID]
	s.Step = StepAdminDelete
	m.states[userID] = s
}

// FinishAdminStep returns an authenticated admin to the admin menu.
func (m *Manager) FinishAdminStep(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[userID]
	s.Step = StepIdle
	m.states[userID] = s
}
