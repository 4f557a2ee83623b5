package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAbsentUserIsIdle(t *testing.T) {
	m := NewManager()
	s := m.Get(123)
	assert.Equal(t, StepIdle, s.Step)
	assert.False(t, s.Admin)
}

func TestRegistrationFlow(t *testing.T) {
	m := NewManager()
	const uid = int64(10)

	m.BeginRegistration(uid)
	assert.Equal(t, StepAwaitingName, m.Get(uid).Step)

	m.SetName(uid, "Alisher")
	s := m.Get(uid)
	assert.Equal(t, StepAwaitingSurname, s.Step)
	assert.Equal(t, "Alisher", s.Name)

	m.SetSurname(uid, "Usmonov")
	s = m.Get(uid)
	assert.Equal(t, StepAwaitingPhone, s.Step)
	assert.Equal(t, "Alisher", s.Name)
	assert.Equal(t, "Usmonov", s.Surname)

	// Successful registration clears the entry entirely.
	m.Reset(uid)
	assert.Equal(t, StepIdle, m.Get(uid).Step)
}

func TestBookingFlowAndBackNavigation(t *testing.T) {
	m := NewManager()
	const uid = int64(20)
	day := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	m.BeginBooking(uid)
	assert.Equal(t, StepSelectingDate, m.Get(uid).Step)

	assert.True(t, m.SetDate(uid, day))
	assert.Equal(t, StepSelectingField, m.Get(uid).Step)

	m.SetField(uid, "1-stadion")
	s := m.Get(uid)
	assert.Equal(t, StepSelectingSlot, s.Step)
	assert.Equal(t, "1-stadion", s.Field)

	// Back from slot selection drops the field, keeps the date.
	s = m.Back(uid)
	assert.Equal(t, StepSelectingField, s.Step)
	assert.Empty(t, s.Field)
	assert.True(t, s.Date.Equal(day))

	// Back again returns to the calendar and abandons the date too.
	s = m.Back(uid)
	assert.Equal(t, StepSelectingDate, s.Step)
	assert.True(t, s.Date.IsZero())

	// Back from the calendar is a no-op.
	s = m.Back(uid)
	assert.Equal(t, StepSelectingDate, s.Step)
}

func TestSetDateRequiresDateStep(t *testing.T) {
	m := NewManager()
	const uid = int64(25)
	day := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	// A press on a stale calendar mid-registration must not move the
	// user into the booking flow.
	m.BeginRegistration(uid)
	m.SetName(uid, "Alisher")
	assert.False(t, m.SetDate(uid, day))

	s := m.Get(uid)
	assert.Equal(t, StepAwaitingSurname, s.Step)
	assert.Equal(t, "Alisher", s.Name)
	assert.True(t, s.Date.IsZero())

	// Idle users are refused too.
	m.Reset(uid)
	assert.False(t, m.SetDate(uid, day))
	assert.Equal(t, StepIdle, m.Get(uid).Step)
}

func TestAdminTransitions(t *testing.T) {
	m := NewManager()
	const uid = int64(30)

	m.BeginAdminLogin(uid)
	assert.Equal(t, StepAdminPassword, m.Get(uid).Step)

	// Wrong password path clears everything.
	m.Reset(uid)
	assert.False(t, m.Get(uid).Admin)

	m.BeginAdminLogin(uid)
	m.GrantAdmin(uid)
	s := m.Get(uid)
	assert.True(t, s.Admin)
	assert.Equal(t, StepIdle, s.Step)

	m.BeginAdminDelete(uid)
	s = m.Get(uid)
	assert.Equal(t, StepAdminDelete, s.Step)
	assert.True(t, s.Admin, "delete step keeps admin rights")

	m.FinishAdminStep(uid)
	s = m.Get(uid)
	assert.Equal(t, StepIdle, s.Step)
	assert.True(t, s.Admin)

	m.DropAdmin(uid)
	assert.False(t, m.Get(uid).Admin)
}

func TestBeginBookingDropsAdmin(t *testing.T) {
	m := NewManager()
	const uid = int64(40)

	m.GrantAdmin(uid)
	m.BeginBooking(uid)
	assert.False(t, m.Get(uid).Admin)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "idle", StepIdle.String())
	assert.Equal(t, "selecting_slot", StepSelectingSlot.String())
	assert.Equal(t, "unknown", Step(99).String())
}
