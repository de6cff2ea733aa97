package services

import (
	"testing"

	"salonbook-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type bookingFixture struct {
	db       *gorm.DB
	svc      *BookingService
	notifier *fakeNotifier
	employee models.Employee
	haircut  models.Service
}

// newBookingFixture sets up one employee working Mondays 09:00-17:00 and a
// haircut service.
func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := setupTestDB(t)
	svc, notifier := newTestBookingService(t, db)
	employee := createTestEmployee(t, db, "stylist@test.local")
	createWeeklyRule(t, db, employee.ID, 1, "09:00", "17:00")
	haircut := createTestService(t, db, "Haircut", 35, 30)
	return &bookingFixture{db: db, svc: svc, notifier: notifier, employee: employee, haircut: haircut}
}

func (f *bookingFixture) guestInput(startHour, startMin, endHour, endMin int) BookingInput {
	return BookingInput{
		GuestName:  "Guest",
		GuestEmail: "guest@test.local",
		GuestPhone: "+15551234567",
		EmployeeID: &f.employee.ID,
		StartTime:  at(testMonday, startHour, startMin),
		EndTime:    at(testMonday, endHour, endMin),
		ServiceIDs: []uuid.UUID{f.haircut.ID},
	}
}

func TestCreateAppointment_GuestBooking(t *testing.T) {
	f := newBookingFixture(t)

	appt, resolution, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	assert.Equal(t, ClientCreatedFromEmail, resolution)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, f.employee.ID, appt.EmployeeID)
	assert.Equal(t, "WEB", appt.BookingSource)
	assert.Equal(t, "UTC", appt.ClientTimezone)
	require.Len(t, appt.Items, 1)
	assert.Equal(t, "Haircut", appt.Items[0].ServiceName)
	assert.Equal(t, 35.0, appt.Items[0].Price)
	assert.Equal(t, 30, appt.Items[0].DurationMinutes)
	assert.Equal(t, "guest@test.local", appt.Client.User.Email)

	require.Len(t, f.notifier.created, 1)
	assert.Equal(t, appt.ID, f.notifier.created[0])
}

func TestCreateAppointment_ConflictRejected(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	_, _, err = f.svc.CreateAppointment(f.guestInput(10, 15, 10, 45))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "conflicts")

	var count int64
	f.db.Model(&models.Appointment{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateAppointment_TouchingBoundaryAccepted(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	_, _, err = f.svc.CreateAppointment(f.guestInput(10, 30, 11, 0))
	require.NoError(t, err)
}

func TestCreateAppointment_OutsideWorkingHours(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.svc.CreateAppointment(f.guestInput(18, 0, 18, 30))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "not available")
}

func TestCreateAppointment_UnknownEmployee(t *testing.T) {
	f := newBookingFixture(t)

	unknown := uuid.New()
	input := f.guestInput(10, 0, 10, 30)
	input.EmployeeID = &unknown

	_, _, err := f.svc.CreateAppointment(input)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestCreateAppointment_UnknownServiceAbortsEntirely(t *testing.T) {
	f := newBookingFixture(t)

	input := f.guestInput(10, 0, 10, 30)
	input.ServiceIDs = append(input.ServiceIDs, uuid.New())

	_, _, err := f.svc.CreateAppointment(input)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "unknown service")

	var count int64
	f.db.Model(&models.Appointment{}).Count(&count)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, f.notifier.created)
}

func TestCreateAppointment_NoServices(t *testing.T) {
	f := newBookingFixture(t)

	input := f.guestInput(10, 0, 10, 30)
	input.ServiceIDs = nil

	_, _, err := f.svc.CreateAppointment(input)
	assert.True(t, IsValidationError(err))
}

func TestCreateAppointment_NoClientIdentity(t *testing.T) {
	f := newBookingFixture(t)

	input := f.guestInput(10, 0, 10, 30)
	input.GuestName = ""
	input.GuestEmail = ""
	input.GuestPhone = ""

	_, _, err := f.svc.CreateAppointment(input)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestCreateAppointment_AutoAssignPicksFreeEmployee(t *testing.T) {
	f := newBookingFixture(t)

	other := createTestEmployee(t, f.db, "second@test.local")
	createWeeklyRule(t, f.db, other.ID, 1, "09:00", "17:00")

	// Fill the first employee's 10:00 slot, then book with no preference
	_, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	input := f.guestInput(10, 0, 10, 30)
	input.EmployeeID = nil
	appt, _, err := f.svc.CreateAppointment(input)
	require.NoError(t, err)
	assert.Equal(t, other.ID, appt.EmployeeID)
}

func TestCreateAppointment_AutoAssignSkipsInactive(t *testing.T) {
	f := newBookingFixture(t)

	require.NoError(t, f.db.Model(&f.employee).Update("is_active", false).Error)

	input := f.guestInput(10, 0, 10, 30)
	input.EmployeeID = nil
	_, _, err := f.svc.CreateAppointment(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no employees available")
}

func TestCreateAppointment_AutoAssignNoneFree(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	input := f.guestInput(10, 0, 10, 30)
	input.EmployeeID = nil
	_, _, err = f.svc.CreateAppointment(input)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "no employees available")
}

func TestClientResolution_IdempotentForUser(t *testing.T) {
	f := newBookingFixture(t)

	user := models.User{Email: "member@test.local", Name: "Member", Password: "pw", Role: models.RoleClient}
	require.NoError(t, f.db.Create(&user).Error)

	input := f.guestInput(10, 0, 10, 30)
	input.GuestEmail = ""
	input.GuestName = ""
	input.UserID = &user.ID
	_, resolution, err := f.svc.CreateAppointment(input)
	require.NoError(t, err)
	assert.Equal(t, ClientCreatedForUser, resolution)

	input.StartTime = at(testMonday, 11, 0)
	input.EndTime = at(testMonday, 11, 30)
	_, resolution, err = f.svc.CreateAppointment(input)
	require.NoError(t, err)
	assert.Equal(t, ClientFound, resolution)

	var count int64
	f.db.Model(&models.Client{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestClientResolution_GuestEmailReusesExistingUser(t *testing.T) {
	f := newBookingFixture(t)

	existing := models.User{Email: "a@b.com", Name: "Existing", Password: "pw", Role: models.RoleClient}
	require.NoError(t, f.db.Create(&existing).Error)

	input := f.guestInput(10, 0, 10, 30)
	input.GuestEmail = "a@b.com"
	appt, resolution, err := f.svc.CreateAppointment(input)
	require.NoError(t, err)

	assert.Equal(t, ClientCreatedFromEmail, resolution)
	assert.Equal(t, existing.ID, appt.Client.UserID)

	var userCount int64
	f.db.Model(&models.User{}).Where("email = ?", "a@b.com").Count(&userCount)
	assert.EqualValues(t, 1, userCount)
}

func TestClientResolution_WalkInPlaceholder(t *testing.T) {
	f := newBookingFixture(t)

	input := f.guestInput(10, 0, 10, 30)
	input.GuestEmail = ""
	input.GuestName = "Walk In"
	appt, resolution, err := f.svc.CreateAppointment(input)
	require.NoError(t, err)

	assert.Equal(t, ClientCreatedPlaceholder, resolution)
	assert.Contains(t, appt.Client.User.Email, "@salonbook.local")
	assert.Equal(t, "Walk In", appt.Client.User.Name)
}

func TestClientResolution_UnknownClientIDGetsPlaceholder(t *testing.T) {
	f := newBookingFixture(t)

	unknown := uuid.New()
	input := f.guestInput(10, 0, 10, 30)
	input.GuestEmail = ""
	input.ClientID = &unknown
	input.GuestName = "Phone Booking"
	_, resolution, err := f.svc.CreateAppointment(input)
	require.NoError(t, err)
	assert.Equal(t, ClientCreatedPlaceholder, resolution)
}

func TestSnapshotImmutability(t *testing.T) {
	f := newBookingFixture(t)

	appt, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Service{}).
		Where("id = ?", f.haircut.ID).
		Updates(map[string]interface{}{"price": 99.0, "duration_minutes": 120}).Error)

	reloaded, err := f.svc.GetAppointment(appt.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 35.0, reloaded.Items[0].Price)
	assert.Equal(t, 30, reloaded.Items[0].DurationMinutes)
}

func TestReschedule_ConflictRejectedAndOriginalUntouched(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	second, _, err := f.svc.CreateAppointment(f.guestInput(11, 0, 11, 30))
	require.NoError(t, err)

	_, err = f.svc.RescheduleAppointment(second.ID, at(testMonday, 10, 15), at(testMonday, 10, 45), nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	reloaded, err := f.svc.GetAppointment(second.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.StartTime.Equal(at(testMonday, 11, 0)))
	assert.True(t, reloaded.EndTime.Equal(at(testMonday, 11, 30)))
	assert.Empty(t, f.notifier.rescheduled)
}

func TestReschedule_ResetsStatusToPending(t *testing.T) {
	f := newBookingFixture(t)

	appt, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	_, err = f.svc.ConfirmAppointment(appt.ID)
	require.NoError(t, err)

	moved, err := f.svc.RescheduleAppointment(appt.ID, at(testMonday, 14, 0), at(testMonday, 14, 30), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, moved.Status)
	require.Len(t, f.notifier.rescheduled, 1)
}

func TestUpdate_NotesOnlyKeepsStatusAndSkipsRevalidation(t *testing.T) {
	f := newBookingFixture(t)

	appt, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)
	_, err = f.svc.ConfirmAppointment(appt.ID)
	require.NoError(t, err)

	notes := "bring photo reference"
	updated, err := f.svc.UpdateAppointment(appt.ID, AppointmentUpdateInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, notes, updated.Notes)
}

func TestUpdate_MoveToFreeSlot(t *testing.T) {
	f := newBookingFixture(t)

	appt, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	start := at(testMonday, 15, 0)
	end := at(testMonday, 15, 30)
	updated, err := f.svc.UpdateAppointment(appt.ID, AppointmentUpdateInput{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.True(t, updated.StartTime.Equal(start))
	// A plain update does not reset the status
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestStatusTransitions(t *testing.T) {
	f := newBookingFixture(t)

	appt, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmAppointment(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	cancelled, err := f.svc.CancelAppointment(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.Len(t, f.notifier.cancelled, 1)

	// Transitions are permissive: a cancelled appointment can be confirmed again
	reconfirmed, err := f.svc.ConfirmAppointment(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, reconfirmed.Status)

	completed, err := f.svc.CompleteAppointment(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	noShow, err := f.svc.MarkNoShow(appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, noShow.Status)
}

func TestStatusTransitions_NotFound(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.ConfirmAppointment(uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.svc.CancelAppointment(uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.svc.RescheduleAppointment(uuid.New(), at(testMonday, 10, 0), at(testMonday, 10, 30), nil)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancelledSlotBecomesBookableAgain(t *testing.T) {
	f := newBookingFixture(t)

	appt, _, err := f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)

	_, err = f.svc.CancelAppointment(appt.ID)
	require.NoError(t, err)

	_, _, err = f.svc.CreateAppointment(f.guestInput(10, 0, 10, 30))
	require.NoError(t, err)
}

func TestNoOverlapInvariant(t *testing.T) {
	f := newBookingFixture(t)

	// Attempt a mix of good and overlapping bookings
	requests := [][4]int{
		{9, 0, 9, 30},
		{9, 15, 9, 45}, // overlaps the first
		{9, 30, 10, 0},
		{9, 0, 10, 0}, // overlaps everything so far
		{10, 0, 11, 0},
		{10, 30, 11, 30}, // overlaps the previous
	}
	for _, r := range requests {
		f.svc.CreateAppointment(f.guestInput(r[0], r[1], r[2], r[3]))
	}

	var appointments []models.Appointment
	require.NoError(t, f.db.
		Where("employee_id = ? AND status IN ?", f.employee.ID, models.BlockingStatuses).
		Find(&appointments).Error)

	for i := range appointments {
		for j := i + 1; j < len(appointments); j++ {
			a, b := appointments[i], appointments[j]
			overlap := a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime)
			assert.Falsef(t, overlap, "appointments %d and %d overlap", i, j)
		}
	}
}
