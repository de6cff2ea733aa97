package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"salonbook-backend/models"
	"salonbook-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 2025-03-03 is a Monday.
var testMonday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Employee{},
		&models.Service{},
		&models.AvailabilityRule{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.NotificationLog{},
	))
	return db
}

type fakeNotifier struct {
	created     []uuid.UUID
	rescheduled []uuid.UUID
	cancelled   []uuid.UUID
}

func (f *fakeNotifier) BookingCreated(id uuid.UUID)     { f.created = append(f.created, id) }
func (f *fakeNotifier) BookingRescheduled(id uuid.UUID) { f.rescheduled = append(f.rescheduled, id) }
func (f *fakeNotifier) BookingCancelled(id uuid.UUID)   { f.cancelled = append(f.cancelled, id) }

func newTestBookingService(t *testing.T, db *gorm.DB) (*BookingService, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	availability := NewAvailabilityService(db)
	conflicts := NewConflictService(db)
	return NewBookingService(db, availability, conflicts, notifier), notifier
}

func createTestEmployee(t *testing.T, db *gorm.DB, email string) models.Employee {
	t.Helper()
	user := models.User{
		Email:    email,
		Name:     "Employee " + email,
		Phone:    "+15550001111",
		Password: "test-password",
		Role:     models.RoleEmployee,
	}
	require.NoError(t, db.Create(&user).Error)

	employee := models.Employee{UserID: user.ID, IsActive: true}
	require.NoError(t, db.Create(&employee).Error)
	return employee
}

func createTestService(t *testing.T, db *gorm.DB, name string, price float64, minutes int) models.Service {
	t.Helper()
	svc := models.Service{Name: name, Price: price, DurationMinutes: minutes, IsActive: true}
	require.NoError(t, db.Create(&svc).Error)
	return svc
}

func createWeeklyRule(t *testing.T, db *gorm.DB, employeeID uuid.UUID, day int, start, end string) models.AvailabilityRule {
	t.Helper()
	rule := models.AvailabilityRule{
		EmployeeID: employeeID,
		DayOfWeek:  day,
		StartTime:  start,
		EndTime:    end,
	}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

func createExceptionRule(t *testing.T, db *gorm.DB, employeeID uuid.UUID, date time.Time, start, end string) models.AvailabilityRule {
	t.Helper()
	day := utils.BeginningOfDay(date)
	rule := models.AvailabilityRule{
		EmployeeID:    employeeID,
		DayOfWeek:     int(day.Weekday()),
		StartTime:     start,
		EndTime:       end,
		IsException:   true,
		ExceptionDate: &day,
	}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

// at returns an instant on the given day at hour:min UTC.
func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}
