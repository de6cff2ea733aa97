// services/booking.go
package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"salonbook-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientResolution tags which path produced the client for a booking.
type ClientResolution string

const (
	ClientFound              ClientResolution = "FOUND"
	ClientCreatedForUser     ClientResolution = "CREATED_FOR_USER"
	ClientCreatedFromEmail   ClientResolution = "CREATED_FROM_EMAIL"
	ClientCreatedPlaceholder ClientResolution = "CREATED_PLACEHOLDER"
)

// BookingInput carries everything needed to create an appointment. Exactly
// one client attribution must be derivable: a logged-in user id, guest
// contact details, or an explicit client id.
type BookingInput struct {
	UserID     *uuid.UUID
	ClientID   *uuid.UUID
	GuestName  string
	GuestEmail string
	GuestPhone string

	EmployeeID *uuid.UUID // nil means "no preference"
	StartTime  time.Time
	EndTime    time.Time
	ServiceIDs []uuid.UUID

	Notes    string
	Timezone string
	Source   string
}

// AppointmentUpdateInput uses pointers so absent fields are left untouched.
type AppointmentUpdateInput struct {
	StartTime  *time.Time
	EndTime    *time.Time
	EmployeeID *uuid.UUID
	Notes      *string
}

// BookingService orchestrates client resolution, employee assignment,
// validation and appointment persistence.
type BookingService struct {
	db           *gorm.DB
	availability *AvailabilityService
	conflicts    *ConflictService
	notifier     Notifier

	locks employeeLocks
}

func NewBookingService(db *gorm.DB, availability *AvailabilityService, conflicts *ConflictService, notifier Notifier) *BookingService {
	return &BookingService{
		db:           db,
		availability: availability,
		conflicts:    conflicts,
		notifier:     notifier,
	}
}

// employeeLocks serializes the check-then-create sequence per employee so
// two concurrent requests cannot both pass the conflict check and write
// overlapping appointments. The lock scope is this process; a multi-instance
// deployment needs a storage-level exclusion constraint or a shared lock
// instead.
type employeeLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*sync.Mutex
}

func (l *employeeLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = make(map[uuid.UUID]*sync.Mutex)
	}
	mu, ok := l.m[id]
	if !ok {
		mu = &sync.Mutex{}
		l.m[id] = mu
	}
	return mu
}

// CreateAppointment books a client with an employee. When no employee is
// requested, active employees are tried in ascending id order and the first
// one passing both the working-hours check and the conflict check is
// assigned. The returned resolution tag reports how the client identity was
// obtained.
func (s *BookingService) CreateAppointment(input BookingInput) (*models.Appointment, ClientResolution, error) {
	if len(input.ServiceIDs) == 0 {
		return nil, "", NewValidationError("at least one service must be selected")
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, "", NewValidationError("end time must be after start time")
	}

	items, err := s.snapshotServices(input.ServiceIDs)
	if err != nil {
		return nil, "", err
	}

	client, resolution, err := s.ResolveOrCreateClient(input)
	if err != nil {
		return nil, "", err
	}

	appt := &models.Appointment{
		ClientID:       client.ID,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Status:         models.StatusPending,
		Notes:          input.Notes,
		ClientTimezone: input.Timezone,
		BookingSource:  input.Source,
		Items:          items,
	}
	if appt.ClientTimezone == "" {
		appt.ClientTimezone = "UTC"
	}
	if appt.BookingSource == "" {
		appt.BookingSource = "WEB"
	}

	if input.EmployeeID != nil {
		if err := s.bookWithEmployee(*input.EmployeeID, appt); err != nil {
			return nil, "", err
		}
	} else {
		if err := s.autoAssign(appt); err != nil {
			return nil, "", err
		}
	}

	if s.notifier != nil {
		s.notifier.BookingCreated(appt.ID)
	}

	created, err := s.GetAppointment(appt.ID)
	if err != nil {
		return nil, "", err
	}
	return created, resolution, nil
}

// bookWithEmployee validates the requested employee and persists the
// appointment inside that employee's critical section.
func (s *BookingService) bookWithEmployee(employeeID uuid.UUID, appt *models.Appointment) error {
	var employee models.Employee
	if err := s.db.First(&employee, "id = ?", employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}

	mu := s.locks.get(employee.ID)
	mu.Lock()
	defer mu.Unlock()

	ok, err := s.availability.IsAvailable(employee.ID, appt.StartTime, appt.EndTime)
	if err != nil {
		return err
	}
	if !ok {
		return NewValidationError("employee is not available at the requested time")
	}

	conflict, err := s.conflicts.HasConflict(employee.ID, appt.StartTime, appt.EndTime, uuid.Nil)
	if err != nil {
		return err
	}
	if conflict {
		return NewValidationError("requested time conflicts with an existing appointment")
	}

	appt.EmployeeID = employee.ID
	return s.db.Create(appt).Error
}

// autoAssign tries each active employee in ascending id order and books the
// first one that is both available and conflict-free. First fit, not load
// balanced.
func (s *BookingService) autoAssign(appt *models.Appointment) error {
	var employees []models.Employee
	if err := s.db.Where("is_active = ?", true).Order("id").Find(&employees).Error; err != nil {
		return err
	}

	for _, employee := range employees {
		mu := s.locks.get(employee.ID)
		mu.Lock()

		ok, err := s.availability.IsAvailable(employee.ID, appt.StartTime, appt.EndTime)
		if err != nil {
			mu.Unlock()
			return err
		}
		if ok {
			conflict, err := s.conflicts.HasConflict(employee.ID, appt.StartTime, appt.EndTime, uuid.Nil)
			if err != nil {
				mu.Unlock()
				return err
			}
			if !conflict {
				appt.EmployeeID = employee.ID
				err := s.db.Create(appt).Error
				mu.Unlock()
				return err
			}
		}
		mu.Unlock()
	}

	return NewValidationError("no employees available for the selected time slot")
}

// snapshotServices captures the current price and duration of every
// requested service as line items. Any unknown id aborts the whole booking
// so no partial appointment is ever written.
func (s *BookingService) snapshotServices(serviceIDs []uuid.UUID) ([]models.AppointmentService, error) {
	items := make([]models.AppointmentService, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		var svc models.Service
		if err := s.db.First(&svc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("unknown service: %s", id)
			}
			return nil, err
		}
		items = append(items, models.AppointmentService{
			ServiceID:       svc.ID,
			ServiceName:     svc.Name,
			Price:           svc.Price,
			DurationMinutes: svc.DurationMinutes,
		})
	}
	return items, nil
}

// ResolveOrCreateClient finds or lazily creates the client a booking belongs
// to, in priority order: logged-in user id, guest email, explicit client id,
// admin walk-in contact details. Walk-ins without an email get a synthesized
// unique placeholder address so the user row can still be created.
func (s *BookingService) ResolveOrCreateClient(input BookingInput) (*models.Client, ClientResolution, error) {
	switch {
	case input.UserID != nil:
		return s.clientForUser(*input.UserID)
	case input.GuestEmail != "":
		return s.clientForEmail(input.GuestEmail, input.GuestName, input.GuestPhone)
	case input.ClientID != nil:
		return s.clientByID(*input.ClientID, input.GuestName, input.GuestPhone)
	case input.GuestName != "":
		return s.clientFromPlaceholder(input.GuestName, input.GuestPhone)
	default:
		return nil, "", NewValidationError("a booking must include a client, a logged-in user, or guest contact details")
	}
}

func (s *BookingService) clientForUser(userID uuid.UUID) (*models.Client, ClientResolution, error) {
	var client models.Client
	err := s.db.Where("user_id = ?", userID).First(&client).Error
	if err == nil {
		return &client, ClientFound, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", NewValidationError("unknown user for booking")
		}
		return nil, "", err
	}

	client = models.Client{UserID: user.ID}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, "", err
	}
	return &client, ClientCreatedForUser, nil
}

func (s *BookingService) clientForEmail(email, name, phone string) (*models.Client, ClientResolution, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if name == "" {
			name = email
		}
		user = models.User{
			Email:    email,
			Name:     name,
			Phone:    phone,
			Role:     models.RoleClient,
			Password: uuid.NewString(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, "", err
		}
	} else if err != nil {
		return nil, "", err
	}

	var client models.Client
	err = s.db.Where("user_id = ?", user.ID).First(&client).Error
	if err == nil {
		return &client, ClientFound, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	client = models.Client{UserID: user.ID}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, "", err
	}
	return &client, ClientCreatedFromEmail, nil
}

func (s *BookingService) clientByID(clientID uuid.UUID, name, phone string) (*models.Client, ClientResolution, error) {
	var client models.Client
	err := s.db.First(&client, "id = ?", clientID).Error
	if err == nil {
		return &client, ClientFound, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	// Client id was never provisioned; wrap a fresh placeholder identity so
	// the booking can still be attributed.
	return s.clientFromPlaceholder(name, phone)
}

func (s *BookingService) clientFromPlaceholder(name, phone string) (*models.Client, ClientResolution, error) {
	if name == "" {
		name = "Walk-in client"
	}
	user := models.User{
		Email:    placeholderEmail(),
		Name:     name,
		Phone:    phone,
		Role:     models.RoleClient,
		Password: uuid.NewString(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	client := models.Client{UserID: user.ID}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, "", err
	}
	return &client, ClientCreatedPlaceholder, nil
}

// placeholderEmail synthesizes a unique address for walk-ins entered with no
// email, so the email uniqueness constraint never blocks admin entry.
func placeholderEmail() string {
	return fmt.Sprintf("walkin-%d-%s@salonbook.local", time.Now().Unix(), uuid.NewString()[:8])
}

// GetAppointment loads an appointment with its client, employee and line
// items.
func (s *BookingService) GetAppointment(id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.
		Preload("Items").
		Preload("Client.User").
		Preload("Employee.User").
		First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// UpdateAppointment applies a partial update. Changing the start time, end
// time or employee re-runs the working-hours and conflict checks (excluding
// this appointment's own interval); a failed check leaves the stored
// appointment untouched.
func (s *BookingService) UpdateAppointment(id uuid.UUID, input AppointmentUpdateInput) (*models.Appointment, error) {
	return s.applyUpdate(id, input, false)
}

// RescheduleAppointment moves an appointment and unconditionally resets its
// status to PENDING, since any time change requires re-confirmation.
func (s *BookingService) RescheduleAppointment(id uuid.UUID, start, end time.Time, employeeID *uuid.UUID) (*models.Appointment, error) {
	appt, err := s.applyUpdate(id, AppointmentUpdateInput{
		StartTime:  &start,
		EndTime:    &end,
		EmployeeID: employeeID,
	}, true)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BookingRescheduled(appt.ID)
	}
	return appt, nil
}

func (s *BookingService) applyUpdate(id uuid.UUID, input AppointmentUpdateInput, resetStatus bool) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	newStart := appt.StartTime
	newEnd := appt.EndTime
	newEmployee := appt.EmployeeID
	if input.StartTime != nil {
		newStart = *input.StartTime
	}
	if input.EndTime != nil {
		newEnd = *input.EndTime
	}
	if input.EmployeeID != nil {
		newEmployee = *input.EmployeeID
	}

	changed := !newStart.Equal(appt.StartTime) || !newEnd.Equal(appt.EndTime) || newEmployee != appt.EmployeeID

	if changed {
		if !newEnd.After(newStart) {
			return nil, NewValidationError("end time must be after start time")
		}

		mu := s.locks.get(newEmployee)
		mu.Lock()
		defer mu.Unlock()

		ok, err := s.availability.IsAvailable(newEmployee, newStart, newEnd)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, NewValidationError("employee is not available at the requested time")
		}

		conflict, err := s.conflicts.HasConflict(newEmployee, newStart, newEnd, appt.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, NewValidationError("requested time conflicts with an existing appointment")
		}
	}

	appt.StartTime = newStart
	appt.EndTime = newEnd
	appt.EmployeeID = newEmployee
	if input.Notes != nil {
		appt.Notes = *input.Notes
	}
	if resetStatus {
		appt.Status = models.StatusPending
	}

	if err := s.db.Save(&appt).Error; err != nil {
		return nil, err
	}
	return s.GetAppointment(appt.ID)
}

// Status transitions are deliberately permissive: the caller may confirm,
// cancel, complete or no-show an appointment from any current status.

func (s *BookingService) ConfirmAppointment(id uuid.UUID) (*models.Appointment, error) {
	return s.setStatus(id, models.StatusConfirmed)
}

func (s *BookingService) CancelAppointment(id uuid.UUID) (*models.Appointment, error) {
	appt, err := s.setStatus(id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BookingCancelled(appt.ID)
	}
	return appt, nil
}

func (s *BookingService) CompleteAppointment(id uuid.UUID) (*models.Appointment, error) {
	return s.setStatus(id, models.StatusCompleted)
}

func (s *BookingService) MarkNoShow(id uuid.UUID) (*models.Appointment, error) {
	return s.setStatus(id, models.StatusNoShow)
}

func (s *BookingService) setStatus(id uuid.UUID, status string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	appt.Status = status
	if err := s.db.Save(&appt).Error; err != nil {
		return nil, err
	}
	log.Printf("appointment %s -> %s", appt.ID, status)
	return s.GetAppointment(appt.ID)
}
