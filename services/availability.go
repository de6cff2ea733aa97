// services/availability.go
package services

import (
	"errors"
	"time"

	"salonbook-backend/models"
	"salonbook-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSlotMinutes is the slot granularity used when the caller does not
// ask for a specific one.
const DefaultSlotMinutes = 15

// Slot is a bookable time window, both ends as absolute instants.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilityService resolves working-hour rules into concrete bookable
// windows. It never consults existing appointments; conflict detection is a
// separate check that always runs in addition to this one.
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// EffectiveRule returns the rule governing the employee on the given date.
// An exception dated on that calendar day wins outright over the weekly rule
// for that day-of-week; the two are never merged. Returns nil (no error) when
// the employee has no rule for the day at all.
func (s *AvailabilityService) EffectiveRule(employeeID uuid.UUID, date time.Time) (*models.AvailabilityRule, error) {
	dayStart := utils.BeginningOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var exception models.AvailabilityRule
	err := s.db.Where("employee_id = ? AND is_exception = ? AND exception_date >= ? AND exception_date < ?",
		employeeID, true, dayStart, dayEnd).
		Order("created_at").
		First(&exception).Error
	if err == nil {
		return &exception, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var weekly models.AvailabilityRule
	err = s.db.Where("employee_id = ? AND is_exception = ? AND day_of_week = ?",
		employeeID, false, int(date.Weekday())).
		Order("created_at").
		First(&weekly).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &weekly, nil
}

// GenerateSlots produces the ordered bookable windows for an employee on a
// date. Slots are fixed-width and back-to-back from the window start; a slot
// that would run past the window end is dropped, not truncated. A day-off
// exception (start == end == "00:00") yields an empty window and therefore
// no slots.
func (s *AvailabilityService) GenerateSlots(employeeID uuid.UUID, date time.Time, slotMinutes int) ([]Slot, error) {
	if slotMinutes == 0 {
		slotMinutes = DefaultSlotMinutes
	}
	if slotMinutes < 0 {
		return nil, NewValidationError("slot duration must be a positive number of minutes")
	}

	rule, err := s.EffectiveRule(employeeID, date)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return []Slot{}, nil
	}

	startMin, err := utils.ParseClockTime(rule.StartTime)
	if err != nil {
		return nil, err
	}
	endMin, err := utils.ParseClockTime(rule.EndTime)
	if err != nil {
		return nil, err
	}

	midnight := utils.BeginningOfDay(date)
	windowStart := midnight.Add(time.Duration(startMin) * time.Minute)
	windowEnd := midnight.Add(time.Duration(endMin) * time.Minute)
	step := time.Duration(slotMinutes) * time.Minute

	slots := []Slot{}
	for cur := windowStart; !cur.Add(step).After(windowEnd); cur = cur.Add(step) {
		slots = append(slots, Slot{Start: cur, End: cur.Add(step)})
	}
	return slots, nil
}

// IsAvailable reports whether [start, end) falls entirely inside the
// employee's effective working hours on start's date. Comparison is done on
// minutes since midnight of each instant's wall clock.
func (s *AvailabilityService) IsAvailable(employeeID uuid.UUID, start, end time.Time) (bool, error) {
	rule, err := s.EffectiveRule(employeeID, start)
	if err != nil {
		return false, err
	}
	if rule == nil {
		return false, nil
	}

	ruleStart, err := utils.ParseClockTime(rule.StartTime)
	if err != nil {
		return false, err
	}
	ruleEnd, err := utils.ParseClockTime(rule.EndTime)
	if err != nil {
		return false, err
	}

	return utils.MinutesOfDay(start) >= ruleStart && utils.MinutesOfDay(end) <= ruleEnd, nil
}
